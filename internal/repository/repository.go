package repository

import (
	"context"
	"errors"
	"time"

	"gasmap/internal/domain"
)

// ErrNetworkNotFound is returned for an unknown network name.
var ErrNetworkNotFound = errors.New("network not found")

// NetworkInfo summarises a saved network
type NetworkInfo struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Nodes     int       `json:"nodes"`
	Pipes     int       `json:"pipes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository defines the interface for the network library
type Repository interface {
	SaveNetwork(ctx context.Context, name string, doc *domain.Document) error
	LoadNetwork(ctx context.Context, name string) (*domain.Document, error)
	ListNetworks(ctx context.Context) ([]NetworkInfo, error)
	DeleteNetwork(ctx context.Context, name string) error

	// Close releases resources
	Close() error
}
