package domain

// Document versions. Writers always emit DocumentVersion; readers accept both.
const (
	DocumentVersion       = "1.1.0"
	LegacyDocumentVersion = "1.0.0"
)

// SupportedVersion reports whether a reader understands v.
func SupportedVersion(v string) bool {
	return v == DocumentVersion || v == LegacyDocumentVersion
}

// Document is the persisted network: nodes first, then pipes.
type Document struct {
	Version string       `json:"version" yaml:"version" validate:"required"`
	Nodes   []NodeRecord `json:"nodes" yaml:"nodes" validate:"required,dive"`
	Pipes   []PipeRecord `json:"pipes" yaml:"pipes" validate:"required,dive"`
}

// NodeRecord is one node in a Document. Pointer fields distinguish a missing
// value from zero.
type NodeRecord struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	X        *float64 `json:"x" yaml:"x" validate:"required"`
	Y        *float64 `json:"y" yaml:"y" validate:"required"`
	Category string   `json:"category" yaml:"category" validate:"required,oneof=Gas User"`
	Current  *float64 `json:"current" yaml:"current" validate:"required,gte=0"`
	ErrorP   *float64 `json:"errorp,omitempty" yaml:"errorp,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// PipeRecord is one pipe in a Document. AX/AY and BX/BY are the endpoint
// nodes' origins at export time. NodeIDs is written from 1.1.0 onwards.
type PipeRecord struct {
	BindIDs  []int    `json:"bindIds" yaml:"bindIds" validate:"required,len=2"`
	NodeIDs  []string `json:"nodeIds,omitempty" yaml:"nodeIds,omitempty" validate:"omitempty,len=2"`
	AX       *float64 `json:"ax" yaml:"ax" validate:"required"`
	AY       *float64 `json:"ay" yaml:"ay" validate:"required"`
	BX       *float64 `json:"bx" yaml:"bx" validate:"required"`
	BY       *float64 `json:"by" yaml:"by" validate:"required"`
	Distance *float64 `json:"distance,omitempty" yaml:"distance,omitempty" validate:"omitempty,gte=0"`
	ErrorP   *float64 `json:"errorp" yaml:"errorp" validate:"required,gte=0,lte=1"`
	Price    *float64 `json:"price,omitempty" yaml:"price,omitempty" validate:"omitempty,gte=0"`
	Shape    string   `json:"shape,omitempty" yaml:"shape,omitempty" validate:"omitempty,oneof=curve straight"`
}

// Float returns a pointer to v, for building records.
func Float(v float64) *float64 {
	return &v
}
