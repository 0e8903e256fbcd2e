package sqlite

import (
	"database/sql"
	"encoding/json"

	"gasmap/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToFloatPtr converts sql.NullFloat64 to an optional value
func nullToFloatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// floatPtrToNull converts an optional value to sql.NullFloat64
func floatPtrToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// floatOrZero dereferences a required value that validation has already
// checked.
func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// ============================================================================
// Row Scanners
// ============================================================================
//
// Column order must match between the *Columns constant and scanArgs().

// nodeColumns returns the SELECT column list for node queries
const nodeColumns = `node_id, category, x, y, current, errorp`

// nodeRow holds all columns from a node query for scanning
type nodeRow struct {
	NodeID   sql.NullString
	Category string
	X        float64
	Y        float64
	Current  float64
	ErrorP   sql.NullFloat64
}

func (r *nodeRow) scanArgs() []any {
	return []any{&r.NodeID, &r.Category, &r.X, &r.Y, &r.Current, &r.ErrorP}
}

func (r *nodeRow) toRecord() domain.NodeRecord {
	return domain.NodeRecord{
		ID:       nullToString(r.NodeID),
		X:        domain.Float(r.X),
		Y:        domain.Float(r.Y),
		Category: r.Category,
		Current:  domain.Float(r.Current),
		ErrorP:   nullToFloatPtr(r.ErrorP),
	}
}

// pipeColumns returns the SELECT column list for pipe queries
const pipeColumns = `port_a, port_b, node_ids, ax, ay, bx, by, distance, errorp, price, shape`

// pipeRow holds all columns from a pipe query for scanning
type pipeRow struct {
	PortA    int
	PortB    int
	NodeIDs  sql.NullString
	AX       float64
	AY       float64
	BX       float64
	BY       float64
	Distance sql.NullFloat64
	ErrorP   float64
	Price    sql.NullFloat64
	Shape    sql.NullString
}

func (r *pipeRow) scanArgs() []any {
	return []any{
		&r.PortA, &r.PortB, &r.NodeIDs,
		&r.AX, &r.AY, &r.BX, &r.BY,
		&r.Distance, &r.ErrorP, &r.Price, &r.Shape,
	}
}

func (r *pipeRow) toRecord() (domain.PipeRecord, error) {
	rec := domain.PipeRecord{
		BindIDs:  []int{r.PortA, r.PortB},
		AX:       domain.Float(r.AX),
		AY:       domain.Float(r.AY),
		BX:       domain.Float(r.BX),
		BY:       domain.Float(r.BY),
		Distance: nullToFloatPtr(r.Distance),
		ErrorP:   domain.Float(r.ErrorP),
		Price:    nullToFloatPtr(r.Price),
		Shape:    nullToString(r.Shape),
	}
	if r.NodeIDs.Valid {
		if err := json.Unmarshal([]byte(r.NodeIDs.String), &rec.NodeIDs); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// nodeIDsToNull marshals a pipe's node id pair, or NULL when absent.
func nodeIDsToNull(ids []string) (sql.NullString, error) {
	if len(ids) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
