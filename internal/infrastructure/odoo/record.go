package odoo

import (
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/domain/shipping"
)

// Record is one raw record returned by an Odoo read call. Odoo sends
// boolean false for absent scalar and relational fields, never null;
// the accessors fold that back into zero values.
type Record map[string]any

// Str returns the string value of key, or "" when absent.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int64 returns the integer value of key, or 0 when absent.
func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// Float returns the float value of key, or 0 when absent. Odoo may
// send whole quantities as integers.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Int64s decodes a one2many/many2many field, a plain list of ids.
func (r Record) Int64s(key string) []int64 {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(int64); ok {
			out = append(out, id)
		}
	}
	return out
}

// Ref decodes a many2one field, an [id, "label"] pair. ok is false
// when the field is unset or the wire shape is not a valid pair.
func (r Record) Ref(key string) (shipping.RecordRef, bool) {
	raw, ok := r[key].([]any)
	if !ok || len(raw) != 2 {
		return shipping.RecordRef{}, false
	}
	id, ok := raw[0].(int64)
	if !ok || id == 0 {
		return shipping.RecordRef{}, false
	}
	label, _ := raw[1].(string)
	return shipping.RecordRef{ID: id, Label: label}, true
}
