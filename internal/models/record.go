package models

import (
	"strconv"
	"strings"
)

// Record is a single row from the remote table service.
type Record struct {
	ID          string                 `json:"id"`
	Fields      map[string]interface{} `json:"fields"`
	CreatedTime string                 `json:"createdTime,omitempty"`
}

// String returns the field value as a string, empty when absent.
func (r Record) String(field string) string {
	if r.Fields == nil {
		return ""
	}
	if v, ok := r.Fields[field].(string); ok {
		return v
	}
	return ""
}

// Number coerces the field value to a float64. String values keep their
// digits and decimal point ("$85/hr" -> 85), everything else falls back to
// def. Airtable returns numbers as float64 regardless of column type.
func (r Record) Number(field string, def float64) float64 {
	if r.Fields == nil {
		return def
	}
	switch v := r.Fields[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		var b strings.Builder
		for _, c := range v {
			if (c >= '0' && c <= '9') || c == '.' {
				b.WriteRune(c)
			}
		}
		if b.Len() == 0 {
			return def
		}
		return parseFloatOr(b.String(), def)
	default:
		return def
	}
}

// Has reports whether the field is present with a non-empty value.
func (r Record) Has(field string) bool {
	if r.Fields == nil {
		return false
	}
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func parseFloatOr(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
