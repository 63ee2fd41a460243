// Package normalize converts heterogeneous raw records (spreadsheet rows,
// datastore documents, snapshot entries) into the canonical per-kind schema.
package normalize

import (
	"fmt"
	"strings"

	"github.com/craftline/pricedeskgo/internal/models"
)

// Normalize maps a raw record onto the canonical field set for kind. For
// each canonical field the first present, non-empty alias wins; unknown
// source fields are dropped. Missing fields come out as "" - deciding
// whether the result is usable is the caller's job, so this never fails.
func Normalize(kind models.Kind, raw map[string]interface{}) models.Record {
	folded := foldKeys(raw)

	record := make(models.Record)
	for _, spec := range fieldSpecs[kind] {
		record[spec.Canonical] = resolve(folded, spec)
	}
	return record
}

// NormalizeAll normalizes a batch of raw records. Degenerate records are
// kept; the count of them is returned for the caller's diagnostics.
func NormalizeAll(kind models.Kind, raws []map[string]interface{}) ([]models.Record, int) {
	records := make([]models.Record, 0, len(raws))
	degenerate := 0
	for _, raw := range raws {
		rec := Normalize(kind, raw)
		if rec.IsDegenerate() {
			degenerate++
		}
		records = append(records, rec)
	}
	return records, degenerate
}

// resolve walks the alias chain for one canonical field. The canonical name
// is its own first alias.
func resolve(folded map[string]string, spec FieldSpec) string {
	if v, ok := folded[foldKey(spec.Canonical)]; ok && v != "" {
		return v
	}
	for _, alias := range spec.Aliases {
		if v, ok := folded[foldKey(alias)]; ok && v != "" {
			return v
		}
	}
	return ""
}

// foldKeys rebuilds the raw map with folded keys and stringified values.
// When two source keys fold to the same name the first non-empty value is
// kept, mirroring the alias priority rule.
func foldKeys(raw map[string]interface{}) map[string]string {
	folded := make(map[string]string, len(raw))
	for k, v := range raw {
		fk := foldKey(k)
		s := stringify(v)
		if existing, ok := folded[fk]; ok && existing != "" {
			continue
		}
		folded[fk] = s
	}
	return folded
}

// foldKey lowercases a key and strips the separators sources disagree on.
func foldKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch r {
		case ' ', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stringify renders a raw scalar as the string the canonical schema carries.
// Malformed values (maps, slices) are dropped rather than failing the record.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		// JSON numbers arrive as float64; keep integers clean
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case int, int32, int64:
		return fmt.Sprintf("%d", val)
	case map[string]interface{}, []interface{}:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
