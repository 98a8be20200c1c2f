package table

import "strings"

// categoricalMaxCardinality caps how many distinct values a text column
// may hold and still count as categorical.
const categoricalMaxCardinality = 100

// labelHints match columns that look like pass/fail outcomes.
var labelHints = []string{
	"status",
	"result",
	"outcome",
	"success",
	"failed",
	"failure",
	"quality_pass",
}

// geoHints match columns that carry geography.
var geoHints = []string{"state", "district", "pin", "center"}

// Roles partitions a table's columns by analytical use. A column may
// appear in several lists; all lists preserve table column order.
type Roles struct {
	Numeric     []string
	Datetime    []string
	Categorical []string
	Labels      []string
	Geo         []string
}

// Identify classifies every column of t.
func Identify(t *Table) Roles {
	var roles Roles
	for _, c := range t.Columns {
		lower := strings.ToLower(c.Name)
		switch c.Kind {
		case KindNumeric:
			roles.Numeric = append(roles.Numeric, c.Name)
		case KindDate:
			roles.Datetime = append(roles.Datetime, c.Name)
		default:
			if c.Distinct() <= categoricalMaxCardinality {
				roles.Categorical = append(roles.Categorical, c.Name)
			}
		}
		if containsAny(lower, labelHints) {
			roles.Labels = append(roles.Labels, c.Name)
		}
		if containsAny(lower, geoHints) {
			roles.Geo = append(roles.Geo, c.Name)
		}
	}
	return roles
}

func containsAny(s string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}
