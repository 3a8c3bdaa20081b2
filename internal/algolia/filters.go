// Package algolia builds query tasks for the site's backing search
// service and compiles declarative filter sets into its filter DSL.
package algolia

import (
	"sort"
	"strconv"
	"strings"
)

// Filter is one named search filter. Value may be a scalar, a slice, or an
// object-shaped map (reduced to its slug/id/name field).
type Filter struct {
	Active        bool
	Attribute     string
	Value         any
	SelectionType string // "union" joins values with OR, anything else with AND
}

// BuildFilters compiles the active filters into a single expression:
// active filters ANDed together, multi-value filters parenthesized and
// joined per their selection type. The "page" key is never a filter.
func BuildFilters(filters map[string]Filter) string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		if name == "page" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var clauses []string
	for _, name := range names {
		f := filters[name]
		if !f.Active || f.Attribute == "" {
			continue
		}
		if c := clause(f); c != "" {
			clauses = append(clauses, c)
		}
	}
	return strings.Join(clauses, " AND ")
}

func clause(f Filter) string {
	values := listOf(f.Value)
	if len(values) == 0 {
		return ""
	}
	terms := make([]string, 0, len(values))
	for _, v := range values {
		if t := term(f.Attribute, v); t != "" {
			terms = append(terms, t)
		}
	}
	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	}
	join := " AND "
	if f.SelectionType == "union" {
		join = " OR "
	}
	return "(" + strings.Join(terms, join) + ")"
}

func listOf(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	default:
		return []any{v}
	}
}

func term(attr string, v any) string {
	switch t := v.(type) {
	case string:
		return attr + ":" + quote(t)
	case bool:
		return attr + ":" + strconv.FormatBool(t)
	case int:
		return attr + ":" + strconv.Itoa(t)
	case int64:
		return attr + ":" + strconv.FormatInt(t, 10)
	case float64:
		return attr + ":" + strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		for _, key := range []string{"slug", "id", "name"} {
			if inner, ok := t[key]; ok {
				return term(attr, inner)
			}
		}
		return ""
	default:
		return ""
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
