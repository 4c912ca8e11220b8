package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/vburojevic/cfdbg/internal/domain"
)

// WhereClause represents a parsed --where condition
type WhereClause struct {
	Field    string
	Operator string
	Value    string
	regex    *regexp.Regexp // Compiled regex for ~ and !~ operators
	number   int            // Parsed value for >= and <=
}

// ParseWhereClause parses a where clause like "name=count" or "type~^list"
// Supported operators: =, !=, ~, !~, >=, <=, ^, $
func ParseWhereClause(clause string) (*WhereClause, error) {
	// Try operators in order of length (longest first to avoid partial matches)
	operators := []string{"!~", ">=", "<=", "!=", "~", "=", "^", "$"}

	for _, op := range operators {
		idx := strings.Index(clause, op)
		if idx > 0 {
			field := strings.ToLower(strings.TrimSpace(clause[:idx]))
			value := strings.TrimSpace(clause[idx+len(op):])

			if field == "" || value == "" {
				return nil, fmt.Errorf("invalid where clause: %s", clause)
			}
			if !isField(field) {
				return nil, fmt.Errorf("unknown field in where clause '%s' (use name, type, value, index, children)", clause)
			}

			wc := &WhereClause{
				Field:    field,
				Operator: op,
				Value:    value,
			}

			// Pre-compile regex for ~ and !~ operators
			if op == "~" || op == "!~" {
				re, err := regexp.Compile(value)
				if err != nil {
					return nil, fmt.Errorf("invalid regex in where clause '%s': %w", clause, err)
				}
				wc.regex = re
			}

			if op == ">=" || op == "<=" {
				if field != "index" && field != "children" {
					return nil, fmt.Errorf("%s only compares index or children: %s", op, clause)
				}
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("invalid number in where clause '%s': %w", clause, err)
				}
				wc.number = n
			}

			return wc, nil
		}
	}

	return nil, fmt.Errorf("no valid operator found in where clause: %s (use =, !=, ~, !~, >=, <=, ^, $)", clause)
}

func isField(field string) bool {
	switch field {
	case "name", "type", "value", "index", "children":
		return true
	}
	return false
}

// Match checks if a variable matches this where clause
func (wc *WhereClause) Match(v domain.VariableNode) bool {
	fieldValue := wc.getFieldValue(v)

	switch wc.Operator {
	case "=":
		return fieldValue == wc.Value
	case "!=":
		return fieldValue != wc.Value
	case "~":
		return wc.regex.MatchString(fieldValue)
	case "!~":
		return !wc.regex.MatchString(fieldValue)
	case "^":
		return strings.HasPrefix(fieldValue, wc.Value)
	case "$":
		return strings.HasSuffix(fieldValue, wc.Value)
	case ">=":
		return wc.getNumber(v) >= wc.number
	case "<=":
		return wc.getNumber(v) <= wc.number
	}

	return false
}

// getFieldValue extracts the field value from a variable
func (wc *WhereClause) getFieldValue(v domain.VariableNode) string {
	switch wc.Field {
	case "name":
		return v.Name
	case "type":
		return v.Type
	case "value":
		return v.Value
	case "index", "children":
		return strconv.Itoa(wc.getNumber(v))
	default:
		return ""
	}
}

func (wc *WhereClause) getNumber(v domain.VariableNode) int {
	if wc.Field == "children" {
		return len(v.Children)
	}
	return v.Index
}

// WhereFilter is a filter that applies multiple where clauses (AND logic)
type WhereFilter struct {
	clauses []*WhereClause
}

// NewWhereFilter creates a filter from multiple where clause strings.
// No clauses yields a nil filter, which matches everything.
func NewWhereFilter(whereClauses []string) (*WhereFilter, error) {
	if len(whereClauses) == 0 {
		return nil, nil
	}

	filter := &WhereFilter{}
	for _, clause := range whereClauses {
		wc, err := ParseWhereClause(clause)
		if err != nil {
			return nil, err
		}
		filter.clauses = append(filter.clauses, wc)
	}

	return filter, nil
}

// Match returns true if the variable matches ALL where clauses (AND logic)
func (f *WhereFilter) Match(v domain.VariableNode) bool {
	if f == nil {
		return true
	}
	for _, clause := range f.clauses {
		if !clause.Match(v) {
			return false
		}
	}
	return true
}

// Apply keeps the matching variables of one level. Children are not searched.
func (f *WhereFilter) Apply(vars []domain.VariableNode) []domain.VariableNode {
	if f == nil {
		return vars
	}
	return lo.Filter(vars, func(v domain.VariableNode, _ int) bool {
		return f.Match(v)
	})
}
