package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/aelaguiz/codex-ps/internal/domain"
)

// WhereClause represents a parsed --where condition
type WhereClause struct {
	Field    string
	Operator string
	Value    string
	regex    *regexp.Regexp // Compiled regex for ~ and !~ operators
}

// ParseWhereClause parses a where clause like "status=working" or "cwd~api"
// Supported operators: =, !=, ~, !~, >=, <=, ^, $
//
// Fields: host, id, status, label, title, cwd, repo_root, branch, source,
// tty, tmux, pid, age. pid is the comma-joined list, so use ~ to test
// membership. age is seconds since last activity and supports >= and <=.
func ParseWhereClause(clause string) (*WhereClause, error) {
	// Try operators in order of length (longest first to avoid partial matches)
	operators := []string{"!~", ">=", "<=", "!=", "~", "=", "^", "$"}

	for _, op := range operators {
		idx := strings.Index(clause, op)
		if idx > 0 {
			field := strings.TrimSpace(clause[:idx])
			value := strings.TrimSpace(clause[idx+len(op):])

			if field == "" || value == "" {
				return nil, fmt.Errorf("invalid where clause: %s", clause)
			}

			wc := &WhereClause{
				Field:    strings.ToLower(field),
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

			return wc, nil
		}
	}

	return nil, fmt.Errorf("no valid operator found in where clause: %s (use =, !=, ~, !~, >=, <=, ^, $)", clause)
}

// Match checks if a session row matches this where clause
func (wc *WhereClause) Match(row *domain.SessionRow) bool {
	fieldValue := wc.getFieldValue(row)

	switch wc.Operator {
	case "=":
		return fieldValue == wc.Value
	case "!=":
		return fieldValue != wc.Value
	case "~": // Contains (regex)
		if wc.regex != nil {
			return wc.regex.MatchString(fieldValue)
		}
		return strings.Contains(fieldValue, wc.Value)
	case "!~": // Not contains (regex)
		if wc.regex != nil {
			return !wc.regex.MatchString(fieldValue)
		}
		return !strings.Contains(fieldValue, wc.Value)
	case "^": // Starts with
		return strings.HasPrefix(fieldValue, wc.Value)
	case "$": // Ends with
		return strings.HasSuffix(fieldValue, wc.Value)
	case ">=":
		return wc.compareAge(row, true)
	case "<=":
		return wc.compareAge(row, false)
	}

	return false
}

// getFieldValue extracts the field value from a session row
func (wc *WhereClause) getFieldValue(row *domain.SessionRow) string {
	switch wc.Field {
	case "host":
		return row.Host
	case "id", "session_id":
		return row.SessionID
	case "status":
		return string(row.Status)
	case "label":
		return deref(row.Label)
	case "title":
		return deref(row.Title)
	case "cwd":
		return deref(row.Cwd)
	case "repo_root":
		return deref(row.RepoRoot)
	case "branch":
		return deref(row.Branch)
	case "source":
		return deref(row.Lineage.Source)
	case "tty":
		return deref(row.TTY)
	case "tmux":
		return deref(row.Tmux)
	case "pid":
		pids := make([]string, 0, len(row.PIDs))
		for _, pid := range row.PIDs {
			pids = append(pids, strconv.Itoa(pid))
		}
		return strings.Join(pids, ",")
	case "age":
		if row.AgeS == nil {
			return ""
		}
		return strconv.FormatInt(*row.AgeS, 10)
	default:
		return ""
	}
}

// compareAge handles >= and <= comparisons on the age field. Rows with no
// known activity never satisfy an age comparison.
func (wc *WhereClause) compareAge(row *domain.SessionRow, greaterOrEqual bool) bool {
	if wc.Field != "age" {
		return false
	}
	if row.AgeS == nil {
		return false
	}
	target, err := strconv.ParseInt(wc.Value, 10, 64)
	if err != nil {
		return false
	}
	if greaterOrEqual {
		return *row.AgeS >= target
	}
	return *row.AgeS <= target
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WhereFilter is a filter that applies multiple where clauses (AND logic)
type WhereFilter struct {
	clauses []*WhereClause
}

// NewWhereFilter creates a filter from multiple where clause strings
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

// Match returns true if the row matches ALL where clauses (AND logic).
// A nil filter matches everything.
func (f *WhereFilter) Match(row *domain.SessionRow) bool {
	if f == nil {
		return true
	}
	for _, clause := range f.clauses {
		if !clause.Match(row) {
			return false
		}
	}
	return true
}

// Apply returns the rows that match. A nil filter returns rows unchanged.
func (f *WhereFilter) Apply(rows []domain.SessionRow) []domain.SessionRow {
	if f == nil {
		return rows
	}
	return lo.Filter(rows, func(row domain.SessionRow, _ int) bool {
		return f.Match(&row)
	})
}
