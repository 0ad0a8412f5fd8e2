package gradescale

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrCourseScaleReadOnly = errors.New("course grading scale is read-only")
	ErrSaveInFlight        = errors.New("save already in progress")
	ErrTransport           = errors.New("transport failure")
	ErrRowLocked           = errors.New("row is locked")
	ErrNotOpen             = errors.New("editor is not open")
	ErrNotFound            = errors.New("grading scale not found")
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	FieldRequired            ErrorKind = "field_required"
	DuplicateLabel           ErrorKind = "duplicate_label"
	DescendingOrderViolation ErrorKind = "descending_order"
	MaxPointsExceeded        ErrorKind = "max_points_exceeded"
)

// FieldError is one validation failure. Row and RelatedRow index into the
// active entry list; -1 means the error is not tied to a row.
type FieldError struct {
	Kind       ErrorKind `json:"kind"`
	Field      string    `json:"field"`
	Scale      ScaleType `json:"scale,omitempty"`
	EntryID    string    `json:"entryId,omitempty"`
	Row        int       `json:"row"`
	RelatedRow int       `json:"relatedRow"`
	Message    string    `json:"message"`
}

// ErrorSet collects validation failures keyed by field, or by
// "field:entryID" for row errors.
type ErrorSet map[string]FieldError

func (s ErrorSet) add(key string, fe FieldError) ErrorSet {
	if s == nil {
		s = ErrorSet{}
	}
	s[key] = fe
	return s
}

// merge copies other over s; colliding keys take other's value.
func (s ErrorSet) merge(other ErrorSet) ErrorSet {
	for k, v := range other {
		s = s.add(k, v)
	}
	return s
}

// orNil keeps "no errors" as a nil set so callers can test with len or == nil.
func (s ErrorSet) orNil() ErrorSet {
	if len(s) == 0 {
		return nil
	}
	return s
}

// Keys returns the keys in sorted order.
func (s ErrorSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ForRow returns the errors attached to a row, including rows highlighted as
// the other side of an ordering violation.
func (s ErrorSet) ForRow(row int) []FieldError {
	var out []FieldError
	for _, k := range s.Keys() {
		fe := s[k]
		if fe.Row == row || fe.RelatedRow == row {
			out = append(out, fe)
		}
	}
	return out
}

func (s ErrorSet) Error() string {
	msgs := make([]string, 0, len(s))
	for _, k := range s.Keys() {
		msgs = append(msgs, s[k].Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func entryKey(field, id string) string { return field + ":" + id }
