package gradescale

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	msgLabelRequired = "You must provide a label for each row."
	msgValueRequired = "You must provide a value for each row."
)

var entrySeq atomic.Int64

func newEntryID() string { return "c" + strconv.FormatInt(entrySeq.Add(1), 10) }

// Entry is one label/value row of a scale.
type Entry struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Value *float64 `json:"value"` // nil when empty; NaN when the input did not parse
}

func NewEntry(label string, value *float64) Entry {
	return Entry{ID: newEntryID(), Label: label, Value: value}
}

// Num returns a pointer to v, for building entries in code.
func Num(v float64) *float64 { return &v }

// ParseValue converts form input into an entry value. Input that is not a
// finite number, "Inf" included, becomes NaN.
func ParseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		v = math.NaN()
	}
	return &v
}

// FormatValue renders a value the way a number input shows it.
func FormatValue(v *float64) string {
	if !hasValue(v) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func hasValue(v *float64) bool { return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) }

// Validate checks the required fields of the row.
func (e Entry) Validate() ErrorSet {
	var errs ErrorSet
	if e.Label == "" {
		errs = errs.add(entryKey("label", e.ID), FieldError{
			Kind: FieldRequired, Field: "label", EntryID: e.ID,
			Row: -1, RelatedRow: -1, Message: msgLabelRequired,
		})
	}
	if !hasValue(e.Value) {
		errs = errs.add(entryKey("value", e.ID), FieldError{
			Kind: FieldRequired, Field: "value", EntryID: e.ID,
			Row: -1, RelatedRow: -1, Message: msgValueRequired,
		})
	}
	return errs.orNil()
}

// MarshalJSON writes NaN values as null; JSON has no NaN.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	p := plain(e)
	if !hasValue(p.Value) {
		p.Value = nil
	}
	return json.Marshal(p)
}
