package gradescale

import (
	"fmt"
)

const msgDuplicateLabel = "You cannot have duplicate letters in your scale."

var scaleLabels = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "E"}

var percentThresholds = []float64{93, 90, 87, 83, 80, 77, 73, 70, 67, 63, 60, 0}

// EntryList is an ordered scale, highest rank first.
type EntryList struct {
	Entries []Entry `json:"entries"`
}

// DefaultEntries seeds a list for a scale type.
func DefaultEntries(t ScaleType) *EntryList {
	switch t {
	case Percent:
		l := &EntryList{Entries: make([]Entry, len(scaleLabels))}
		for i, label := range scaleLabels {
			l.Entries[i] = NewEntry(label, Num(percentThresholds[i]))
		}
		return l
	case Points:
		l := ClearedEntries()
		l.Entries[len(l.Entries)-1].Value = Num(0)
		return l
	default:
		return ClearedEntries()
	}
}

// ClearedEntries is the standard label set with every value blank.
func ClearedEntries() *EntryList {
	l := &EntryList{Entries: make([]Entry, len(scaleLabels))}
	for i, label := range scaleLabels {
		l.Entries[i] = NewEntry(label, nil)
	}
	return l
}

func (l *EntryList) Len() int { return len(l.Entries) }

// First returns the highest ranked entry.
func (l *EntryList) First() (Entry, bool) {
	if len(l.Entries) == 0 {
		return Entry{}, false
	}
	return l.Entries[0], true
}

// Reset replaces the contents, assigning ids to entries that lack one.
func (l *EntryList) Reset(entries []Entry) {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = newEntryID()
		}
		out[i] = e
	}
	l.Entries = out
}

// Insert adds a blank row at the top or the bottom and returns its index.
func (l *EntryList) Insert(top bool) int {
	e := NewEntry("", nil)
	if top {
		l.Entries = append([]Entry{e}, l.Entries...)
		return 0
	}
	l.Entries = append(l.Entries, e)
	return len(l.Entries) - 1
}

func (l *EntryList) Remove(row int) error {
	if row < 0 || row >= len(l.Entries) {
		return fmt.Errorf("%w: row %d out of range", ErrInvalidArgument, row)
	}
	l.Entries = append(l.Entries[:row], l.Entries[row+1:]...)
	return nil
}

func (l *EntryList) clone() *EntryList {
	out := &EntryList{Entries: make([]Entry, len(l.Entries))}
	for i, e := range l.Entries {
		if e.Value != nil {
			v := *e.Value
			e.Value = &v
		}
		out.Entries[i] = e
	}
	return out
}

// Validate checks every row, then, only when all rows are well formed, the
// scale as a whole: unique labels and non-increasing values.
func (l *EntryList) Validate(t ScaleType) ErrorSet {
	var errs ErrorSet
	for i, e := range l.Entries {
		for k, fe := range e.Validate() {
			fe.Row, fe.Scale = i, t
			errs = errs.add(k, fe)
		}
	}
	if len(errs) > 0 {
		return errs
	}

	seen := make(map[string]bool, len(l.Entries))
	for i, e := range l.Entries {
		if seen[e.Label] {
			errs = errs.add(entryKey("label", e.ID), FieldError{
				Kind: DuplicateLabel, Field: "label", Scale: t, EntryID: e.ID,
				Row: i, RelatedRow: -1, Message: msgDuplicateLabel,
			})
		} else {
			seen[e.Label] = true
		}
		if i == 0 {
			continue
		}
		prev := l.Entries[i-1]
		if *e.Value > *prev.Value {
			errs = errs.add(entryKey("value", e.ID), FieldError{
				Kind: DescendingOrderViolation, Field: "value", Scale: t, EntryID: e.ID,
				Row: i, RelatedRow: i - 1,
				Message: fmt.Sprintf("%s is greater than %s", e.Label, prev.Label),
			})
		}
	}
	return errs.orNil()
}
