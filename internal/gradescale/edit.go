package gradescale

import (
	"fmt"
)

// EditKind names a discrete change a user can make to a draft.
type EditKind string

const (
	EditSetTitle     EditKind = "set_title"
	EditSetType      EditKind = "set_type"
	EditSetMaxPoints EditKind = "set_max_points"
	EditSetLabel     EditKind = "set_label"
	EditSetValue     EditKind = "set_value"
	EditInsertRow    EditKind = "insert_row"
	EditRemoveRow    EditKind = "remove_row"
	EditReset        EditKind = "reset"
)

// Edit is a single UI command. Row addresses the active list; Value carries
// raw form input for set_value and set_max_points.
type Edit struct {
	Kind  EditKind  `json:"kind"`
	Row   int       `json:"row,omitempty"`
	Top   bool      `json:"top,omitempty"`
	Text  string    `json:"text,omitempty"`
	Value string    `json:"value,omitempty"`
	Type  ScaleType `json:"type,omitempty"`
}

func SetTitle(title string) Edit { return Edit{Kind: EditSetTitle, Text: title} }
func SetType(t ScaleType) Edit { return Edit{Kind: EditSetType, Type: t} }
func SetMaxPoints(input string) Edit { return Edit{Kind: EditSetMaxPoints, Value: input} }
func SetLabel(row int, label string) Edit { return Edit{Kind: EditSetLabel, Row: row, Text: label} }
func SetValue(row int, input string) Edit { return Edit{Kind: EditSetValue, Row: row, Value: input} }
func InsertRow(top bool) Edit { return Edit{Kind: EditInsertRow, Top: top} }
func RemoveRow(row int) Edit { return Edit{Kind: EditRemoveRow, Row: row} }
func ResetDraft() Edit { return Edit{Kind: EditReset} }

// Apply performs one edit. Course scales accept no edits.
func (d *Draft) Apply(e Edit) error {
	if d.IsCourseScale {
		return ErrCourseScaleReadOnly
	}
	switch e.Kind {
	case EditSetTitle:
		d.Title = e.Text
	case EditSetType:
		if !e.Type.Valid() {
			return fmt.Errorf("%w: unknown scale type %q", ErrInvalidArgument, e.Type)
		}
		// distribution scales can be viewed but not created
		if e.Type == Distribution && d.Type != Distribution {
			return fmt.Errorf("%w: distribution scales cannot be selected", ErrInvalidArgument)
		}
		d.Type = e.Type
	case EditSetMaxPoints:
		d.MaxPoints = ParseValue(e.Value)
	case EditSetLabel:
		l := d.Active()
		if err := checkRow(l, e.Row); err != nil {
			return err
		}
		l.Entries[e.Row].Label = e.Text
	case EditSetValue:
		l := d.Active()
		if err := checkRow(l, e.Row); err != nil {
			return err
		}
		if d.ValueLocked(e.Row) {
			return fmt.Errorf("%w: value of row %d cannot be changed", ErrRowLocked, e.Row)
		}
		l.Entries[e.Row].Value = ParseValue(e.Value)
	case EditInsertRow:
		d.Active().Insert(e.Top)
	case EditRemoveRow:
		l := d.Active()
		if err := checkRow(l, e.Row); err != nil {
			return err
		}
		if !d.Deletable(e.Row) {
			return fmt.Errorf("%w: row %d cannot be removed", ErrRowLocked, e.Row)
		}
		return l.Remove(e.Row)
	case EditReset:
		d.Reset()
	default:
		return fmt.Errorf("%w: unknown edit %q", ErrInvalidArgument, e.Kind)
	}
	return nil
}

// Deletable reports whether a row of the active list may be removed: never
// the only row and never the bottom row.
func (d *Draft) Deletable(row int) bool {
	n := d.Active().Len()
	return !d.IsCourseScale && n > 1 && row != n-1
}

// ValueLocked reports whether the value of a row is fixed. The bottom row of
// a points or percent scale keeps its value once it has one.
func (d *Draft) ValueLocked(row int) bool {
	if d.IsCourseScale {
		return true
	}
	l := d.Active()
	if d.Type == Distribution || row != l.Len()-1 {
		return false
	}
	return hasValue(l.Entries[row].Value)
}

func checkRow(l *EntryList, row int) error {
	if row < 0 || row >= l.Len() {
		return fmt.Errorf("%w: row %d out of range", ErrInvalidArgument, row)
	}
	return nil
}
