package gradescale

import (
	"fmt"
	"strconv"
)

const (
	msgTitleRequired     = "You must provide a title for the scale."
	msgTypeRequired      = "You must select a scale type."
	msgMaxPointsRequired = "You must provide a maximum point value for the scale."
)

// Draft is the editable form of a grading scale. It owns one entry list per
// scale type; only the list of the current Type is validated and saved.
type Draft struct {
	Title         string                   `json:"title"`
	Type          ScaleType                `json:"type"`
	MaxPoints     *float64                 `json:"maxPoints"`
	IsCourseScale bool                     `json:"isCourseScale"`
	Scales        map[ScaleType]*EntryList `json:"scales"`
}

// NewDraft returns a draft with a Percent type and every list seeded with
// its defaults.
func NewDraft() *Draft {
	d := &Draft{Type: Percent, Scales: make(map[ScaleType]*EntryList, len(AllTypes))}
	for _, t := range AllTypes {
		d.Scales[t] = DefaultEntries(t)
	}
	return d
}

// List returns the entry list for t, creating an empty one if missing.
func (d *Draft) List(t ScaleType) *EntryList {
	if d.Scales == nil {
		d.Scales = map[ScaleType]*EntryList{}
	}
	l, ok := d.Scales[t]
	if !ok || l == nil {
		l = &EntryList{}
		d.Scales[t] = l
	}
	return l
}

// Active is the list of the currently selected type.
func (d *Draft) Active() *EntryList { return d.List(d.Type) }

// Validate checks the draft's own fields.
func (d *Draft) Validate() ErrorSet {
	var errs ErrorSet
	if !d.IsCourseScale && d.Title == "" {
		errs = errs.add("title", FieldError{
			Kind: FieldRequired, Field: "title", Row: -1, RelatedRow: -1, Message: msgTitleRequired,
		})
	}
	if !d.Type.Valid() {
		errs = errs.add("type", FieldError{
			Kind: FieldRequired, Field: "type", Row: -1, RelatedRow: -1, Message: msgTypeRequired,
		})
	}
	if d.Type == Points {
		if fe, bad := d.checkMaxPoints(); bad {
			errs = errs.add("maxPoints", fe)
		}
	}
	return errs.orNil()
}

func (d *Draft) checkMaxPoints() (FieldError, bool) {
	if !hasValue(d.MaxPoints) {
		return FieldError{
			Kind: FieldRequired, Field: "maxPoints", Row: -1, RelatedRow: -1, Message: msgMaxPointsRequired,
		}, true
	}
	first, ok := d.List(Points).First()
	if !ok || !hasValue(first.Value) {
		return FieldError{}, false
	}
	// a zero value is compared even without a label
	v := *first.Value
	if (first.Label != "" && v != 0) || v == 0 {
		if v > *d.MaxPoints {
			return FieldError{
				Kind: MaxPointsExceeded, Field: "maxPoints", Scale: Points, EntryID: first.ID,
				Row: 0, RelatedRow: -1,
				Message: first.Label + " is greater than " + strconv.FormatFloat(*d.MaxPoints, 'f', -1, 64),
			}, true
		}
	}
	return FieldError{}, false
}

// ValidateScale validates the draft and its active list. List errors
// overwrite draft errors that share a key.
func (d *Draft) ValidateScale() ErrorSet {
	var scaleErrs ErrorSet
	if d.Type.Valid() {
		scaleErrs = d.Active().Validate(d.Type)
	}
	errs := d.Validate()
	if errs == nil {
		return scaleErrs
	}
	return errs.merge(scaleErrs)
}

// Reset blanks the draft: no title, Points type, no maximum, cleared lists.
func (d *Draft) Reset() {
	d.Title = ""
	d.Type = Points
	d.MaxPoints = nil
	for _, t := range AllTypes {
		d.List(t).Reset(ClearedEntries().Entries)
	}
}

// Clone returns a deep copy.
func (d *Draft) Clone() *Draft {
	out := &Draft{
		Title:         d.Title,
		Type:          d.Type,
		IsCourseScale: d.IsCourseScale,
		Scales:        make(map[ScaleType]*EntryList, len(d.Scales)),
	}
	if d.MaxPoints != nil {
		out.MaxPoints = Num(*d.MaxPoints)
	}
	for t, l := range d.Scales {
		if l != nil {
			out.Scales[t] = l.clone()
		}
	}
	return out
}

func (d *Draft) String() string {
	return fmt.Sprintf("Draft{title=%q type=%s maxPoints=%s course=%t rows=%d}",
		d.Title, d.Type, FormatValue(d.MaxPoints), d.IsCourseScale, d.Active().Len())
}
