package gradescale

// FromRecord builds a draft from a persisted record. Type and max points fall
// back to the draft defaults when unset; items replace the active list in
// their recorded order.
func FromRecord(rec GradeScale) *Draft {
	d := NewDraft()
	d.Title = rec.Title
	d.IsCourseScale = rec.IsCourseScale
	if rec.Type != "" {
		d.Type = rec.Type
	}
	if rec.MaxPoints != nil && *rec.MaxPoints != 0 {
		d.MaxPoints = Num(*rec.MaxPoints)
	}
	if (rec.ID != "" && rec.Items != nil) || len(rec.Items) > 0 {
		entries := make([]Entry, 0, len(rec.Items))
		for _, it := range rec.Items {
			entries = append(entries, NewEntry(it.Label, Num(it.Value)))
		}
		d.Active().Reset(entries)
	}
	return d
}

// ToRecord builds a record from the active list of a draft. The id is left
// empty; callers editing an existing record copy it over. Rows without a
// value are skipped, which only happens for drafts that failed validation.
func ToRecord(d *Draft) GradeScale {
	rec := GradeScale{
		Title:         d.Title,
		Type:          d.Type,
		IsCourseScale: d.IsCourseScale,
		Items:         Items{},
	}
	if hasValue(d.MaxPoints) {
		rec.MaxPoints = Num(*d.MaxPoints)
	}
	for _, e := range d.Active().Entries {
		if !hasValue(e.Value) {
			continue
		}
		rec.Items = rec.Items.Set(e.Label, *e.Value)
	}
	return rec
}
