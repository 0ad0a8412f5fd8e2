package gradescale

// View is everything a renderer needs to draw the editor. It is rebuilt from
// state after every edit or save attempt.
type View struct {
	Title         string       `json:"title"`
	ShowTitle     bool         `json:"showTitle"`
	Type          ScaleType    `json:"type"`
	TypeOptions   []TypeOption `json:"typeOptions"`
	TypeReadonly  bool         `json:"typeReadonly"`
	ValueHeader   string       `json:"valueHeader"`
	Unit          string       `json:"unit"`
	ShowMaxPoints bool         `json:"showMaxPoints"`
	MaxPoints     string       `json:"maxPoints"`
	MaxPointsErr  string       `json:"maxPointsError,omitempty"`
	TitleErr      string       `json:"titleError,omitempty"`
	TypeErr       string       `json:"typeError,omitempty"`
	CanAddRows    bool         `json:"canAddRows"`
	Rows          []RowView    `json:"rows"`

	ShowSave       bool     `json:"showSave"`
	ShowClear      bool     `json:"showClear"`
	PrimaryEnabled bool     `json:"primaryEnabled"`
	State          string   `json:"state"`
	Errors         ErrorSet `json:"errors,omitempty"`
}

type TypeOption struct {
	Value ScaleType `json:"value"`
	Label string    `json:"label"`
}

type RowView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Readonly    bool   `json:"readonly"`
	Deletable   bool   `json:"deletable"`
	ValueLocked bool   `json:"valueLocked"`
	LabelErr    string `json:"labelError,omitempty"`
	ValueErr    string `json:"valueError,omitempty"`
	Invalid     bool   `json:"invalid"`
}

// View renders the open session.
func (e *Editor) View() (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return View{}, ErrNotOpen
	}
	v := Render(e.draft, e.errs)
	v.PrimaryEnabled = e.primaryEnabled
	v.State = e.state.String()
	return v, nil
}

// Render builds a view of d with errs highlighted.
func Render(d *Draft, errs ErrorSet) View {
	ro := d.IsCourseScale
	v := View{
		Title:          d.Title,
		ShowTitle:      !ro,
		Type:           d.Type,
		TypeReadonly:   ro,
		ValueHeader:    d.Type.ValueHeader(),
		Unit:           d.Type.Unit(),
		ShowMaxPoints:  d.Type == Points,
		MaxPoints:      FormatValue(d.MaxPoints),
		CanAddRows:     !ro,
		ShowSave:       !ro,
		ShowClear:      !ro,
		PrimaryEnabled: true,
		Errors:         errs,
	}
	for _, t := range AllTypes {
		if t == Distribution && d.Type != Distribution {
			continue
		}
		v.TypeOptions = append(v.TypeOptions, TypeOption{Value: t, Label: t.Label()})
	}
	if fe, ok := errs["title"]; ok {
		v.TitleErr = fe.Message
	}
	if fe, ok := errs["type"]; ok {
		v.TypeErr = fe.Message
	}
	if fe, ok := errs["maxPoints"]; ok {
		v.MaxPointsErr = fe.Message
	}

	l := d.Active()
	v.Rows = make([]RowView, 0, l.Len())
	for i, en := range l.Entries {
		row := RowView{
			ID:          en.ID,
			Label:       en.Label,
			Value:       FormatValue(en.Value),
			Readonly:    ro,
			Deletable:   d.Deletable(i),
			ValueLocked: d.ValueLocked(i),
		}
		if fe, ok := errs[entryKey("label", en.ID)]; ok {
			row.LabelErr = fe.Message
		}
		if fe, ok := errs[entryKey("value", en.ID)]; ok {
			row.ValueErr = fe.Message
		}
		for _, fe := range errs.ForRow(i) {
			if fe.Scale == "" || fe.Scale == d.Type {
				row.Invalid = true
			}
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
