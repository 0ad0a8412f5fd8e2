package gradescale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// GradeScale is the persisted form of a grading scale.
type GradeScale struct {
	ID            string    `json:"id,omitempty"`
	Title         string    `json:"title"`
	Type          ScaleType `json:"type"`
	MaxPoints     *float64  `json:"maxPoints,omitempty"`
	IsCourseScale bool      `json:"isCourseScale"`
	Items         Items     `json:"items"`

	CourseID string `json:"-"`
}

// IsNew reports whether the record has not been persisted yet.
func (g *GradeScale) IsNew() bool { return g.ID == "" }

// Merge copies attributes returned by a save onto g in place.
func (g *GradeScale) Merge(attrs GradeScale) {
	if attrs.ID != "" {
		g.ID = attrs.ID
	}
	g.Title = attrs.Title
	g.Type = attrs.Type
	g.MaxPoints = attrs.MaxPoints
	g.IsCourseScale = attrs.IsCourseScale
	g.Items = attrs.Items.Clone()
	if attrs.CourseID != "" {
		g.CourseID = attrs.CourseID
	}
}

// Item is one label → value pair of a record.
type Item struct {
	Label string
	Value float64
}

// Items is a label → value mapping that keeps insertion order. On the wire it
// is a JSON object; decoding keeps the object's key order.
type Items []Item

// ItemsFromMap orders a plain map by descending value, ties by label.
func ItemsFromMap(m map[string]float64) Items {
	out := make(Items, 0, len(m))
	for k, v := range m {
		out = append(out, Item{Label: k, Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Set writes label's value; an existing label keeps its position.
func (it Items) Set(label string, v float64) Items {
	for i := range it {
		if it[i].Label == label {
			it[i].Value = v
			return it
		}
	}
	return append(it, Item{Label: label, Value: v})
}

func (it Items) Get(label string) (float64, bool) {
	for _, x := range it {
		if x.Label == label {
			return x.Value, true
		}
	}
	return 0, false
}

// Map drops ordering.
func (it Items) Map() map[string]float64 {
	m := make(map[string]float64, len(it))
	for _, x := range it {
		m[x.Label] = x.Value
	}
	return m
}

func (it Items) Clone() Items {
	if it == nil {
		return nil
	}
	out := make(Items, len(it))
	copy(out, it)
	return out
}

func (it Items) MarshalJSON() ([]byte, error) {
	if it == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, x := range it {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(x.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(x.Value)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", x.Label, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (it *Items) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*it = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("items: expected object, got %v", tok)
	}
	out := Items{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("items: expected key, got %v", tok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("items[%q]: %w", label, err)
		}
		out = out.Set(label, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*it = out
	return nil
}
