package gradescale_test

import (
	"encoding/json"
	"reflect"
	"testing"

	gs "github.com/mind-engage/mindengage-gradescale/internal/gradescale"
)

func pointsRecord() gs.GradeScale {
	return gs.GradeScale{
		ID:        "gs-1",
		Title:     "Lab scale",
		Type:      gs.Points,
		MaxPoints: gs.Num(40),
		Items:     gs.Items{{Label: "A", Value: 40}, {Label: "B", Value: 30}, {Label: "C", Value: 20}, {Label: "F", Value: 0}},
	}
}

func TestFromRecordCopiesFields(t *testing.T) {
	d := gs.FromRecord(pointsRecord())
	if d.Title != "Lab scale" || d.Type != gs.Points || *d.MaxPoints != 40 {
		t.Fatalf("draft: %s", d)
	}
	l := d.Active()
	if l.Len() != 4 {
		t.Fatalf("rows: %d", l.Len())
	}
	for i, want := range []string{"A", "B", "C", "F"} {
		if l.Entries[i].Label != want || l.Entries[i].ID == "" {
			t.Fatalf("row %d: %+v", i, l.Entries[i])
		}
	}
	// other lists keep their defaults
	if d.List(gs.Percent).Len() != 12 {
		t.Fatalf("percent list should stay seeded")
	}
}

func TestFromRecordFallsBackToDefaults(t *testing.T) {
	d := gs.FromRecord(gs.GradeScale{Title: "New", MaxPoints: gs.Num(0)})
	if d.Type != gs.Percent {
		t.Fatalf("empty type should default to percent, got %s", d.Type)
	}
	if d.MaxPoints != nil {
		t.Fatalf("zero max points should be dropped")
	}
	if d.Active().Len() != 12 {
		t.Fatalf("new record without items keeps the seeded list")
	}
}

func TestFromRecordExistingEmptyItems(t *testing.T) {
	d := gs.FromRecord(gs.GradeScale{ID: "x", Title: "t", Type: gs.Percent, Items: gs.Items{}})
	if d.Active().Len() != 0 {
		t.Fatalf("stored record with empty items should clear the list, got %d rows", d.Active().Len())
	}
}

func TestRoundTripIsFixedPoint(t *testing.T) {
	recs := []gs.GradeScale{
		pointsRecord(),
		{Title: "Pct", Type: gs.Percent, Items: gs.Items{{Label: "Pass", Value: 50}, {Label: "Fail", Value: 0}}},
		{ID: "d", Title: "Dist", Type: gs.Distribution, Items: gs.Items{{Label: "Top", Value: 10}, {Label: "Rest", Value: 90}}},
	}
	for _, r := range recs {
		got := gs.ToRecord(gs.FromRecord(r))
		if !reflect.DeepEqual(got.Items.Map(), r.Items.Map()) {
			t.Fatalf("%s: items %v != %v", r.Title, got.Items, r.Items)
		}
		if got.Title != r.Title || got.Type != r.Type || got.IsCourseScale != r.IsCourseScale {
			t.Fatalf("%s: fields changed: %+v", r.Title, got)
		}
		if (got.MaxPoints == nil) != (r.MaxPoints == nil) {
			t.Fatalf("%s: max points changed", r.Title)
		}
		if got.ID != "" {
			t.Fatalf("ToRecord must not set an id")
		}
	}
}

func TestToRecordUsesActiveListOnly(t *testing.T) {
	d := gs.NewDraft()
	d.Title = "x"
	rec := gs.ToRecord(d)
	if rec.Type != gs.Percent || len(rec.Items) != 12 {
		t.Fatalf("record: %+v", rec)
	}
	if v, _ := rec.Items.Get("B"); v != 83 {
		t.Fatalf("B = %v", v)
	}
	if rec.Items[0].Label != "A" || rec.Items[11].Label != "E" {
		t.Fatalf("items out of order: %v", rec.Items)
	}
}

func TestToRecordLastWriteWins(t *testing.T) {
	d := gs.NewDraft()
	d.Active().Reset([]gs.Entry{
		{Label: "A", Value: gs.Num(90)},
		{Label: "A", Value: gs.Num(80)},
	})
	rec := gs.ToRecord(d)
	if len(rec.Items) != 1 || rec.Items[0].Value != 80 {
		t.Fatalf("items: %v", rec.Items)
	}
}

func TestItemsJSONKeepsOrder(t *testing.T) {
	raw := `{"title":"t","type":"percent","isCourseScale":false,"items":{"C":10,"A":30,"B":20}}`
	var rec gs.GradeScale
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatal(err)
	}
	want := gs.Items{{Label: "C", Value: 10}, {Label: "A", Value: 30}, {Label: "B", Value: 20}}
	if !reflect.DeepEqual(rec.Items, want) {
		t.Fatalf("decoded %v", rec.Items)
	}
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != raw {
		t.Fatalf("re-encoded:\n%s\nwant\n%s", out, raw)
	}
}

func TestItemsJSONNullAndEmpty(t *testing.T) {
	var it gs.Items
	if err := json.Unmarshal([]byte(`null`), &it); err != nil || it != nil {
		t.Fatalf("null: %v %v", it, err)
	}
	b, _ := json.Marshal(gs.Items(nil))
	if string(b) != "{}" {
		t.Fatalf("nil items encode as %s", b)
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &it); err == nil {
		t.Fatalf("array should be rejected")
	}
}

func TestItemsFromMapOrdersByValue(t *testing.T) {
	it := gs.ItemsFromMap(map[string]float64{"B": 80, "A": 90, "Z": 80, "F": 0})
	want := gs.Items{{Label: "A", Value: 90}, {Label: "B", Value: 80}, {Label: "Z", Value: 80}, {Label: "F", Value: 0}}
	if !reflect.DeepEqual(it, want) {
		t.Fatalf("got %v", it)
	}
}

func TestMergeUpdatesInPlace(t *testing.T) {
	src := &gs.GradeScale{Title: "old", Type: gs.Percent, CourseID: "c1"}
	ref := src
	src.Merge(gs.GradeScale{ID: "new-id", Title: "new", Type: gs.Points, MaxPoints: gs.Num(5), Items: gs.Items{{Label: "A", Value: 5}}})
	if ref.ID != "new-id" || ref.Title != "new" || ref.Type != gs.Points || *ref.MaxPoints != 5 {
		t.Fatalf("merge: %+v", ref)
	}
	if ref.CourseID != "c1" {
		t.Fatalf("course id should be kept")
	}
}
