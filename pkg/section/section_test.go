package section

import (
	"reflect"
	"testing"

	"tableflip.dev/dash/pkg/widget"
)

func TestForTypeCoversAllWidgetTypes(t *testing.T) {
	for _, wt := range widget.AllTypes() {
		if _, ok := ForType(wt); !ok {
			t.Errorf("widget type %q has no section mapping", wt)
		}
	}
	if _, ok := ForType(widget.Type("mystery")); ok {
		t.Errorf("unknown type should not map to a section")
	}
}

func TestSortByPosition(t *testing.T) {
	in := []Section{
		{Name: "reading", Position: 2},
		{Name: "habits", Position: 0},
		{Name: "finance", Position: 1},
		{Name: "conditions", Position: 1},
	}
	got := SortByPosition(in)
	wantNames := []string{"habits", "conditions", "finance", "reading"}
	for i, name := range wantNames {
		if got[i].Name != name {
			t.Fatalf("position %d: got %q, want %q (full: %+v)", i, got[i].Name, name, got)
		}
	}
	// Input untouched.
	if in[0].Name != "reading" {
		t.Fatalf("SortByPosition modified its input: %+v", in)
	}
}

func TestPlacementsCoverFullOrder(t *testing.T) {
	ordered := []Section{
		{Name: "habits", Position: 4},
		{Name: "finance", Position: 9},
		{Name: "reading", Position: 12},
	}
	got := Placements(ordered)
	want := []Placement{
		{Name: "habits", Position: 0},
		{Name: "finance", Position: 1},
		{Name: "reading", Position: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Placements = %+v, want %+v", got, want)
	}
}

func TestFindIsCaseInsensitive(t *testing.T) {
	sections := []Section{{Name: "finance"}, {Name: "habits"}}
	if i := Find(sections, "Habits"); i != 1 {
		t.Errorf("Find(Habits) = %d, want 1", i)
	}
	if i := Find(sections, "missing"); i != -1 {
		t.Errorf("Find(missing) = %d, want -1", i)
	}
}
