package jsliteral

import (
	"errors"
	"reflect"
	"testing"
)

const listviewPage = `<html><script>
var tabsRelated = new Tabs({parent: WH.ge('jkbfksdbl4'), trackable: 'Related'});
new Listview({template: 'item', id: 'drops', name: WH.TERMS.drops, tabs: tabsRelated, parent: 'lkljbjkb574',
 extraCols: [Listview.extraCols.count, Listview.extraCols.percent],
 data:[{id:5,name:"Sword",slot:1,quality:3,modes:{0:{count:2,outof:10}}},],
});
</script></html>`

func TestParseEndToEnd(t *testing.T) {
	recs, err := Parse(listviewPage, "data:[")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	r := recs[0]
	if got := r.Int("id", 0); got != 5 {
		t.Errorf("id = %d, want 5", got)
	}
	if got := r.String("name"); got != "Sword" {
		t.Errorf("name = %q, want %q", got, "Sword")
	}
	if got := r.Int("slot", 0); got != 1 {
		t.Errorf("slot = %d, want 1", got)
	}
	if got := r.Int("quality", 0); got != 3 {
		t.Errorf("quality = %d, want 3", got)
	}
	if got := r.Int("modes.0.count", -1); got != 2 {
		t.Errorf("modes.0.count = %d, want 2", got)
	}
	if got := r.Int("modes.0.outof", -1); got != 10 {
		t.Errorf("modes.0.outof = %d, want 10", got)
	}

	want := map[string]any{
		"id": 5.0, "name": "Sword", "slot": 1.0, "quality": 3.0,
		"modes": map[string]any{"0": map[string]any{"count": 2.0, "outof": 10.0}},
	}
	if !reflect.DeepEqual(r.Map(), want) {
		t.Fatalf("Map() = %#v, want %#v", r.Map(), want)
	}
	if got, want := r.Fields(), []string{"id", "name", "slot", "quality", "modes"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
}

func TestParseNotFound(t *testing.T) {
	_, err := Parse(`new Listview({data:[{id:1}`, "data:[")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Parse() error = %v, want ErrNotFound", err)
	}
}

func TestParseConversionError(t *testing.T) {
	_, err := Parse(`data:[{id:1, x: new Date()}]`, "data:[")
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("Parse() error = %v, want ErrConversion", err)
	}
}

func TestDecode(t *testing.T) {
	recs, err := Decode(`[{"a":1},2,{"b":"x"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(recs))
	}
	if recs[1].String("b") != "x" {
		t.Fatalf("records[1].b = %q", recs[1].String("b"))
	}

	recs, err = Decode(`{"1":{"icon":"inv_sword_01"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].String("1.icon") != "inv_sword_01" {
		t.Fatalf("Decode(object) = %+v", recs)
	}

	if _, err := Decode(`42`); err == nil {
		t.Fatal("Decode(42) error = nil, want error")
	}
	if _, err := Decode(`[1,`); !errors.Is(err, ErrConversion) {
		t.Fatalf("Decode(truncated) error = %v, want ErrConversion", err)
	}
}

func TestRecordDefaults(t *testing.T) {
	recs, err := Decode(`[{"slot":0}]`)
	if err != nil {
		t.Fatal(err)
	}
	r := recs[0]
	if r.Has("modes.0") {
		t.Fatal("Has(modes.0) = true, want false")
	}
	if got := r.Int("modes.0.outof", 1); got != 1 {
		t.Fatalf("Int default = %d, want 1", got)
	}
}
