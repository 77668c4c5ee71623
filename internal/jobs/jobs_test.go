package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"wowscrape-go/internal/config"
	"wowscrape-go/internal/fetch"
	"wowscrape-go/internal/jsliteral"
	"wowscrape-go/internal/parser"
)

type fakeFetcher struct {
	mu        sync.Mutex
	pages     map[string]string
	gets      []string
	downloads []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, url)
	p, ok := f.pages[url]
	if !ok {
		return nil, fetch.ErrNotFound
	}
	return []byte(p), nil
}

func (f *fakeFetcher) Download(_ context.Context, url, path string) error {
	f.mu.Lock()
	f.downloads = append(f.downloads, url)
	f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("jpg"), 0o644)
}

func (f *fakeFetcher) Exists(_ context.Context, url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pages[url]
	return ok
}

func mustDecode(t *testing.T, js string) []jsliteral.Record {
	t.Helper()
	recs, err := jsliteral.Decode(js)
	if err != nil {
		t.Fatal(err)
	}
	return recs
}

var defaultRules = config.Default().Drops

func TestSelectDrops(t *testing.T) {
	recs := mustDecode(t, `[
		{"id":1,"name":"Epic Helm","slot":1,"quality":4,"modes":{"0":{"count":40,"outof":100}}},
		{"id":2,"name":"Grey Junk","slot":0,"quality":0,"modes":{"0":{"count":90,"outof":100}}},
		{"id":3,"name":"Rare Ring","slot":11,"quality":3,"modes":{"0":{"count":1,"outof":200}}},
		{"id":4,"name":"Green Boots","slot":8,"quality":2,"modes":{"0":{"count":50,"outof":100}}},
		{"id":5,"name":"Tiny Sample","slot":5,"quality":4,"modes":{"0":{"count":5,"outof":10}}},
		{"id":6,"name":"No Modes","slot":5,"quality":4},
		{"id":7,"name":"Zero outof","slot":5,"quality":4,"modes":{"0":{"count":1,"outof":0}}}
	]`)
	got := SelectDrops("10184", recs, defaultRules)

	var ids []string
	for _, d := range got {
		ids = append(ids, d.ItemID)
	}
	// 2: not equippable; 3: chance below 1%; 4: quality 2; 5: outof 10 < 25% of 100;
	// 6: count 0 of 1; 7: outof 0
	if want := []string{"1"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("SelectDrops() ids = %v, want %v", ids, want)
	}
	if d := got[0]; d.Count != 40 || d.OutOf != 100 || d.Chance != 0.4 || d.NPCID != "10184" {
		t.Fatalf("drop = %+v", d)
	}
}

func TestSelectDropsEmpty(t *testing.T) {
	if got := SelectDrops("1", nil, defaultRules); got != nil {
		t.Fatalf("SelectDrops(nil) = %v", got)
	}
}

const dropsPage = `<html><script>
new Listview({template: 'item', id: 'drops', name: WH.TERMS.drops, data:[
 {id:5,name:"Sword",slot:13,quality:3,modes:{0:{count:2,outof:10}},classs:2,tier:NS.TERMS.Epic},
 {id:6,name:"Cloth",slot:0,quality:1,modes:{0:{count:8,outof:10}}},
],});
</script></html>`

func TestDropsProcess(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		parser.PageURL("npc", "13280"):  dropsPage,
		parser.PageURL("object", "999"): `<html>nothing here</html>`,
	}}
	j := NewDrops(f, defaultRules)

	rows, err := j.Process(context.Background(), map[string]string{"npc_id": "13280", "prefix": "npc", "loot": "1"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	want := []map[string]string{{
		"npc_id": "13280", "item_id": "5", "name": "Sword", "slot": "13",
		"quality": "3", "count": "2", "outof": "10", "drop_chance": "0.2",
	}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("Process() = %v, want %v", rows, want)
	}

	// duplicate NPC rows are fetched once
	rows, err = j.Process(context.Background(), map[string]string{"npc_id": "13280", "prefix": "npc", "loot": "1"})
	if err != nil || rows != nil || len(f.gets) != 1 {
		t.Fatalf("duplicate row: rows=%v err=%v gets=%d", rows, err, len(f.gets))
	}

	// loot != 1 is skipped without a request
	if rows, _ := j.Process(context.Background(), map[string]string{"npc_id": "1", "loot": "0"}); rows != nil {
		t.Fatalf("loot=0 rows = %v", rows)
	}

	_, err = j.Process(context.Background(), map[string]string{"npc_id": "999", "prefix": "object", "loot": "1"})
	if !errors.Is(err, parser.ErrNoListview) {
		t.Fatalf("Process(no listview) error = %v", err)
	}
}

const itemPage = `<script>
WH.Gatherer.addData(3, 5, {"19019":{"name_enus":"Thunderfury","quality":5,"icon":"inv_sword_39","displayid":30606}});
g_items[19019].tooltip_enus = "<b>Thunderfury<\/b>";
</script>`

func TestTooltipsProcess(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{parser.PageURL("item", "19019"): itemPage}}
	j := NewTooltips(f, "item", "DB_ID")
	j.Icon, j.DisplayID = true, true

	if got, want := j.Columns([]string{"DB_ID", "TOOLTIP"}), []string{"DB_ID", "TOOLTIP", "ICON_NAME", "DISP_ID"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}

	rows, err := j.Process(context.Background(), map[string]string{"DB_ID": "19019", "EQ_TYPE": "13"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	r := rows[0]
	if r["TOOLTIP"] != "<b>Thunderfury</b>" || r["ICON_NAME"] != "inv_sword_39" || r["DISP_ID"] != "30606" {
		t.Fatalf("row = %v", r)
	}

	// complete rows pass through without a fetch
	n := len(f.gets)
	done := map[string]string{"DB_ID": "1", "TOOLTIP": "x", "ICON_NAME": "y", "EQ_TYPE": "11"}
	rows, err = j.Process(context.Background(), done)
	if err != nil || !reflect.DeepEqual(rows[0], done) || len(f.gets) != n {
		t.Fatalf("pass-through: rows=%v err=%v", rows, err)
	}
}

func TestTooltipsFetchErrorKeepsRow(t *testing.T) {
	j := NewTooltips(&fakeFetcher{}, "spell", "SPELLID")
	rows, err := j.Process(context.Background(), map[string]string{"SPELLID": "1"})
	if !errors.Is(err, fetch.ErrNotFound) {
		t.Fatalf("Process() error = %v, want fetch.ErrNotFound", err)
	}
	if len(rows) != 1 || rows[0]["SPELLID"] != "1" || rows[0]["TOOLTIP"] != "" {
		t.Fatalf("rows = %v", rows)
	}
	if _, ok := rows[0]["TOOLTIP"]; !ok {
		t.Fatal("TOOLTIP column not set on failure")
	}
}

func TestStatsJob(t *testing.T) {
	row := map[string]string{"DB_ID": "1", "TOOLTIP": `<!--amr-->120 Armor<br>Use: Heal yourself.`}
	rows, err := Stats{}.Process(context.Background(), row)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["ARMOR"] != "120" || rows[0]["COMMENTS"] != "Use: Heal yourself." || rows[0]["DB_ID"] != "1" {
		t.Fatalf("row = %v", rows[0])
	}
	cols := Stats{}.Columns([]string{"DB_ID", "ARMOR"})
	if cols[0] != "DB_ID" || cols[1] != "ARMOR" || strings.Count(strings.Join(cols, ","), "ARMOR") != 1 {
		t.Fatalf("Columns() = %v", cols)
	}
}

func TestIconsJob(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "have_it.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &fakeFetcher{}
	j := NewIcons(f, dir)
	for _, name := range []string{"inv_sword_39", "have_it", "", "inv_sword_39"} {
		if _, err := j.Process(context.Background(), map[string]string{"ICON_NAME": name}); err != nil {
			t.Fatalf("Process(%q) error = %v", name, err)
		}
	}
	if want := []string{parser.IconURL("inv_sword_39")}; !reflect.DeepEqual(f.downloads, want) {
		t.Fatalf("downloads = %v, want %v", f.downloads, want)
	}
	if _, err := j.Process(context.Background(), map[string]string{"ICON_NAME": "../etc/passwd"}); err == nil {
		t.Fatal("Process(path traversal) error = nil")
	}
}

func TestAssetsJob(t *testing.T) {
	base := "http://mv.test/modelviewer/classic"
	j := NewAssets(nil, base+"/")
	meta := `{"Model":{"2":148298},"Textures":{"2":111},
	  "TextureFiles":{"0":[{"FileDataId":222}]},"ModelFiles":{"0":[{"FileDataId":333}]}}`
	f := &fakeFetcher{pages: map[string]string{
		base + "/meta/armor/5/100.json": meta,
		base + "/mo3/148298.mo3":        "",
		base + "/textures/111.webp":     "",
	}}
	j.fetch = f

	rows, err := j.Process(context.Background(), map[string]string{"DISP_ID": "100", "EQ_TYPE": "5"})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r["Missing"]+":"+r["FileDataId"])
	}
	if want := []string{"texture:222", "model:333"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}

	rows, _ = j.Process(context.Background(), map[string]string{"DISP_ID": "7", "EQ_TYPE": "13"})
	if len(rows) != 1 || rows[0]["Missing"] != "json" || rows[0]["URL"] != base+"/meta/item/7.json" {
		t.Fatalf("missing json rows = %v", rows)
	}

	if rows, _ := j.Process(context.Background(), map[string]string{"DISP_ID": "0", "EQ_TYPE": "5"}); rows != nil {
		t.Fatalf("DISP_ID 0 rows = %v", rows)
	}
}
