package jobs

import (
	"context"
	"fmt"
	"strconv"

	"wowscrape-go/internal/config"
	"wowscrape-go/internal/frontier"
	"wowscrape-go/internal/jsliteral"
	"wowscrape-go/internal/parser"
)

var dropColumns = []string{"npc_id", "item_id", "name", "slot", "quality", "count", "outof", "drop_chance"}

// Drop is one equippable item an NPC (or container) can drop.
type Drop struct {
	NPCID   string
	ItemID  string
	Name    string
	Slot    int64
	Quality int64
	Count   int64
	OutOf   int64
	Chance  float64
}

// SelectDrops applies the drop filters to one NPC's Listview records:
// equippable (slot > 0), chance from mode "0" at least MinChance, outof at
// least OutOfRatio of the NPC's largest outof, quality at least MinQuality.
func SelectDrops(npcID string, recs []jsliteral.Record, rules config.DropRules) []Drop {
	var candidates []Drop
	for _, r := range recs {
		slot := r.Int("slot", 0)
		if slot <= 0 {
			continue
		}
		count, outof := int64(0), int64(1)
		if r.Has("modes.0") {
			count = r.Int("modes.0.count", 0)
			outof = r.Int("modes.0.outof", 1)
		}
		if outof <= 0 {
			continue
		}
		chance := float64(count) / float64(outof)
		if chance < rules.MinChance {
			continue
		}
		candidates = append(candidates, Drop{
			NPCID:   npcID,
			ItemID:  r.String("id"),
			Name:    r.String("name"),
			Slot:    slot,
			Quality: r.Int("quality", 0),
			Count:   count,
			OutOf:   outof,
			Chance:  chance,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	var maxOutOf int64
	for _, d := range candidates {
		maxOutOf = max(maxOutOf, d.OutOf)
	}
	threshold := float64(maxOutOf) * rules.OutOfRatio

	var out []Drop
	for _, d := range candidates {
		if float64(d.OutOf) >= threshold && d.Quality >= rules.MinQuality {
			out = append(out, d)
		}
	}
	return out
}

func (d Drop) row() map[string]string {
	return map[string]string{
		"npc_id":      d.NPCID,
		"item_id":     d.ItemID,
		"name":        d.Name,
		"slot":        strconv.FormatInt(d.Slot, 10),
		"quality":     strconv.FormatInt(d.Quality, 10),
		"count":       strconv.FormatInt(d.Count, 10),
		"outof":       strconv.FormatInt(d.OutOf, 10),
		"drop_chance": strconv.FormatFloat(d.Chance, 'f', -1, 64),
	}
}

// Drops reads rows of npc_id, prefix and loot and emits the filtered drop
// table of every row with loot = 1.
type Drops struct {
	fetch Fetcher
	rules config.DropRules
	seen  *frontier.Visited
}

func NewDrops(f Fetcher, rules config.DropRules) *Drops {
	return &Drops{fetch: f, rules: rules, seen: frontier.NewVisited()}
}

func (j *Drops) Name() string { return "drops" }

func (j *Drops) Columns([]string) []string { return dropColumns }

func (j *Drops) Process(ctx context.Context, row map[string]string) ([]map[string]string, error) {
	if field(row, "loot") != "1" {
		return nil, nil
	}
	npcID, prefix := field(row, "npc_id"), field(row, "prefix")
	if prefix == "" {
		prefix = "npc"
	}
	url := parser.PageURL(prefix, npcID)
	if !j.seen.Add(url) {
		return nil, nil
	}

	page, err := j.fetch.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	recs, err := parser.ListviewRecords(page, "item", "drops", "contains")
	observeLiteral(err)
	if err != nil {
		return nil, fmt.Errorf("%s=%s: %w", prefix, npcID, err)
	}

	drops := SelectDrops(npcID, recs, j.rules)
	rows := make([]map[string]string, len(drops))
	for i, d := range drops {
		rows[i] = d.row()
	}
	return rows, nil
}
