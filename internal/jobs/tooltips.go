package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"wowscrape-go/internal/parser"
)

// equip types whose display id isn't looked up (bags, quivers, ammo and the like)
var noDisplayID = map[string]bool{"2": true, "11": true, "12": true}

// Tooltips fills TOOLTIP, ICON_NAME and DISP_ID columns from entity pages.
// Rows that already carry every requested value are passed through, so a
// re-run only fetches what's still missing.
type Tooltips struct {
	fetch     Fetcher
	Kind      string // "item" or "spell"
	IDColumn  string
	Tooltip   bool
	Icon      bool
	DisplayID bool
}

func NewTooltips(f Fetcher, kind, idColumn string) *Tooltips {
	return &Tooltips{fetch: f, Kind: kind, IDColumn: idColumn, Tooltip: true}
}

func (j *Tooltips) Name() string { return j.Kind + "_tooltips" }

func (j *Tooltips) Columns(in []string) []string {
	return appendMissing(in, j.wanted()...)
}

func (j *Tooltips) wanted() []string {
	var cols []string
	if j.Tooltip {
		cols = append(cols, "TOOLTIP")
	}
	if j.Icon {
		cols = append(cols, "ICON_NAME")
	}
	if j.DisplayID {
		cols = append(cols, "DISP_ID")
	}
	return cols
}

// needs lists the requested columns this row still lacks.
func (j *Tooltips) needs(row map[string]string) []string {
	var missing []string
	for _, c := range j.wanted() {
		if c == "DISP_ID" && noDisplayID[field(row, "EQ_TYPE")] {
			continue
		}
		if field(row, c) == "" {
			missing = append(missing, c)
		}
	}
	return missing
}

func (j *Tooltips) Process(ctx context.Context, row map[string]string) ([]map[string]string, error) {
	out := copyRow(row)
	missing := j.needs(row)
	if len(missing) == 0 {
		return []map[string]string{out}, nil
	}

	id := field(row, j.IDColumn)
	if id == "" {
		return []map[string]string{out}, fmt.Errorf("empty %s", j.IDColumn)
	}
	url := parser.PageURL(j.Kind, id)
	page, err := j.fetch.Get(ctx, url)
	if err != nil {
		for _, c := range missing {
			out[c] = ""
		}
		return []map[string]string{out}, fmt.Errorf("fetch %s: %w", url, err)
	}

	var errs []error
	var entry parser.GathererEntry
	var haveEntry bool
	for _, c := range missing {
		switch c {
		case "TOOLTIP":
			tip, ok, err := parser.Tooltip(page)
			if err != nil {
				errs = append(errs, err)
			} else if !ok {
				errs = append(errs, fmt.Errorf("no tooltip for %s=%s", j.Kind, id))
			}
			out[c] = tip
		case "ICON_NAME", "DISP_ID":
			if !haveEntry {
				entry, haveEntry = parser.Gatherer(page, id)
			}
			if c == "ICON_NAME" {
				out[c] = entry.Icon
				if out[c] == "" {
					out[c], _ = parser.IconName(page)
				}
			} else if entry.DisplayID > 0 {
				out[c] = strconv.FormatInt(entry.DisplayID, 10)
			} else {
				out[c] = ""
			}
			if out[c] == "" {
				errs = append(errs, fmt.Errorf("no %s for %s=%s", c, j.Kind, id))
			}
		}
	}
	return []map[string]string{out}, errors.Join(errs...)
}
