package parser

import (
	"encoding/json"
	"fmt"
	"regexp"

	"wowscrape-go/internal/jsliteral"
)

// GathererMarker opens a WH.Gatherer.addData(type, env, {...}) call.
const GathererMarker = "WH.Gatherer.addData("

var (
	tooltipRe  = regexp.MustCompile(`(?s)\.tooltip_enus\s*=\s*"(.+?)";`)
	iconCallRe = regexp.MustCompile(`Icon\.create\(\s*"([^"]+)"`)
)

// Tooltip decodes the escaped HTML assigned to `.tooltip_enus`.
func Tooltip(page []byte) (string, bool, error) {
	m := tooltipRe.FindSubmatch(page)
	if m == nil {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal([]byte(`"`+string(m[1])+`"`), &s); err != nil {
		return "", false, fmt.Errorf("decode tooltip: %w", err)
	}
	return s, true, nil
}

// IconName returns the first icon passed to Icon.create on the page.
func IconName(page []byte) (string, bool) {
	m := iconCallRe.FindSubmatch(page)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// GathererEntry is what the page's Gatherer data says about one id.
type GathererEntry struct {
	Icon      string
	DisplayID int64
}

// Gatherer scans every WH.Gatherer.addData block for id and returns the
// first entry found. Blocks that fail to normalize are skipped.
func Gatherer(page []byte, id string) (GathererEntry, bool) {
	path := jsonPathKey(id)
	for _, lit := range jsliteral.ExtractAll(string(page), GathererMarker) {
		js, err := jsliteral.Normalize(lit.Wrapped())
		if err != nil {
			continue
		}
		recs, err := jsliteral.Decode(js)
		if err != nil || len(recs) == 0 {
			continue
		}
		r := recs[0]
		if !r.Has(path) {
			continue
		}
		return GathererEntry{
			Icon:      r.String(path + ".icon"),
			DisplayID: r.Int(path+".displayid", 0),
		}, true
	}
	return GathererEntry{}, false
}

var gjsonSpecial = regexp.MustCompile(`[.*?|#@\\]`)

// jsonPathKey escapes characters gjson treats as path syntax.
func jsonPathKey(k string) string {
	return gjsonSpecial.ReplaceAllString(k, `\$0`)
}
