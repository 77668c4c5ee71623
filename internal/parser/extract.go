// internal/parser/extract.go
package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	itemSetRe = regexp.MustCompile(`/item-set=(\d+)`)
)

// TooltipText flattens tooltip HTML into single-spaced visible text.
func TooltipText(tooltip string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tooltip))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()

	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		collectText(s, &parts)
	})
	return strings.Join(parts, " ")
}

// collectText walks s and appends each non-empty text node, trimmed.
func collectText(s *goquery.Selection, parts *[]string) {
	if goquery.NodeName(s) == "#text" {
		if t := strings.TrimSpace(spaceRe.ReplaceAllString(s.Text(), " ")); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		collectText(c, parts)
	})
}

// ItemSetID returns the item-set id linked from a tooltip, or 0. Relative
// hrefs are resolved against base.
func ItemSetID(tooltip, base string) int {
	bu, err := url.Parse(base)
	if err != nil {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tooltip))
	if err != nil {
		return 0
	}
	id := 0
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		u, ok := resolveHref(bu, href)
		if !ok {
			return true
		}
		if m := itemSetRe.FindStringSubmatch(u.Path); m != nil {
			id, _ = strconv.Atoi(m[1])
			return false
		}
		return true
	})
	return id
}
