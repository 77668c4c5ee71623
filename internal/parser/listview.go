// internal/parser/listview.go
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"wowscrape-go/internal/jsliteral"
)

const (
	// ListviewMarker precedes the record array of a Listview widget.
	ListviewMarker = "data:["
	listviewCall   = "new Listview("
)

// ErrNoListview means no script on the page builds a matching Listview.
// It wraps jsliteral.ErrNotFound: the page simply carries no data.
var ErrNoListview = fmt.Errorf("parser: no matching Listview on page: %w", jsliteral.ErrNotFound)

var (
	templateRe = regexp.MustCompile(`template:\s*'([^']*)'`)
	listIDRe   = regexp.MustCompile(`\bid:\s*'([^']*)'`)
)

// FindListview returns the options literal of the first Listview, across
// all scripts, built with the given template and one of the given ids.
// A script may construct several Listviews; each call is checked on its own.
func FindListview(scripts []string, template string, ids ...string) (string, bool) {
	for _, s := range scripts {
		if !strings.Contains(s, listviewCall) {
			continue
		}
		for _, call := range jsliteral.ExtractAll(s, listviewCall) {
			opts := call.Wrapped()
			if listviewMatches(opts, template, ids) {
				return opts, true
			}
		}
	}
	return "", false
}

// listviewMatches checks the widget options that precede the data array,
// so quoted ids inside records can't produce a false match.
func listviewMatches(opts, template string, ids []string) bool {
	head := opts
	if i := strings.Index(opts, ListviewMarker); i >= 0 {
		head = opts[:i]
	}
	if m := templateRe.FindStringSubmatch(head); m == nil || m[1] != template {
		return false
	}
	for _, m := range listIDRe.FindAllStringSubmatch(head, -1) {
		for _, id := range ids {
			if m[1] == id {
				return true
			}
		}
	}
	return false
}

// ListviewRecords decodes the data array of the matching Listview on page.
// Both ErrNoListview and a truncated data array match jsliteral.ErrNotFound;
// a data array that won't rewrite to JSON is a *jsliteral.ConversionError.
func ListviewRecords(page []byte, template string, ids ...string) ([]jsliteral.Record, error) {
	opts, ok := FindListview(ScriptBodies(page), template, ids...)
	if !ok {
		return nil, ErrNoListview
	}
	recs, err := jsliteral.Parse(opts, ListviewMarker)
	if err != nil {
		return nil, fmt.Errorf("listview %s: %w", template, err)
	}
	return recs, nil
}
