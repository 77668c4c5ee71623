package parser

import (
	"fmt"
	"strings"
)

const (
	SiteBase = "https://www.wowhead.com"
	IconBase = "https://wow.zamimg.com/images/wow/icons/large"
)

// PageURL builds the classic page for an entity, e.g. PageURL("npc", "13280").
func PageURL(kind, id string) string {
	return fmt.Sprintf("%s/classic/%s=%s", SiteBase, kind, strings.TrimSpace(id))
}

// IconURL is where the large jpg for an icon name lives.
func IconURL(name string) string {
	return fmt.Sprintf("%s/%s.jpg", IconBase, name)
}
