package parser

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// ScriptBodies returns the text of every inline <script> element in page order.
func ScriptBodies(content []byte) []string {
	z := html.NewTokenizer(bytes.NewReader(content))
	scripts := make([]string, 0, 8)
	inScript := false
	var sb strings.Builder

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "script" {
				inScript = true
				sb.Reset()
			}
		case html.TextToken:
			if inScript {
				sb.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "script" && inScript {
				inScript = false
				if s := strings.TrimSpace(sb.String()); s != "" {
					scripts = append(scripts, s)
				}
			}
		}
	}
	return scripts
}
