// internal/jsliteral/extract.go
package jsliteral

import "strings"

// Literal is the raw text between a literal's opening and closing delimiter.
type Literal struct {
	Text  string
	Open  byte // '[' or '{'
	Start int  // offset of Text inside the source
}

// Wrapped returns the literal with its delimiters restored.
func (l Literal) Wrapped() string {
	return string(l.Open) + l.Text + string(closer(l.Open))
}

// End is the offset just past the closing delimiter in the source.
func (l Literal) End() int { return l.Start + len(l.Text) + 1 }

// Extract finds marker in text and returns the bracketed literal that
// follows it. A marker ending in '[' opens the literal itself ("data:[");
// otherwise the first '[' or '{' after the marker does.
func Extract(text, marker string) (Literal, error) {
	return extractFrom(text, marker, 0)
}

// ExtractAll returns every literal that follows an occurrence of marker.
// Occurrences whose literal never closes are skipped.
func ExtractAll(text, marker string) []Literal {
	var out []Literal
	from := 0
	for from < len(text) {
		lit, err := extractFrom(text, marker, from)
		if err != nil {
			// truncated literal: keep looking after this marker
			i := strings.Index(text[from:], marker)
			if i < 0 || marker == "" {
				break
			}
			from += i + len(marker)
			continue
		}
		out = append(out, lit)
		from = lit.End()
	}
	return out
}

func extractFrom(text, marker string, from int) (Literal, error) {
	if marker == "" {
		return Literal{}, ErrNotFound
	}
	i := strings.Index(text[from:], marker)
	if i < 0 {
		return Literal{}, ErrNotFound
	}
	pos := from + i + len(marker)

	var open int
	if strings.HasSuffix(marker, "[") {
		open = pos - 1
	} else {
		j := strings.IndexAny(text[pos:], "[{")
		if j < 0 {
			return Literal{}, ErrNotFound
		}
		open = pos + j
	}

	end, ok := matchClose(text, open)
	if !ok {
		return Literal{}, ErrNotFound
	}
	return Literal{
		Text:  text[open+1 : end],
		Open:  text[open],
		Start: open + 1,
	}, nil
}

// matchClose scans from the opening delimiter at text[open] and returns the
// index of its matching close. Delimiters inside quoted strings don't count.
func matchClose(text string, open int) (int, bool) {
	o := text[open]
	c := closer(o)
	depth := 1
	var quote byte
	escaped := false

	for i := open + 1; i < len(text); i++ {
		ch := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func closer(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}
