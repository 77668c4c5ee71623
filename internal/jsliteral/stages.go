package jsliteral

import (
	"regexp"
	"strings"
)

// Stage is one rewrite in the normalizer chain.
type Stage struct {
	Name  string
	Apply func(string) string
}

// SymbolPlaceholder replaces dotted constant references such as WH.TERMS.heroic.
// The real value lives in the site's term dictionary and is not recoverable here.
const SymbolPlaceholder = "WH_TERMS_placeholder"

var (
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][\w$]*|\d+)\s*:`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	dottedSymbolRe  = regexp.MustCompile(`([:\[,]\s*)([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)+)`)
	stringifiedRe   = regexp.MustCompile(`(:\s*)"(\{[^"{}\\]*\})"`)
	numericMapRe    = regexp.MustCompile(`^\{\s*(?:\d+\s*:\s*-?[\d.]+(?:[eE][+-]?\d+)?\s*(?:,\s*)?)+\}$`)
	intKeyRe        = regexp.MustCompile(`([{,]\s*)(\d+)\s*:`)

	quoteReplacer = strings.NewReplacer("’", "'", "‘", "'", "`", "'")
)

var (
	// QuoteKeys wraps bareword and bare-integer object keys in double quotes.
	QuoteKeys = Stage{"quote-keys", func(s string) string {
		return mapCode(s, func(code string) string {
			return bareKeyRe.ReplaceAllString(code, `$1"$2":`)
		})
	}}

	// StripTrailingCommas drops a comma that directly precedes '}' or ']'.
	StripTrailingCommas = Stage{"trailing-commas", func(s string) string {
		return mapCode(s, func(code string) string {
			return trailingCommaRe.ReplaceAllString(code, "$1")
		})
	}}

	// ReplaceSymbols turns dotted identifier values into SymbolPlaceholder.
	ReplaceSymbols = Stage{"symbol-placeholders", func(s string) string {
		return mapCode(s, func(code string) string {
			return dottedSymbolRe.ReplaceAllString(code, `$1"`+SymbolPlaceholder+`"`)
		})
	}}

	// NormalizeQuotes maps typographic single quotes and back-ticks to '.
	NormalizeQuotes = Stage{"quotes", quoteReplacer.Replace}

	// UnwrapStringifiedObjects turns "pctstack":"{0:10,1:90}" into
	// "pctstack":{"0":10,"1":90}. Only integer-keyed numeric maps qualify.
	UnwrapStringifiedObjects = Stage{"stringified-objects", func(s string) string {
		return stringifiedRe.ReplaceAllStringFunc(s, func(m string) string {
			sub := stringifiedRe.FindStringSubmatch(m)
			inner := sub[2]
			if !numericMapRe.MatchString(inner) {
				return m
			}
			inner = intKeyRe.ReplaceAllString(inner, `$1"$2":`)
			inner = trailingCommaRe.ReplaceAllString(inner, "$1")
			return sub[1] + inner
		})
	}}
)

// DefaultStages is the rewrite order for the site's literal dialect.
// Later stages assume the earlier ones already ran.
func DefaultStages() []Stage {
	return []Stage{
		QuoteKeys,
		StripTrailingCommas,
		ReplaceSymbols,
		NormalizeQuotes,
		UnwrapStringifiedObjects,
	}
}

// mapCode applies fn to every run of s that lies outside a quoted string.
// String literals (single or double quoted, with backslash escapes) are
// copied through untouched.
func mapCode(s string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)

	codeStart := 0
	for i := 0; i < len(s); i++ {
		q := s[i]
		if q != '"' && q != '\'' {
			continue
		}
		b.WriteString(fn(s[codeStart:i]))

		j := i + 1
		for j < len(s) && s[j] != q {
			if s[j] == '\\' {
				j++
			}
			j++
		}
		j = min(j+1, len(s))
		b.WriteString(s[i:j])
		codeStart = j
		i = j - 1
	}
	b.WriteString(fn(s[codeStart:]))
	return b.String()
}
