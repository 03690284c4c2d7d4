// Package textnorm reduces markup-heavy text to plain content suitable
// for embedding and storage.
package textnorm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/agent-memory/infrastructure/logging"
)

type rule struct {
	name    string
	pattern *regexp.Regexp
	repl    string
}

// rules run in order. Code is removed before links and URLs so that
// markup inside code samples never leaks into the output.
var rules = []rule{
	{"fenced_code", regexp.MustCompile("(?s)```.*?```"), ""},
	{"inline_code", regexp.MustCompile("`[^`]*`"), ""},
	{"heading", regexp.MustCompile(`(?m)^#{1,6}\s*(.*)$`), "$1"},
	{"image", regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`), "$1"},
	{"link", regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`), "$1"},
	{"url", regexp.MustCompile(`https?://(?:www\.)?([^\s/?#]+)([^\s?#]*)\S*`), "$1$2"},
	{"mention", regexp.MustCompile(`<@!?&?\d+>`), ""},
	{"tag", regexp.MustCompile(`<[^>]*>`), ""},
	{"horizontal_rule", regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`), ""},
	{"block_comment", regexp.MustCompile(`(?s)/\*.*?\*/`), ""},
	{"line_comment", regexp.MustCompile(`(?m)(^|\s)//.*$`), "$1"},
	{"whitespace", regexp.MustCompile(`\s+`), " "},
	// whitespace has already folded newlines, so blank_lines never fires.
	{"blank_lines", regexp.MustCompile(`\n{3,}`), "\n\n"},
	{"special_chars", regexp.MustCompile(`[^a-zA-Z0-9\s\-_./:?=&]`), ""},
}

// Normalize strips code, markup, links, tags and comments from text,
// collapses whitespace and drops characters outside a small allow list.
// Normalize(Normalize(s)) == Normalize(s) for every s.
//
// Passes repeat until the text stops changing. No replacement is longer
// than its match, so the loop terminates.
func Normalize(text string) string {
	for {
		next := apply(text)
		if next == text {
			return text
		}
		text = next
	}
}

func apply(text string) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}

// NormalizeValue normalizes v when it is a string. Any other type yields
// the empty string and a warning.
func NormalizeValue(ctx context.Context, v any) string {
	s, ok := v.(string)
	if !ok {
		logging.Warn().
			Add(logging.Str("type", fmt.Sprintf("%T", v))).
			Msg("content normalizer received non-string input")
		return ""
	}
	return Normalize(s)
}
