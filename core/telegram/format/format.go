// Package format renders user-supplied values into Telegram message text.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Markdown selects a Telegram markdown dialect.
type Markdown int

const (
	MarkdownV1 Markdown = 1
	MarkdownV2 Markdown = 2
)

var (
	v1Escaper = escaper("_*`[")
	v2Escaper = escaper("_*[]()~`>#+-=|{}.!")
)

func escaper(specials string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(specials))
	for _, r := range specials {
		pairs = append(pairs, string(r), `\`+string(r))
	}
	return strings.NewReplacer(pairs...)
}

// EscapeMarkdown backslash-escapes the characters dialect v treats as markup.
func EscapeMarkdown(text string, v Markdown) (string, error) {
	switch v {
	case MarkdownV1:
		return v1Escaper.Replace(text), nil
	case MarkdownV2:
		return v2Escaper.Replace(text), nil
	}
	return "", fmt.Errorf("format: unsupported markdown version %d", v)
}

// MD escapes text for legacy Markdown messages.
func MD(text string) string {
	return v1Escaper.Replace(text)
}

// Or returns *s, or fallback when s is nil or blank.
func Or(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

// Amount renders a money value without trailing zeros ("500", "12.5").
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
