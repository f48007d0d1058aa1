// Package render turns stored message content into display markup.
//
// Only two constructs survive: **bold** spans and line breaks. Everything
// else is escaped before those are reinterpreted, so message content can
// never inject tags of its own.
package render

import (
	"html"
	"regexp"
	"strings"
)

var boldSpan = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Markup escapes & < > " ' and then rewrites bold spans and newlines.
func Markup(content string) string {
	escaped := html.EscapeString(content)
	escaped = boldSpan.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// Plain strips the bold markers, for log lines and terminals without styling.
func Plain(content string) string {
	return boldSpan.ReplaceAllString(content, "$1")
}
