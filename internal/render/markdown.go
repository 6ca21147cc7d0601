// internal/render/markdown.go

// Package render prepares backend report content for terminal display.
package render

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern detects markup worth converting; plain text with a stray
// angle bracket is left alone.
var htmlTagPattern = regexp.MustCompile(`(?i)<\s*(p|div|span|a|ul|ol|li|table|tr|td|th|h[1-6]|br|strong|em|b|i)\b`)

// ToMarkdown converts HTML report content to markdown for the terminal.
// Non-HTML content is returned unchanged, as is anything the converter
// rejects.
func ToMarkdown(content string) string {
	if !looksLikeHTML(content) {
		return content
	}
	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(md)
}

func looksLikeHTML(content string) bool {
	return htmlTagPattern.MatchString(content)
}
