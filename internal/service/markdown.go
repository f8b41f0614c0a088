// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer strips anything unsafe from rendered descriptions. The
// backend stores whatever admins type, so its HTML is never trusted.
var htmlSanitizer = bluemonday.UGCPolicy()

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// RenderMarkdown converts a description to sanitized HTML. Plain text
// comes out as a paragraph.
func RenderMarkdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped above
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}

// stripPolicy removes every tag, leaving text.
var stripPolicy = bluemonday.StrictPolicy()

// Excerpt returns the first n characters of the description's text, with
// an ellipsis when something was cut.
func Excerpt(s string, n int) string {
	text := strings.Join(strings.Fields(html.UnescapeString(stripPolicy.Sanitize(s))), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:n]), " ") + "…"
}
