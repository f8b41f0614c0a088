// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small text helpers shared by rendering, uploads and
// PDF export.
package util

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// ASCII transliterates s to plain ASCII ("Ananyā" becomes "Ananya"). The
// built-in PDF fonts only cover Latin-1, so names go through this first.
func ASCII(s string) string {
	return strings.TrimSpace(unidecode.Unidecode(s))
}

// Slugify converts a string to a filename-friendly slug.
func Slugify(s string) string {
	result := strings.ToLower(ASCII(s))
	result = strings.ReplaceAll(result, " ", "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
