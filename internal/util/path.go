// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeFilename extracts only the base filename, removing any directory
// components a browser may send with an upload ("C:\fakepath\photo.jpg"
// or "../../etc/passwd"). Returns an error if nothing usable is left.
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if safe == "." || safe == ".." || safe == "" || safe == "/" {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}
