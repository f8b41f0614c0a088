// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"errors"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/service"
	"github.com/olegiv/campus-go/internal/util"
)

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case model.Timestamp:
		return t.Time
	case *model.Timestamp:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

func truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	return string([]rune(s)[:length]) + "..."
}

// initials returns up to two uppercase initials for an avatar.
func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToUpper(r))
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// statusClass maps admission and payment statuses to chip styles.
func statusClass(status string) string {
	switch strings.ToLower(status) {
	case "approved", "completed", "success":
		return "chip-success"
	case "rejected", "failed":
		return "chip-error"
	case "pending":
		return "chip-warning"
	default:
		return "chip-default"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// dict builds a map from alternating keys and values so several values can
// be passed to a partial.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// withQuery returns base with key set to value, dropping empty values.
// Pairs are applied in order.
func withQuery(base string, pairs ...any) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		var value string
		switch v := pairs[i+1].(type) {
		case string:
			value = v
		case int:
			value = strconv.Itoa(v)
		case model.ContentType:
			value = string(v)
		}
		if key == "" {
			continue
		}
		if value == "" {
			q.Del(key)
		} else {
			q.Set(key, value)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func seq(start, end int) []int {
	var result []int
	for i := start; i <= end; i++ {
		result = append(result, i)
	}
	return result
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"truncate":       truncate,
		"excerpt":        service.Excerpt,
		"markdown":       service.RenderMarkdown,
		"rupees":         util.Rupees,
		"initials":       initials,
		"statusClass":    statusClass,
		"title":          titleCase,
		"dict":           dict,
		"withQuery":      withQuery,
		"contentTypes":   func() []model.ContentType { return model.ContentFilterTypes },
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": seq,
	}
}
