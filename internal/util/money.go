// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount groups digits the Indian way with two decimals:
// 123456.5 becomes "1,23,456.50".
func FormatAmount(v float64) string {
	return inr.Sprintf("%.2f", v)
}

// Rupees prefixes FormatAmount with the rupee sign.
func Rupees(v float64) string {
	return "₹" + FormatAmount(v)
}
