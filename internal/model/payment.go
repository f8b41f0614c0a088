// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Payment is read-only on this side.
type Payment struct {
	ID            string    `json:"_id"`
	StudentID     Ref       `json:"studentId"`
	CourseID      Ref       `json:"courseId"`
	Amount        float64   `json:"amount"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// IsSuccessful treats both "completed" and "success" as settled.
func (p Payment) IsSuccessful() bool {
	return p.Status == "completed" || p.Status == "success"
}
