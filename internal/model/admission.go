// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// AdmissionStatus is owned by the backend and changed only by explicit
// transition requests.
type AdmissionStatus string

// Admission statuses.
const (
	AdmissionPending  AdmissionStatus = "pending"
	AdmissionApproved AdmissionStatus = "approved"
	AdmissionRejected AdmissionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s AdmissionStatus) Valid() bool {
	switch s {
	case AdmissionPending, AdmissionApproved, AdmissionRejected:
		return true
	}
	return false
}

// Admission is a student's application to a course.
type Admission struct {
	ID        string          `json:"_id"`
	StudentID Ref             `json:"studentId"`
	CourseID  Ref             `json:"courseId"`
	Status    AdmissionStatus `json:"status"`
	CreatedAt Timestamp       `json:"createdAt"`
}

// CanTransitionTo reports whether an admin may move the admission to s.
// Only approve and reject are offered, and never to the current status.
func (a Admission) CanTransitionTo(s AdmissionStatus) bool {
	if s != AdmissionApproved && s != AdmissionRejected {
		return false
	}
	return a.Status != s
}
