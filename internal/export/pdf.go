// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package export renders student ID cards and payment receipts as PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/util"
)

// ErrMissingStudent is returned when a card has no student name.
var ErrMissingStudent = errors.New("export: student name is required")

// ErrMissingPayment is returned when a receipt has no payment id.
var ErrMissingPayment = errors.New("export: payment id is required")

// IDCard is everything printed on a student ID card.
type IDCard struct {
	College    string
	StudentID  string
	Name       string
	Email      string
	Mobile     string
	Course     string
	Department string
	Issued     time.Time
	ValidUntil time.Time
}

// NewIDCard builds a card for student. Course and department are the
// names picked by the admin; empty ones print as "-". Cards are valid for
// one year from issue.
func NewIDCard(college string, student model.Student, course, department string, issued time.Time) IDCard {
	return IDCard{
		College:    college,
		StudentID:  student.ID,
		Name:       student.Name,
		Email:      student.Email,
		Mobile:     student.Mobile,
		Course:     course,
		Department: department,
		Issued:     issued,
		ValidUntil: issued.AddDate(1, 0, 0),
	}
}

// Receipt is a printable payment record.
type Receipt struct {
	College string
	Payment model.Payment
	Issued  time.Time
}

// CR80, the usual ID card size, in millimetres.
var cardSize = gofpdf.SizeType{Wd: 53.98, Ht: 85.6}

// Brand colors.
var (
	navy  = [3]int{26, 35, 126}
	muted = [3]int{97, 97, 97}
)

func pdfText(s string) string {
	if s = util.ASCII(s); s == "" {
		return "-"
	}
	return s
}

func newDocument(orientation string, size gofpdf.SizeType, title string, issued time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		SizeStr:        "A4",
		Size:           size,
	})
	pdf.SetTitle(pdfText(title), false)
	pdf.SetCreator("campus", false)
	pdf.SetCreationDate(issued)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderIDCard draws a single landscape CR80 card.
func RenderIDCard(card IDCard) ([]byte, error) {
	if strings.TrimSpace(card.Name) == "" {
		return nil, ErrMissingStudent
	}

	pdf := newDocument("L", cardSize, "ID Card - "+card.Name, card.Issued)
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	w, h := pdf.GetPageSize()

	// Header band
	pdf.SetFillColor(navy[0], navy[1], navy[2])
	pdf.Rect(0, 0, w, 12, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(4, 2.5)
	pdf.CellFormat(w-8, 4, strings.ToUpper(pdfText(card.College)), "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	pdf.CellFormat(w-8, 3.5, "STUDENT IDENTITY CARD", "", 0, "C", false, 0, "")

	// Photo placeholder
	pdf.SetDrawColor(muted[0], muted[1], muted[2])
	pdf.SetLineWidth(0.2)
	pdf.Rect(4, 15, 18, 22, "D")
	pdf.SetTextColor(muted[0], muted[1], muted[2])
	pdf.SetFont("Helvetica", "", 5)
	pdf.SetXY(4, 25)
	pdf.CellFormat(18, 3, "PHOTO", "", 0, "C", false, 0, "")

	// Details
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(25, 15)
	pdf.CellFormat(w-29, 5, pdfText(card.Name), "", 2, "L", false, 0, "")

	rows := [][2]string{
		{"ID", card.StudentID},
		{"Course", card.Course},
		{"Department", card.Department},
		{"Email", card.Email},
		{"Mobile", card.Mobile},
	}
	for _, r := range rows {
		pdf.SetX(25)
		pdf.SetFont("Helvetica", "B", 6)
		pdf.CellFormat(14, 3.6, r[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 6)
		pdf.CellFormat(w-43, 3.6, pdfText(r[1]), "", 2, "L", false, 0, "")
	}

	// Footer
	pdf.SetDrawColor(navy[0], navy[1], navy[2])
	pdf.Line(4, h-9, w-4, h-9)
	pdf.SetFont("Helvetica", "", 5.5)
	pdf.SetTextColor(muted[0], muted[1], muted[2])
	pdf.SetXY(4, h-8)
	pdf.CellFormat((w-8)/2, 3, "Issued "+card.Issued.Format("02 Jan 2006"), "", 0, "L", false, 0, "")
	pdf.CellFormat((w-8)/2, 3, "Valid until "+card.ValidUntil.Format("02 Jan 2006"), "", 0, "R", false, 0, "")

	return output(pdf)
}

// RenderReceipt draws an A4 receipt for one payment.
func RenderReceipt(r Receipt) ([]byte, error) {
	p := r.Payment
	if p.ID == "" {
		return nil, ErrMissingPayment
	}

	pdf := newDocument("P", gofpdf.SizeType{}, "Receipt "+p.ID, r.Issued)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(navy[0], navy[1], navy[2])
	pdf.CellFormat(0, 10, pdfText(r.College), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(muted[0], muted[1], muted[2])
	pdf.CellFormat(0, 7, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	status := "Pending"
	if p.IsSuccessful() {
		status = "Paid"
	} else if p.Status != "" {
		status = strings.ToUpper(p.Status[:1]) + p.Status[1:]
	}

	date := "-"
	if !p.CreatedAt.IsZero() {
		date = p.CreatedAt.Format("02 Jan 2006, 15:04")
	}

	rows := [][2]string{
		{"Receipt No.", p.ID},
		{"Date", date},
		{"Student", p.StudentID.Label(p.StudentID.ID)},
		{"Email", p.StudentID.Email},
		{"Course", p.CourseID.Label(p.CourseID.ID)},
		{"Payment Type", p.Type},
		{"Transaction ID", p.TransactionID},
		{"Status", status},
	}
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, row[0], "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, pdfText(row[1]), "B", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(50, 10, "Amount", "", 0, "L", false, 0, "")
	// The core fonts have no rupee sign.
	pdf.CellFormat(0, 10, "Rs. "+util.FormatAmount(p.Amount), "", 1, "R", false, 0, "")

	pdf.Ln(16)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(muted[0], muted[1], muted[2])
	pdf.MultiCell(0, 5, "This is a computer generated receipt and does not require a signature. Generated on "+
		r.Issued.Format("02 Jan 2006")+".", "", "C", false)

	return output(pdf)
}

// IDCardFilename names the download for a card.
func IDCardFilename(card IDCard) string {
	if slug := util.Slugify(card.Name); slug != "" {
		return "id-card-" + slug + ".pdf"
	}
	return "id-card.pdf"
}

// ReceiptFilename names the download for a receipt.
func ReceiptFilename(p model.Payment) string {
	return "receipt-" + util.Slugify(p.ID) + ".pdf"
}
