package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
	"tourops/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking vouchers and refund statements as PDFs.
type DocsService struct {
	Bookings   BookingStore
	Departures DepartureStore
	Refunds    RefundStore
	RequestID  string
	Loader     func(context.Context, int64) (bookingDocData, error)
}

type bookingDocData struct {
	BookingID     int64
	ReferenceNo   string
	CustomerName  string
	CustomerPhone string
	TourName      string
	DepartureDate string
	GuestCount    int
	AmountCharged int64
	Status        string
	RefundAmount  int64
	RefundFee     int64
	NetPayable    int64
	CancelledAt   string
}

func (s DocsService) GenerateVoucher(ctx context.Context, bookingID int64) ([]byte, string, error) {
	data, err := s.loadBookingDocData(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if data.Status != string(models.BookingConfirmed) {
		return nil, "", domain.StateError{BookingID: bookingID, From: data.Status, To: string(models.BookingConfirmed)}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_voucher", fmt.Sprintf("booking_id=%d", bookingID))
	return buildVoucherPDF(data)
}

func (s DocsService) GenerateRefundStatement(ctx context.Context, bookingID int64) ([]byte, string, error) {
	data, err := s.loadBookingDocData(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if !models.BookingStatus(data.Status).Terminal() {
		return nil, "", domain.StateError{BookingID: bookingID, From: data.Status, To: "cancelled"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_refund_statement", fmt.Sprintf("booking_id=%d", bookingID))
	return buildRefundStatementPDF(data)
}

func (s DocsService) loadBookingDocData(ctx context.Context, bookingID int64) (bookingDocData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	var out bookingDocData

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return out, err
	}
	out.BookingID = b.ID
	out.CustomerName = b.CustomerName
	out.CustomerPhone = b.CustomerPhone
	out.GuestCount = b.GuestCount
	out.AmountCharged = b.AmountCharged
	out.Status = string(b.Status)
	out.RefundAmount = b.RefundAmount
	out.RefundFee = b.RefundFee
	out.NetPayable = b.NetPayable
	if b.CancelledAt != nil {
		out.CancelledAt = utils.FormatDateTime(*b.CancelledAt)
	}

	if dep, err := s.Departures.GetByID(ctx, b.DepartureID); err == nil {
		out.TourName = dep.TourName
		out.DepartureDate = utils.FormatDate(dep.DepartureDate)
	}

	if rr, err := s.Refunds.GetByBookingID(ctx, bookingID); err == nil {
		out.ReferenceNo = rr.ReferenceNo
	}

	return out, nil
}

func buildVoucherPDF(d bookingDocData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Voucher", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING VOUCHER")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Code   : #%d", d.BookingID),
		fmt.Sprintf("Customer       : %s", safe(d.CustomerName, "-")),
		fmt.Sprintf("Phone          : %s", safe(d.CustomerPhone, "-")),
		fmt.Sprintf("Tour           : %s", safe(d.TourName, "-")),
		fmt.Sprintf("Departure Date : %s", safe(d.DepartureDate, "-")),
		fmt.Sprintf("Guests         : %d", d.GuestCount),
		fmt.Sprintf("Amount Paid    : %s", utils.FormatRupiah(d.AmountCharged)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Present this voucher at the meeting point on departure day. Valid for the listed guest count only.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("VOUCHER_%d_%s.pdf", d.BookingID, safeFilenamePart(d.CustomerName))
	return buf.Bytes(), filename, nil
}

func buildRefundStatementPDF(d bookingDocData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Refund Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "REFUND STATEMENT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Reference No : "+safe(d.ReferenceNo, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued       : "+utils.FormatDateTime(time.Now()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Booking:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Code : #%d", d.BookingID),
		fmt.Sprintf("Customer     : %s", safe(d.CustomerName, "-")),
		fmt.Sprintf("Tour         : %s", safe(d.TourName, "-")),
		fmt.Sprintf("Status       : %s", safe(d.Status, "-")),
		fmt.Sprintf("Cancelled At : %s", safe(d.CancelledAt, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Breakdown:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Amount Charged     : "+utils.FormatRupiah(d.AmountCharged))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Refund (per policy): "+utils.FormatRupiah(d.RefundAmount))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Cancellation Fee   : "+utils.FormatRupiah(d.RefundFee))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Net Payable: "+utils.FormatRupiah(d.NetPayable))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "The net payable amount is transferred to the original payment method within 7 business days.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("REFUND_%d_%s.pdf", d.BookingID, safeFilenamePart(d.ReferenceNo))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
