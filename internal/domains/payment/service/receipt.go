package service

import (
	"bytes"
	"fmt"
	"hostel/internal/domains/inventory"
	"hostel/internal/domains/payment/model"
	"hostel/shared/constant"
	"hostel/shared/timezone"
	"strconv"

	"github.com/go-pdf/fpdf"
)

const (
	receiptTitle      = "S.V PG — Payment Receipt"
	receiptDateFormat = "02 Jan 2006, 03:04 PM"
	receiptMargin     = 14.0
	receiptLine       = 7.0
)

// receiptLines holds the resolved text of a receipt, one section per slice.
type receiptLines struct {
	header  []string
	payer   []string
	booking []string
	payment []string
}

func buildReceipt(detail model.PaymentDetail) receiptLines {
	lines := receiptLines{
		header: []string{
			"Receipt ID: " + detail.ID,
			"Date: " + timezone.Format(detail.CreatedAt, receiptDateFormat),
		},
		payer: []string{
			"Name: " + detail.Name,
			"Phone: " + detail.Phone,
		},
		booking: []string{
			"Room: " + receiptRoom(detail),
			"Bed: " + receiptBed(detail),
		},
		payment: []string{
			"Amount: INR " + strconv.FormatFloat(detail.Amount, 'f', -1, 64),
			"Admin Code: " + detail.Code,
		},
	}

	if detail.HasUser() {
		lines.payer = append(lines.payer, "User: "+firstOf(detail.UserName, detail.UserUsername, detail.UserEmail))
	}

	if detail.HasBooking() {
		lines.booking = append(lines.booking, "Booked Name: "+firstOf(detail.BookingName))
	}

	return lines
}

func receiptRoom(detail model.PaymentDetail) string {
	switch {
	case detail.RoomNumber != nil && *detail.RoomNumber != constant.Empty:
		return *detail.RoomNumber
	case detail.HasBooking():
		return inventory.RoomNumber(*detail.BookingFloor, *detail.BookingRoom)
	default:
		return constant.NotAvailable
	}
}

func receiptBed(detail model.PaymentDetail) string {
	switch {
	case detail.BedNumber != nil && *detail.BedNumber > 0:
		return strconv.Itoa(*detail.BedNumber)
	case detail.HasBooking():
		return strconv.Itoa(*detail.BookingBed)
	default:
		return constant.NotAvailable
	}
}

func firstOf(values ...*string) string {
	for _, value := range values {
		if value != nil && *value != constant.Empty {
			return *value
		}
	}

	return constant.NotAvailable
}

func renderReceipt(detail model.PaymentDetail) ([]byte, error) {
	lines := buildReceipt(detail)

	pdf := fpdf.New("P", "mm", "A4", constant.Empty)
	pdf.SetMargins(receiptMargin, receiptMargin, receiptMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor(constant.Empty)

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(receiptTitle), constant.Empty, 1, "C", false, 0, constant.Empty)
	pdf.Ln(receiptLine)

	section := func(title string, body []string) {
		if title != constant.Empty {
			pdf.SetFont("Helvetica", "B", 14)
			pdf.CellFormat(0, receiptLine+1, tr(title), constant.Empty, 1, "L", false, 0, constant.Empty)
		}

		pdf.SetFont("Helvetica", constant.Empty, 12)

		for _, line := range body {
			pdf.CellFormat(0, receiptLine, tr(line), constant.Empty, 1, "L", false, 0, constant.Empty)
		}

		pdf.Ln(receiptLine)
	}

	section(constant.Empty, lines.header)
	section("Payer Details", lines.payer)
	section("Booking / Room", lines.booking)
	section("Payment", lines.payment)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	return buf.Bytes(), nil
}
