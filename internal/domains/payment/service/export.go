package service

import (
	"fmt"
	"hostel/internal/domains/payment/model/dto"
	"hostel/shared/constant"
	"hostel/shared/timezone"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary  = "Summary"
	sheetPayments = "Payments"
)

var (
	summaryHeaders  = []any{"User ID", "Name", "Phone", "Payments", "Total Amount"}
	paymentsHeaders = []any{"Payment ID", "User", "Name", "Phone", "Room", "Bed", "Amount", "Code", "Recorded At"}
)

func exportFileName() string {
	return fmt.Sprintf("payments_%s.xlsx", timezone.Format(timezone.Now(), constant.JoinDateFormat))
}

// renderWorkbook writes one summary row per group and one row per payment.
func renderWorkbook(groups []dto.PaymentGroup) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("error renaming sheet: %w", err)
	}

	if _, err := f.NewSheet(sheetPayments); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating style: %w", err)
	}

	if err := writeRow(f, sheetSummary, 1, summaryHeaders); err != nil {
		return nil, err
	}

	if err := writeRow(f, sheetPayments, 1, paymentsHeaders); err != nil {
		return nil, err
	}

	_ = f.SetRowStyle(sheetSummary, 1, 1, headerStyle)
	_ = f.SetRowStyle(sheetPayments, 1, 1, headerStyle)

	row := 2

	for i, group := range groups {
		userID := dto.UnknownGroup
		if group.UserID != nil {
			userID = *group.UserID
		}

		summary := []any{userID, group.UserName, group.Phone, len(group.Payments), group.TotalAmount}
		if err := writeRow(f, sheetSummary, i+2, summary); err != nil {
			return nil, err
		}

		for _, payment := range group.Payments {
			values := []any{
				payment.ID, userID, payment.Name, payment.Phone,
				valueOr(payment.RoomNumber), bedOr(payment.BedNumber),
				payment.Amount, payment.Code, payment.CreatedAt,
			}

			if err := writeRow(f, sheetPayments, row, values); err != nil {
				return nil, err
			}

			row++
		}
	}

	_ = f.SetColWidth(sheetSummary, "A", "A", 38)
	_ = f.SetColWidth(sheetSummary, "B", "E", 20)
	_ = f.SetColWidth(sheetPayments, "A", "B", 38)
	_ = f.SetColWidth(sheetPayments, "C", "I", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("error resolving cell: %w", err)
	}

	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing row %d of %s: %w", row, sheet, err)
	}

	return nil
}

func valueOr(value *string) string {
	if value == nil {
		return constant.NotAvailable
	}

	return *value
}

func bedOr(value *int) any {
	if value == nil {
		return constant.NotAvailable
	}

	return *value
}
