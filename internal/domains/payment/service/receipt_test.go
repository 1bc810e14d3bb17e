package service

import (
	"hostel/internal/domains/payment/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestBuildReceipt(t *testing.T) {
	base := model.Payment{ID: "p-1", Name: "Ravi", Phone: "98", Amount: 1500.5, Code: "X1"}

	tests := []struct {
		name        string
		detail      model.PaymentDetail
		wantBooking []string
		wantPayer   []string
	}{
		{
			name:        "nothing linked",
			detail:      model.PaymentDetail{Payment: base},
			wantBooking: []string{"Room: N/A", "Bed: N/A"},
			wantPayer:   []string{"Name: Ravi", "Phone: 98"},
		},
		{
			name: "snapshot preferred over booking",
			detail: func() model.PaymentDetail {
				d := model.PaymentDetail{Payment: base}
				d.RoomNumber, d.BedNumber = ptr("101"), ptr(2)
				d.BookingRef, d.BookingFloor, d.BookingRoom, d.BookingBed = ptr("b"), ptr(3), ptr(4), ptr(1)

				return d
			}(),
			wantBooking: []string{"Room: 101", "Bed: 2", "Booked Name: N/A"},
			wantPayer:   []string{"Name: Ravi", "Phone: 98"},
		},
		{
			name: "booking fills the gaps",
			detail: func() model.PaymentDetail {
				d := model.PaymentDetail{Payment: base}
				d.BookingRef, d.BookingFloor, d.BookingRoom, d.BookingBed = ptr("b"), ptr(3), ptr(4), ptr(1)
				d.BookingName = ptr("Asha")
				d.UserRef, d.UserUsername = ptr("u"), ptr("ravi")

				return d
			}(),
			wantBooking: []string{"Room: 304", "Bed: 1", "Booked Name: Asha"},
			wantPayer:   []string{"Name: Ravi", "Phone: 98", "User: ravi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := buildReceipt(tt.detail)

			assert.Equal(t, tt.wantBooking, lines.booking)
			assert.Equal(t, tt.wantPayer, lines.payer)
			assert.Equal(t, []string{"Amount: INR 1500.5", "Admin Code: X1"}, lines.payment)
			assert.Equal(t, "Receipt ID: p-1", lines.header[0])
		})
	}
}
