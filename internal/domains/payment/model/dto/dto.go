package dto

import (
	"hostel/internal/domains/inventory"
	"hostel/internal/domains/payment/model"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	gModel "hostel/shared/model"
	"hostel/shared/timezone"
	"strings"

	"github.com/google/uuid"
)

// UnknownGroup keys the payments that have no resolvable user.
const UnknownGroup = "unknown"

type ManualPaymentRequest struct {
	UserID     string  `json:"userId"     validate:"omitempty,uuid"`
	BookingID  string  `json:"bookingId"  validate:"omitempty,uuid"`
	Amount     float64 `json:"amount"     validate:"gt=0"`
	Code       string  `json:"code"`
	Name       string  `json:"name"       validate:"omitempty,max=120"`
	Phone      string  `json:"phone"      validate:"omitempty,max=20"`
	RoomNumber string  `json:"roomNumber" validate:"omitempty,max=10"`
	BedNumber  *int    `json:"bedNumber"  validate:"omitempty,gte=1"`
}

// Placement is the room and bed a payment is filed under.
type Placement struct {
	RoomNumber *string
	BedNumber  *int
}

// PlacementFromBooking derives the snapshot from a booking's current bed.
func PlacementFromBooking(floor, room, bed int) Placement {
	roomNumber := inventory.RoomNumber(floor, room)

	return Placement{RoomNumber: &roomNumber, BedNumber: &bed}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	return &value
}

// ToModel builds the payment with the already resolved payer and placement.
func (r *ManualPaymentRequest) ToModel(actor, name, phone string, placement Placement) model.Payment {
	return model.Payment{
		ID:         uuid.NewString(),
		UserID:     optional(r.UserID),
		BookingID:  optional(r.BookingID),
		Name:       name,
		Phone:      phone,
		RoomNumber: placement.RoomNumber,
		BedNumber:  placement.BedNumber,
		Amount:     r.Amount,
		Code:       strings.TrimSpace(r.Code),
		Metadata:   gModel.NewMetadata(timezone.Now(), actor),
	}
}

// RequestedPlacement is what the caller sent, used when no booking is linked.
func (r *ManualPaymentRequest) RequestedPlacement() Placement {
	return Placement{RoomNumber: optional(r.RoomNumber), BedNumber: r.BedNumber}
}

type PaymentResponse struct {
	ID         string  `json:"id"`
	UserID     *string `json:"userId"`
	BookingID  *string `json:"bookingId"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	RoomNumber *string `json:"roomNumber"`
	BedNumber  *int    `json:"bedNumber"`
	Amount     float64 `json:"amount"`
	Code       string  `json:"code"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(model model.Payment) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.BookingID = model.BookingID
	r.Name = model.Name
	r.Phone = model.Phone
	r.RoomNumber = model.RoomNumber
	r.BedNumber = model.BedNumber
	r.Amount = model.Amount
	r.Code = model.Code
	r.Metadata.FromModel(model.Metadata)
}

type BookingSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Floor      int      `json:"floor"`
	Room       int      `json:"room"`
	Bed        int      `json:"bed"`
	Photo      string   `json:"photo,omitempty"`
	JoinDate   string   `json:"joinDate,omitempty"`
	AmountPaid *float64 `json:"amountPaid,omitempty"`
}

type UserSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

// PaymentDetailResponse is a payment with its linked booking and user. Either
// link is nil when unset or when the referenced row no longer exists.
type PaymentDetailResponse struct {
	PaymentResponse
	Booking *BookingSummary `json:"booking"`
	User    *UserSummary    `json:"user"`
}

// FromModel fills the response and back-fills a missing room or bed from the
// linked booking.
func (r *PaymentDetailResponse) FromModel(detail model.PaymentDetail) {
	r.PaymentResponse.FromModel(detail.Payment)

	if detail.HasBooking() {
		r.Booking = &BookingSummary{
			ID:         *detail.BookingRef,
			Name:       deref(detail.BookingName),
			Floor:      *detail.BookingFloor,
			Room:       *detail.BookingRoom,
			Bed:        *detail.BookingBed,
			Photo:      deref(detail.BookingPhoto),
			AmountPaid: detail.BookingAmountPaid,
		}

		if detail.BookingJoinDate != nil {
			r.Booking.JoinDate = timezone.Format(*detail.BookingJoinDate, constant.JoinDateFormat)
		}

		if r.RoomNumber == nil || r.BedNumber == nil {
			placement := PlacementFromBooking(r.Booking.Floor, r.Booking.Room, r.Booking.Bed)
			r.RoomNumber, r.BedNumber = placement.RoomNumber, placement.BedNumber
		}
	}

	if detail.HasUser() {
		r.User = &UserSummary{
			ID:       *detail.UserRef,
			Name:     deref(detail.UserName),
			Username: deref(detail.UserUsername),
			Email:    detail.UserEmail,
			Phone:    detail.UserPhone,
		}
	}
}

type PaymentGroup struct {
	UserID      *string                 `json:"userId"`
	UserName    string                  `json:"userName"`
	Phone       string                  `json:"phone"`
	Payments    []PaymentDetailResponse `json:"payments"`
	TotalAmount float64                 `json:"totalAmount"`
}

// GroupByUser buckets payments by user in order of first appearance. Payments
// keep their input order inside a group, and the ones without a resolvable
// user share the UnknownGroup bucket.
func GroupByUser(details []model.PaymentDetail) []PaymentGroup {
	index := make(map[string]int)
	groups := make([]PaymentGroup, 0)

	for _, detail := range details {
		var payment PaymentDetailResponse
		payment.FromModel(detail)

		key := UnknownGroup
		if payment.User != nil {
			key = payment.User.ID
		}

		pos, ok := index[key]
		if !ok {
			group := PaymentGroup{
				UserName: firstNonEmpty(constant.Unknown, payment.Name),
				Phone:    firstNonEmpty(constant.NotAvailable, payment.Phone),
				Payments: make([]PaymentDetailResponse, 0, 1),
			}

			if payment.User != nil {
				group.UserID = &payment.User.ID
				group.UserName = firstNonEmpty(constant.Unknown, payment.User.Name, payment.Name)
				group.Phone = firstNonEmpty(constant.NotAvailable, deref(payment.User.Phone), payment.Phone)
			}

			pos = len(groups)
			index[key] = pos
			groups = append(groups, group)
		}

		groups[pos].Payments = append(groups[pos].Payments, payment)
		groups[pos].TotalAmount += payment.Amount
	}

	return groups
}

func firstNonEmpty(fallback string, values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}

	return fallback
}

// Document is a rendered file handed back to the client as a download.
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

type PaymentEvent struct {
	ID        string  `json:"id"`
	UserID    *string `json:"userId"`
	BookingID *string `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Actor     string  `json:"actor"`
}

func NewPaymentEvent(payment model.Payment, actor string) PaymentEvent {
	return PaymentEvent{
		ID:        payment.ID,
		UserID:    payment.UserID,
		BookingID: payment.BookingID,
		Amount:    payment.Amount,
		Actor:     actor,
	}
}
