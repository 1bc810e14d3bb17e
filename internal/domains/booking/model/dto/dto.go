package dto

import (
	"fmt"
	"hostel/internal/domains/booking/model"
	"hostel/internal/domains/inventory"
	"hostel/shared"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	gModel "hostel/shared/model"
	"hostel/shared/timezone"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	Name         string                `form:"name"         validate:"required,max=120"`
	Phone        string                `form:"phone"        validate:"required,phone"`
	AltPhone     string                `form:"altPhone"     validate:"omitempty,phone"`
	Email        string                `form:"email"        validate:"omitempty,email"`
	AadharNumber string                `form:"aadharNumber" validate:"omitempty,max=20"`
	JoinDate     string                `form:"joinDate"     validate:"required,joindate"`
	Floor        int                   `form:"floor"        validate:"required,gte=1"`
	Room         int                   `form:"room"         validate:"required,gte=1"`
	Bed          int                   `form:"bed"          validate:"required,gte=1"`
	UserID       string                `form:"userId"       validate:"omitempty,uuid"`
	AmountPaid   float64               `form:"amountPaid"   validate:"gte=0"`
	Photo        *multipart.FileHeader `form:"photo"        validate:"omitempty,mimetypes=image/jpeg image/png image/webp,maxfilesize=5"`
	AadharFile   *multipart.FileHeader `form:"aadharFile"   validate:"omitempty,mimetypes=image/jpeg image/png application/pdf,maxfilesize=5"`
}

// Upload is a file received with a booking, read into memory by the handler.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

// StoredName is the name an upload is saved under: the upload time in
// milliseconds and the original name with whitespace runs replaced by "_".
func (u Upload) StoredName() string {
	return fmt.Sprintf("%d-%s", timezone.Now().UnixMilli(), strings.Join(strings.Fields(filepath.Base(u.FileName)), "_"))
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	return &value
}

// ToModel builds the booking. photo and aadharFile are the stored references
// of the uploads, empty when none were sent.
func (c *CreateBookingRequest) ToModel(actor, photo, aadharFile string) model.Booking {
	joinDate, _ := timezone.Parse(constant.JoinDateFormat, c.JoinDate)

	return model.Booking{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(c.Name),
		Phone:        strings.TrimSpace(c.Phone),
		AltPhone:     optional(c.AltPhone),
		Email:        optional(c.Email),
		AadharNumber: optional(c.AadharNumber),
		JoinDate:     joinDate,
		Floor:        c.Floor,
		Room:         c.Room,
		Bed:          c.Bed,
		UserID:       optional(c.UserID),
		AmountPaid:   c.AmountPaid,
		Photo:        optional(photo),
		AadharFile:   optional(aadharFile),
		Metadata:     gModel.NewMetadata(timezone.Now(), actor),
	}
}

type ShiftRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
	ToFloor   int    `json:"toFloor"   validate:"required,gte=1"`
	ToRoom    int    `json:"toRoom"    validate:"required,gte=1"`
	ToBed     int    `json:"toBed"`
}

// ShiftResponse reports a move. A refused move is not an error: Success is
// false and Message names the reason.
type ShiftResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type RoomStatusResponse struct {
	Floor      int                  `json:"floor"`
	Room       int                  `json:"room"`
	RoomNumber string               `json:"roomNumber"`
	TotalBeds  int                  `json:"totalBeds"`
	Booked     []inventory.Occupant `json:"booked"`
	Available  []int                `json:"available"`
}

func (r *RoomStatusResponse) FromBookings(floor, room, capacity int, bookings []model.Booking) {
	occupants := make([]inventory.Occupant, len(bookings))
	for i, booking := range bookings {
		occupants[i] = booking.Occupant()
	}

	r.Floor = floor
	r.Room = room
	r.RoomNumber = inventory.RoomNumber(floor, room)
	r.TotalBeds = capacity
	r.Booked, r.Available = inventory.Partition(capacity, occupants)
}

type BookingResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	AltPhone     *string `json:"altPhone,omitempty"`
	Email        *string `json:"email,omitempty"`
	AadharNumber *string `json:"aadharNumber,omitempty"`
	JoinDate     string  `json:"joinDate"`
	Floor        int     `json:"floor"`
	Room         int     `json:"room"`
	Bed          int     `json:"bed"`
	RoomNumber   string  `json:"roomNumber"`
	UserID       *string `json:"userId,omitempty"`
	AmountPaid   float64 `json:"amountPaid"`
	Photo        string  `json:"photo"`
	AadharFile   string  `json:"aadharFile"`
	gDto.Metadata
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.Name = model.Name
	r.Phone = model.Phone
	r.AltPhone = model.AltPhone
	r.Email = model.Email
	r.AadharNumber = model.AadharNumber
	r.JoinDate = timezone.Format(model.JoinDate, constant.JoinDateFormat)
	r.Floor = model.Floor
	r.Room = model.Room
	r.Bed = model.Bed
	r.RoomNumber = inventory.RoomNumber(model.Floor, model.Room)
	r.UserID = model.UserID
	r.AmountPaid = model.AmountPaid
	r.Photo = deref(model.Photo)
	r.AadharFile = deref(model.AadharFile)
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"totalPage"`
	TotalData int               `json:"totalData"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingEvent is the payload published for booking lifecycle events.
type BookingEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Floor int    `json:"floor"`
	Room  int    `json:"room"`
	Bed   int    `json:"bed"`
	Actor string `json:"actor"`
}

func NewBookingEvent(booking model.Booking, actor string) BookingEvent {
	return BookingEvent{
		ID:    booking.ID,
		Name:  booking.Name,
		Floor: booking.Floor,
		Room:  booking.Room,
		Bed:   booking.Bed,
		Actor: actor,
	}
}
