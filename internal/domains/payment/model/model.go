package model

import (
	bookingModel "hostel/internal/domains/booking/model"
	userModel "hostel/internal/domains/user/model"
	"hostel/shared/model"
	"time"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID         = "id"
	FieldUserID     = "user_id"
	FieldBookingID  = "booking_id"
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldRoomNumber = "room_number"
	FieldBedNumber  = "bed_number"
	FieldAmount     = "amount"
	FieldCode       = "code"
)

// Payment is a recorded payment. Room and bed are copied in when the payment
// is entered and are not kept in step with later shifts.
type Payment struct {
	ID         string  `db:"id"`
	UserID     *string `db:"user_id"`
	BookingID  *string `db:"booking_id"`
	Name       string  `db:"name"`
	Phone      string  `db:"phone"`
	RoomNumber *string `db:"room_number"`
	BedNumber  *int    `db:"bed_number"`
	Amount     float64 `db:"amount"`
	Code       string  `db:"code"`
	model.Metadata
}

// PaymentDetail is a payment with its booking and user joined in. The joined
// columns are NULL when the reference is unset or points at a deleted row.
type PaymentDetail struct {
	Payment

	BookingRef        *string    `db:"booking_ref"         table:"bookings" column:"id"`
	BookingName       *string    `db:"booking_name"        table:"bookings" column:"name"`
	BookingFloor      *int       `db:"booking_floor"       table:"bookings" column:"floor"`
	BookingRoom       *int       `db:"booking_room"        table:"bookings" column:"room"`
	BookingBed        *int       `db:"booking_bed"         table:"bookings" column:"bed"`
	BookingPhoto      *string    `db:"booking_photo"       table:"bookings" column:"photo"`
	BookingJoinDate   *time.Time `db:"booking_join_date"   table:"bookings" column:"join_date"`
	BookingAmountPaid *float64   `db:"booking_amount_paid" table:"bookings" column:"amount_paid"`

	UserRef      *string `db:"user_ref"      table:"users" column:"id"`
	UserName     *string `db:"user_name"     table:"users" column:"name"`
	UserUsername *string `db:"user_username" table:"users" column:"username"`
	UserEmail    *string `db:"user_email"    table:"users" column:"email"`
	UserPhone    *string `db:"user_phone"    table:"users" column:"phone"`
}

func (PaymentDetail) GetJoinQuery() string {
	return "LEFT JOIN " + bookingModel.TableName + " ON " + bookingModel.TableName + ".id = " + TableName + ".booking_id " +
		"LEFT JOIN " + userModel.TableName + " ON " + userModel.TableName + ".id = " + TableName + ".user_id"
}

func (d PaymentDetail) HasBooking() bool {
	return d.BookingRef != nil && d.BookingFloor != nil && d.BookingRoom != nil && d.BookingBed != nil
}

func (d PaymentDetail) HasUser() bool {
	return d.UserRef != nil
}
