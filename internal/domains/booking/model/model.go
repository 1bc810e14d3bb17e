package model

import (
	"hostel/internal/domains/inventory"
	"hostel/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID           = "id"
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldAltPhone     = "alt_phone"
	FieldEmail        = "email"
	FieldAadharNumber = "aadhar_number"
	FieldJoinDate     = "join_date"
	FieldFloor        = "floor"
	FieldRoom         = "room"
	FieldBed          = "bed"
	FieldUserID       = "user_id"
	FieldAmountPaid   = "amount_paid"
	FieldPhoto        = "photo"
	FieldAadharFile   = "aadhar_file"
)

// Booking is a guest's current placement. At most one booking holds any
// (floor, room, bed) and the database enforces it.
type Booking struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	AltPhone     *string   `db:"alt_phone"`
	Email        *string   `db:"email"`
	AadharNumber *string   `db:"aadhar_number"`
	JoinDate     time.Time `db:"join_date"`
	Floor        int       `db:"floor"`
	Room         int       `db:"room"`
	Bed          int       `db:"bed"`
	UserID       *string   `db:"user_id"`
	AmountPaid   float64   `db:"amount_paid"`
	Photo        *string   `db:"photo"`
	AadharFile   *string   `db:"aadhar_file"`
	model.Metadata
}

func (b Booking) Occupant() inventory.Occupant {
	return inventory.Occupant{Bed: b.Bed, Name: b.Name}
}

// Files lists the stored upload references of the booking.
func (b Booking) Files() []string {
	files := make([]string, 0, 2)

	for _, ref := range []*string{b.Photo, b.AadharFile} {
		if ref != nil && *ref != "" {
			files = append(files, *ref)
		}
	}

	return files
}
