package database

import (
	"fmt"
	"time"
)

// EnrolledUser is a row of user_img. Embedding is nil until the backfill computes it.
type EnrolledUser struct {
	UserID    string
	PhotoPath string // object key in the photo bucket
	Embedding []float32
}

// Reservation is a lab booking. Date is "2006-01-02" and Time is "15:04" or "15:04:05",
// both wall-clock values in the kiosk timezone.
type Reservation struct {
	ReservationID string
	UserID        string
	LabID         string
	Date          string
	Time          string
	Verified      bool
	Checked       bool
}

// Lab is a bookable lab a kiosk can be bound to.
type Lab struct {
	LabID   string
	LabName string
}

// DateLayout is the layout of Reservation.Date.
const DateLayout = "2006-01-02"

var timeLayouts = []string{"15:04:05", "15:04"}

// StartsAt returns the reservation's start instant in loc.
func (r Reservation) StartsAt(loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(DateLayout+" "+layout, r.Date+" "+r.Time, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid reservation start %q %q", r.Date, r.Time)
}
