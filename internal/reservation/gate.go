// Package reservation decides whether a recognized user may enter a lab right now
// and consumes the reservation that grants access.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/lab-kiosk/internal/constants"
	"github.com/kozaktomas/lab-kiosk/internal/database"
	"github.com/kozaktomas/lab-kiosk/internal/logging"
)

// ErrInvalidReservationID is returned when a reservation ID is not 15 digits.
var ErrInvalidReservationID = errors.New("reservation ID must be 15 digits")

// Status is the result of a gate check.
type Status int

const (
	Unlocked Status = iota + 1
	NoReservation
	OutsideWindow
	AlreadyChecked
	Unverified
	WrongLab
	PastReservation
	FutureReservation
)

func (s Status) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case NoReservation:
		return "no_reservation"
	case OutsideWindow:
		return "outside_window"
	case AlreadyChecked:
		return "already_checked"
	case Unverified:
		return "unverified"
	case WrongLab:
		return "wrong_lab"
	case PastReservation:
		return "past_reservation"
	case FutureReservation:
		return "future_reservation"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is a gate decision. UserID and ReservationID are set when the
// reservation is known.
type Outcome struct {
	Status        Status
	UserID        string
	ReservationID string
}

// Unlocked reports whether access was granted.
func (o Outcome) Unlocked() bool {
	return o.Status == Unlocked
}

// Gate checks reservations against the kiosk clock and consumes them.
type Gate struct {
	store     database.ReservationStore
	tolerance time.Duration
	loc       *time.Location
	log       logging.Logger
}

// NewGate creates a gate. Reservation dates and times are interpreted in loc.
func NewGate(store database.ReservationStore, tolerance time.Duration, loc *time.Location, log logging.Logger) *Gate {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Gate{store: store, tolerance: tolerance, loc: loc, log: log}
}

func (g *Gate) within(now, start time.Time) bool {
	d := now.Sub(start)
	if d < 0 {
		d = -d
	}
	return d <= g.tolerance
}

// CheckAndConsume looks up today's verified reservations of userID in labID and
// consumes the first one whose start is within the tolerance of now.
func (g *Gate) CheckAndConsume(ctx context.Context, userID, labID string, now time.Time) (Outcome, error) {
	local := now.In(g.loc)

	reservations, err := g.store.ListVerifiedReservations(ctx, userID, labID, local.Format(database.DateLayout))
	if err != nil {
		return Outcome{}, fmt.Errorf("list reservations: %w", err)
	}
	if len(reservations) == 0 {
		return Outcome{Status: NoReservation, UserID: userID}, nil
	}

	sawChecked := false
	for _, r := range reservations {
		start, err := r.StartsAt(g.loc)
		if err != nil {
			g.log.Warn(ctx, "skipping reservation with invalid start", "reservation_id", r.ReservationID, "error", err)
			continue
		}
		if !g.within(local, start) {
			continue
		}
		if r.Checked {
			sawChecked = true
			continue
		}

		ok, err := g.store.MarkChecked(ctx, r.ReservationID)
		if err != nil {
			return Outcome{}, fmt.Errorf("consume reservation: %w", err)
		}
		if ok {
			return Outcome{Status: Unlocked, UserID: userID, ReservationID: r.ReservationID}, nil
		}
		// Another kiosk consumed it first.
		sawChecked = true
	}

	if sawChecked {
		return Outcome{Status: AlreadyChecked, UserID: userID}, nil
	}
	return Outcome{Status: OutsideWindow, UserID: userID}, nil
}

// ValidReservationID reports whether id has the reservation ID format.
func ValidReservationID(id string) bool {
	if len(id) != constants.ReservationIDLength {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckByID validates a reservation presented by ID (QR code) and consumes it.
func (g *Gate) CheckByID(ctx context.Context, reservationID, labID string, now time.Time) (Outcome, error) {
	if !ValidReservationID(reservationID) {
		return Outcome{}, ErrInvalidReservationID
	}

	r, err := g.store.GetReservation(ctx, reservationID)
	if err != nil {
		return Outcome{}, fmt.Errorf("get reservation: %w", err)
	}
	if r == nil {
		return Outcome{Status: NoReservation, ReservationID: reservationID}, nil
	}

	out := Outcome{UserID: r.UserID, ReservationID: r.ReservationID}
	local := now.In(g.loc)
	today := local.Format(database.DateLayout)

	switch {
	case !r.Verified:
		out.Status = Unverified
		return out, nil
	case r.LabID != labID:
		out.Status = WrongLab
		return out, nil
	case r.Date < today:
		out.Status = PastReservation
		return out, nil
	case r.Date > today:
		out.Status = FutureReservation
		return out, nil
	}

	start, err := r.StartsAt(g.loc)
	if err != nil {
		return Outcome{}, err
	}
	if !g.within(local, start) {
		out.Status = OutsideWindow
		return out, nil
	}
	if r.Checked {
		out.Status = AlreadyChecked
		return out, nil
	}

	ok, err := g.store.MarkChecked(ctx, r.ReservationID)
	if err != nil {
		return Outcome{}, fmt.Errorf("consume reservation: %w", err)
	}
	if !ok {
		out.Status = AlreadyChecked
		return out, nil
	}
	out.Status = Unlocked
	return out, nil
}
