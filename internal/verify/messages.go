package verify

import "github.com/kozaktomas/lab-kiosk/internal/reservation"

// Response messages shown by the kiosk.
const (
	MsgNoMatch           = "No matching student"
	MsgNoReservation     = "No upcoming reservation found"
	MsgOutsideWindow     = "Outside the reservation time window"
	MsgAlreadyChecked    = "Reservation already checked in"
	MsgUnknownQRID       = "No reservation found for this ID"
	MsgUnverified        = "This reservation is not verified"
	MsgWrongLab          = "The reservation is for a different lab"
	MsgPastReservation   = "This reservation date has passed"
	MsgFutureReservation = "This reservation is for a future date"
)

func messageFor(status reservation.Status, byID bool) string {
	switch status {
	case reservation.NoReservation:
		if byID {
			return MsgUnknownQRID
		}
		return MsgNoReservation
	case reservation.OutsideWindow:
		return MsgOutsideWindow
	case reservation.AlreadyChecked:
		return MsgAlreadyChecked
	case reservation.Unverified:
		return MsgUnverified
	case reservation.WrongLab:
		return MsgWrongLab
	case reservation.PastReservation:
		return MsgPastReservation
	case reservation.FutureReservation:
		return MsgFutureReservation
	default:
		return ""
	}
}
