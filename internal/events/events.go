// Package events publishes lab access events for door controllers and audit consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Method is how the user was identified at the kiosk.
type Method string

const (
	MethodFace Method = "face"
	MethodQR   Method = "qr"
)

// AccessGranted is emitted once per consumed reservation.
type AccessGranted struct {
	EventID       string    `json:"event_id"`
	ReservationID string    `json:"reservation_id,omitempty"`
	UserID        string    `json:"user_id"`
	LabID         string    `json:"lab_id"`
	Method        Method    `json:"method"`
	At            time.Time `json:"at"`
}

// NewAccessGranted builds an event with a fresh ID.
func NewAccessGranted(userID, labID, reservationID string, method Method, at time.Time) AccessGranted {
	return AccessGranted{
		EventID:       uuid.NewString(),
		ReservationID: reservationID,
		UserID:        userID,
		LabID:         labID,
		Method:        method,
		At:            at.UTC(),
	}
}

// Publisher delivers access events.
type Publisher interface {
	PublishAccessGranted(ctx context.Context, event AccessGranted) error
}

// Nop discards events.
type Nop struct{}

// PublishAccessGranted does nothing.
func (Nop) PublishAccessGranted(context.Context, AccessGranted) error { return nil }
