package database

import (
	"context"
)

// GalleryStore provides access to enrolled users and their face embeddings
type GalleryStore interface {
	// ListEnrolledWithEmbedding returns all users whose embedding has been computed, ordered by user ID
	ListEnrolledWithEmbedding(ctx context.Context) ([]EnrolledUser, error)
	// ListMissingEmbeddings returns users with a photo path but no embedding yet, ordered by user ID
	ListMissingEmbeddings(ctx context.Context) ([]EnrolledUser, error)
	// SaveEmbedding stores the embedding for a user
	SaveEmbedding(ctx context.Context, userID string, embedding []float32) error
}

// ReservationStore provides access to lab reservations
type ReservationStore interface {
	// ListVerifiedReservations returns the user's verified reservations for a lab on the given date
	// ("2006-01-02"), ordered by reservation ID
	ListVerifiedReservations(ctx context.Context, userID, labID, date string) ([]Reservation, error)
	// GetReservation returns a reservation by ID, nil if not found
	GetReservation(ctx context.Context, reservationID string) (*Reservation, error)
	// MarkChecked flips checked from false to true. It reports false when the
	// reservation was already checked or does not exist.
	MarkChecked(ctx context.Context, reservationID string) (bool, error)
}

// LabStore provides access to labs and kiosk administrators
type LabStore interface {
	// GetLab returns a lab by ID, nil if not found
	GetLab(ctx context.Context, labID string) (*Lab, error)
	// AdminExists reports whether the admin ID is registered
	AdminExists(ctx context.Context, adminID string) (bool, error)
}

// Store is a complete persistence backend.
type Store interface {
	GalleryStore
	ReservationStore
	LabStore

	// Migrate applies pending schema migrations
	Migrate(ctx context.Context) error
	// Ping verifies the connection is alive
	Ping(ctx context.Context) error
	Close() error
}
