// Package mock provides in-memory implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/kozaktomas/lab-kiosk/internal/database"
)

// Store is an in-memory database.Store.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*database.EnrolledUser
	reservations map[string]*database.Reservation
	labs         map[string]database.Lab
	admins       map[string]bool

	saveCalls   int
	markedCalls int

	// Error injection
	ListEnrolledError    error
	ListMissingError     error
	SaveEmbeddingError   error
	ListReservationError error
	GetReservationError  error
	MarkCheckedError     error
	GetLabError          error
	AdminExistsError     error
	MigrateError         error
	PingError            error

	// SaveEmbeddingErrors fails SaveEmbedding for specific users
	SaveEmbeddingErrors map[string]error
}

var _ database.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*database.EnrolledUser),
		reservations: make(map[string]*database.Reservation),
		labs:         make(map[string]database.Lab),
		admins:       make(map[string]bool),
	}
}

// AddUser adds an enrolled user. A nil embedding marks the user for backfill.
func (s *Store) AddUser(u database.EnrolledUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Embedding = slices.Clone(u.Embedding)
	s.users[u.UserID] = &u
}

// AddReservation adds a reservation
func (s *Store) AddReservation(r database.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ReservationID] = &r
}

// AddLab adds a lab
func (s *Store) AddLab(lab database.Lab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labs[lab.LabID] = lab
}

// AddAdmin registers an admin ID
func (s *Store) AddAdmin(adminID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[adminID] = true
}

// Embedding returns the stored embedding of a user
func (s *Store) Embedding(userID string) []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return slices.Clone(u.Embedding)
	}
	return nil
}

// Reservation returns a copy of a stored reservation
func (s *Store) Reservation(reservationID string) (database.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[reservationID]
	if !ok {
		return database.Reservation{}, false
	}
	return *r, true
}

// SaveCalls returns how many times SaveEmbedding succeeded
func (s *Store) SaveCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveCalls
}

// MarkedCalls returns how many MarkChecked calls flipped a reservation
func (s *Store) MarkedCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markedCalls
}

func (s *Store) sortedUsers(keep func(*database.EnrolledUser) bool) []database.EnrolledUser {
	var out []database.EnrolledUser
	for _, u := range s.users {
		if keep(u) {
			c := *u
			c.Embedding = slices.Clone(u.Embedding)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// ListEnrolledWithEmbedding returns users with embeddings ordered by ID
func (s *Store) ListEnrolledWithEmbedding(ctx context.Context) ([]database.EnrolledUser, error) {
	if s.ListEnrolledError != nil {
		return nil, s.ListEnrolledError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedUsers(func(u *database.EnrolledUser) bool { return u.Embedding != nil }), nil
}

// ListMissingEmbeddings returns users with a photo path and no embedding
func (s *Store) ListMissingEmbeddings(ctx context.Context) ([]database.EnrolledUser, error) {
	if s.ListMissingError != nil {
		return nil, s.ListMissingError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedUsers(func(u *database.EnrolledUser) bool {
		return u.Embedding == nil && u.PhotoPath != ""
	}), nil
}

// SaveEmbedding stores an embedding
func (s *Store) SaveEmbedding(ctx context.Context, userID string, embedding []float32) error {
	if s.SaveEmbeddingError != nil {
		return s.SaveEmbeddingError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.SaveEmbeddingErrors[userID]; err != nil {
		return err
	}
	u, ok := s.users[userID]
	if !ok {
		u = &database.EnrolledUser{UserID: userID}
		s.users[userID] = u
	}
	u.Embedding = slices.Clone(embedding)
	s.saveCalls++
	return nil
}

// ListVerifiedReservations returns matching verified reservations ordered by ID
func (s *Store) ListVerifiedReservations(ctx context.Context, userID, labID, date string) ([]database.Reservation, error) {
	if s.ListReservationError != nil {
		return nil, s.ListReservationError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []database.Reservation
	for _, r := range s.reservations {
		if r.UserID == userID && r.LabID == labID && r.Date == date && r.Verified {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].ReservationID, out[j].ReservationID) < 0
	})
	return out, nil
}

// GetReservation returns a reservation or nil
func (s *Store) GetReservation(ctx context.Context, reservationID string) (*database.Reservation, error) {
	if s.GetReservationError != nil {
		return nil, s.GetReservationError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[reservationID]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

// MarkChecked flips checked atomically, like the conditional UPDATE of the SQL backends
func (s *Store) MarkChecked(ctx context.Context, reservationID string) (bool, error) {
	if s.MarkCheckedError != nil {
		return false, s.MarkCheckedError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[reservationID]
	if !ok || r.Checked {
		return false, nil
	}
	r.Checked = true
	s.markedCalls++
	return true, nil
}

// GetLab returns a lab or nil
func (s *Store) GetLab(ctx context.Context, labID string) (*database.Lab, error) {
	if s.GetLabError != nil {
		return nil, s.GetLabError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	lab, ok := s.labs[labID]
	if !ok {
		return nil, nil
	}
	return &lab, nil
}

// AdminExists reports whether the admin is registered
func (s *Store) AdminExists(ctx context.Context, adminID string) (bool, error) {
	if s.AdminExistsError != nil {
		return false, s.AdminExistsError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins[adminID], nil
}

// Migrate is a no-op
func (s *Store) Migrate(ctx context.Context) error {
	return s.MigrateError
}

// Ping is a no-op
func (s *Store) Ping(ctx context.Context) error {
	return s.PingError
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
