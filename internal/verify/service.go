// Package verify runs the kiosk verification pipeline: backfill, extraction,
// matching and reservation consumption.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/lab-kiosk/internal/constants"
	"github.com/kozaktomas/lab-kiosk/internal/database"
	"github.com/kozaktomas/lab-kiosk/internal/embedder"
	"github.com/kozaktomas/lab-kiosk/internal/events"
	"github.com/kozaktomas/lab-kiosk/internal/facematch"
	"github.com/kozaktomas/lab-kiosk/internal/gallery"
	"github.com/kozaktomas/lab-kiosk/internal/imaging"
	"github.com/kozaktomas/lab-kiosk/internal/logging"
	"github.com/kozaktomas/lab-kiosk/internal/reservation"
)

// Response is the kiosk-facing verification result.
type Response struct {
	Verified  bool   `json:"verified"`
	StudentID string `json:"student_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Gallery is the embedding cache used for matching.
type Gallery interface {
	GetAll(ctx context.Context) (facematch.Gallery, error)
	Refresh(ctx context.Context) (gallery.RefreshReport, error)
}

// Gate decides and consumes reservations.
type Gate interface {
	CheckAndConsume(ctx context.Context, userID, labID string, now time.Time) (reservation.Outcome, error)
	CheckByID(ctx context.Context, reservationID, labID string, now time.Time) (reservation.Outcome, error)
}

// Service verifies kiosk visitors.
type Service struct {
	extractor embedder.Extractor
	gallery   Gallery
	gate      Gate
	labs      database.LabStore
	events    events.Publisher
	threshold float64
	now       func() time.Time
	log       logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithPublisher sets the unlock event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLabs enables kiosk setup.
func WithLabs(labs database.LabStore) Option {
	return func(s *Service) { s.labs = labs }
}

// NewService creates a verification service.
func NewService(extractor embedder.Extractor, g Gallery, gate Gate, threshold float64, opts ...Option) *Service {
	s := &Service{
		extractor: extractor,
		gallery:   g,
		gate:      gate,
		events:    events.Nop{},
		threshold: threshold,
		now:       time.Now,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the match threshold in use.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Verify identifies the face in image and, on a match, consumes the user's
// reservation for labID.
func (s *Service) Verify(ctx context.Context, image []byte, labID string) (Response, error) {
	if labID == "" {
		return Response{}, fmt.Errorf("%w: lab_id is required", ErrInvalidInput)
	}

	original, mirrored, err := imaging.Probes(image, constants.ProbeJPEGQuality)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if _, err := s.gallery.Refresh(ctx); err != nil {
		s.log.Error(ctx, "gallery refresh failed", "error", err)
	}

	probe, mirror, err := s.extract(ctx, original, mirrored)
	if err != nil {
		return Response{}, err
	}

	entries, err := s.gallery.GetAll(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	match := facematch.FindBest(probe, mirror, entries, s.threshold)
	if !match.Matched() {
		s.log.Info(ctx, "no matching student", "lab_id", labID, "closest_distance", match.Distance, "gallery_size", len(entries))
		return Response{Message: MsgNoMatch}, nil
	}
	s.log.Debug(ctx, "face matched", "user_id", match.UserID, "distance", match.Distance)

	out, err := s.gate.CheckAndConsume(ctx, match.UserID, labID, s.now())
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return s.respond(ctx, out, labID, events.MethodFace, false), nil
}

// extract computes both probe embeddings concurrently. One failure is tolerated.
func (s *Service) extract(ctx context.Context, original, mirrored []byte) ([]float32, []float32, error) {
	var (
		probe, mirror       []float32
		probeErr, mirrorErr error
		g                   errgroup.Group
	)

	g.Go(func() error {
		probe, probeErr = s.extractor.Compute(ctx, original)
		return nil
	})
	g.Go(func() error {
		mirror, mirrorErr = s.extractor.Compute(ctx, mirrored)
		return nil
	})
	_ = g.Wait()

	if probeErr != nil && mirrorErr != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFeatureExtractionFailed, multierr.Combine(probeErr, mirrorErr))
	}
	if probeErr != nil {
		s.log.Warn(ctx, "probe extraction failed, using mirror only", "error", probeErr)
	}
	if mirrorErr != nil {
		s.log.Warn(ctx, "mirror extraction failed, using probe only", "error", mirrorErr)
	}
	return probe, mirror, nil
}

// VerifyReservation checks a reservation ID scanned from a QR code.
func (s *Service) VerifyReservation(ctx context.Context, reservationID, labID string) (Response, error) {
	if labID == "" {
		return Response{}, fmt.Errorf("%w: lab_id is required", ErrInvalidInput)
	}

	out, err := s.gate.CheckByID(ctx, reservationID, labID, s.now())
	if errors.Is(err, reservation.ErrInvalidReservationID) {
		return Response{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return s.respond(ctx, out, labID, events.MethodQR, true), nil
}

func (s *Service) respond(ctx context.Context, out reservation.Outcome, labID string, method events.Method, byID bool) Response {
	if !out.Unlocked() {
		s.log.Info(ctx, "access denied", "user_id", out.UserID, "lab_id", labID, "status", out.Status.String(), "method", string(method))
		return Response{Message: messageFor(out.Status, byID)}
	}

	s.log.Info(ctx, "access granted", "user_id", out.UserID, "lab_id", labID, "reservation_id", out.ReservationID, "method", string(method))
	event := events.NewAccessGranted(out.UserID, labID, out.ReservationID, method, s.now())
	if err := s.events.PublishAccessGranted(ctx, event); err != nil {
		s.log.Warn(ctx, "failed to publish access event", "event_id", event.EventID, "error", err)
	}
	return Response{Verified: true, StudentID: out.UserID}
}

// SetupKiosk validates an admin and returns the lab the kiosk will be bound to.
func (s *Service) SetupKiosk(ctx context.Context, adminID, labID string) (*database.Lab, error) {
	if len(adminID) != constants.AdminIDLength {
		return nil, fmt.Errorf("%w: admin_id must be %d characters", ErrInvalidInput, constants.AdminIDLength)
	}
	if len(labID) != constants.LabIDLength {
		return nil, fmt.Errorf("%w: lab_id must be %d characters", ErrInvalidInput, constants.LabIDLength)
	}
	if s.labs == nil {
		return nil, fmt.Errorf("%w: lab store not configured", ErrPersistence)
	}

	ok, err := s.labs.AdminExists(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !ok {
		return nil, ErrInvalidAdmin
	}

	lab, err := s.labs.GetLab(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if lab == nil {
		return nil, ErrUnknownLab
	}
	return lab, nil
}
