package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/lab-kiosk/internal/config"
	"github.com/kozaktomas/lab-kiosk/internal/constants"
	"github.com/kozaktomas/lab-kiosk/internal/database"
	"github.com/kozaktomas/lab-kiosk/internal/embedder"
	"github.com/kozaktomas/lab-kiosk/internal/events"
	"github.com/kozaktomas/lab-kiosk/internal/gallery"
	"github.com/kozaktomas/lab-kiosk/internal/logging"
	"github.com/kozaktomas/lab-kiosk/internal/reservation"
	"github.com/kozaktomas/lab-kiosk/internal/storage"
	"github.com/kozaktomas/lab-kiosk/internal/verify"
)

// newExtractor builds the embedding server client for the configured model.
func newExtractor(cfg *config.Config) *embedder.Client {
	var opts []embedder.Option
	if profile, ok := cfg.Models.Models[cfg.Embedding.Model]; ok && profile.Dim > 0 {
		opts = append(opts, embedder.WithExpectedDim(profile.Dim))
	}
	return embedder.NewClient(cfg.Embedding.URL, cfg.Embedding.Model, cfg.Embedding.Timeout, opts...)
}

// newGallery builds the embedding cache backed by the store and the photo bucket.
func newGallery(ctx context.Context, cfg *config.Config, store database.GalleryStore, extractor embedder.Extractor, log logging.Logger) (*gallery.Cache, error) {
	if cfg.S3.Bucket == "" {
		return nil, errors.New("S3_BUCKET environment variable is required")
	}
	presigner, err := storage.NewS3Presigner(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("creating S3 presigner: %w", err)
	}
	photos := storage.NewFetcher(presigner, nil)

	return gallery.NewCache(store, photos, extractor, cfg.Gallery.ReloadInterval,
		gallery.WithLogger(log.With("component", "gallery"))), nil
}

func newPublisher(cfg *config.Config, log logging.Logger) events.Publisher {
	if cfg.Events.RabbitMQURL == "" {
		return events.Nop{}
	}
	pub, err := events.NewRabbitMQPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue)
	if err != nil {
		log.Warn(context.Background(), "event publishing disabled", "error", err)
		return events.Nop{}
	}
	return pub
}

// newService wires the verification pipeline.
func newService(ctx context.Context, cfg *config.Config, store database.Store, log logging.Logger) (*verify.Service, *gallery.Cache, error) {
	extractor := newExtractor(cfg)

	cache, err := newGallery(ctx, cfg, store, extractor, log)
	if err != nil {
		return nil, nil, err
	}

	gate := reservation.NewGate(store, cfg.Reservation.Tolerance, cfg.Reservation.Location(),
		log.With("component", "gate"))

	svc := verify.NewService(extractor, cache, gate, cfg.MatchThreshold(constants.DefaultMatchThreshold),
		verify.WithLogger(log.With("component", "verify")),
		verify.WithPublisher(newPublisher(cfg, log)),
		verify.WithLabs(store),
	)
	return svc, cache, nil
}
