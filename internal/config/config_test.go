package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("WEB_PORT", "")
	t.Setenv("MATCH_THRESHOLD", "")
	t.Setenv("RESERVATION_TOLERANCE", "")
	t.Setenv("EMBEDDING_MODEL", "")

	cfg := Load()

	if cfg.Web.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Web.Port)
	}
	if cfg.Reservation.Tolerance != 5*time.Minute {
		t.Errorf("expected default tolerance 5m, got %v", cfg.Reservation.Tolerance)
	}
	if cfg.S3.PresignTTL != time.Hour {
		t.Errorf("expected default presign TTL 1h, got %v", cfg.S3.PresignTTL)
	}
	if cfg.Embedding.Model != "ArcFace" {
		t.Errorf("expected default model ArcFace, got %s", cfg.Embedding.Model)
	}
	if cfg.Events.Queue != "lab.access.granted" {
		t.Errorf("expected default queue, got %s", cfg.Events.Queue)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected 10 max open conns, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "kiosk:secret@tcp(db:3306)/kiosk")
	t.Setenv("WEB_PORT", "8081")
	t.Setenv("RESERVATION_TOLERANCE", "10m")
	t.Setenv("GALLERY_RELOAD_INTERVAL", "0s")
	t.Setenv("S3_BUCKET", "lrsys-bucket")

	cfg := Load()

	if cfg.Database.URL != "kiosk:secret@tcp(db:3306)/kiosk" {
		t.Errorf("unexpected database URL %q", cfg.Database.URL)
	}
	if cfg.Web.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Web.Port)
	}
	if cfg.Reservation.Tolerance != 10*time.Minute {
		t.Errorf("expected tolerance 10m, got %v", cfg.Reservation.Tolerance)
	}
	if cfg.Gallery.ReloadInterval != 0 {
		t.Errorf("expected reload interval 0, got %v", cfg.Gallery.ReloadInterval)
	}
	if cfg.S3.Bucket != "lrsys-bucket" {
		t.Errorf("expected bucket lrsys-bucket, got %s", cfg.S3.Bucket)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WEB_PORT", "not-a-number")
	t.Setenv("RESERVATION_TOLERANCE", "-5m")
	t.Setenv("MATCH_THRESHOLD", "-1")

	cfg := Load()

	if cfg.Web.Port != 5000 {
		t.Errorf("expected fallback port 5000, got %d", cfg.Web.Port)
	}
	if cfg.Reservation.Tolerance != 5*time.Minute {
		t.Errorf("expected fallback tolerance, got %v", cfg.Reservation.Tolerance)
	}
	if cfg.Match.Threshold != 0 {
		t.Errorf("expected unset threshold, got %v", cfg.Match.Threshold)
	}
}

func TestMatchThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		model     string
		expected  float64
	}{
		{"explicit threshold wins", 0.7, "ArcFace", 0.7},
		{"arcface profile", 0, "ArcFace", 1.0},
		{"facenet512 profile", 0, "Facenet512", 0.68},
		{"unknown model uses fallback", 0, "Dlib", 0.9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("MATCH_THRESHOLD", "")
			cfg := Load()
			cfg.Match.Threshold = tc.threshold
			cfg.Embedding.Model = tc.model

			got := cfg.MatchThreshold(0.9)
			if got != tc.expected {
				t.Errorf("MatchThreshold() = %v; want %v", got, tc.expected)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	rc := ReservationConfig{Timezone: "Local"}
	if rc.Location() != time.Local {
		t.Error("expected time.Local for Local")
	}

	rc = ReservationConfig{Timezone: "UTC"}
	if rc.Location().String() != "UTC" {
		t.Errorf("expected UTC, got %s", rc.Location())
	}

	rc = ReservationConfig{Timezone: "Not/AZone"}
	if rc.Location() != time.Local {
		t.Error("expected fallback to time.Local for unknown zone")
	}
}
