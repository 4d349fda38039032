// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Face matching constants
const (
	// DefaultMatchThreshold is the maximum L2-normalized euclidean distance accepted as a match
	// when neither MATCH_THRESHOLD nor the model profile provides one.
	// Lower values = stricter matching
	DefaultMatchThreshold = 1.0

	// DefaultEmbeddingModel is the face embedding model expected behind the embedding server
	DefaultEmbeddingModel = "ArcFace"

	// ProbeJPEGQuality is the JPEG quality used when re-encoding probe frames for the embedding server
	ProbeJPEGQuality = 95
)

// Reservation constants
const (
	// ReservationTolerance is how far the current time may be from the reservation time
	ReservationTolerance = 5 * time.Minute

	// ReservationIDLength is the length of a reservation id encoded in kiosk QR codes
	ReservationIDLength = 15

	// LabIDLength is the length of a lab id
	LabIDLength = 5

	// AdminIDLength is the length of an admin id used during kiosk setup
	AdminIDLength = 10
)

// Storage constants
const (
	// PresignTTL is the lifetime of presigned photo URLs
	PresignTTL = time.Hour

	// PhotoFetchRetries is the number of retries for a failed photo download
	PhotoFetchRetries = 3

	// MaxPhotoSize is the maximum size of an enrolled photo download (20MB)
	MaxPhotoSize = 20 << 20
)

// File upload constants
const (
	// MaxUploadSize is the maximum frame upload size in bytes (10MB)
	MaxUploadSize = 10 << 20

	// MaxImagePixels caps the declared dimensions of a frame or enrolled photo (40MP)
	MaxImagePixels = 40_000_000
)

// Event constants
const (
	// AccessGrantedQueue is the default queue for unlock events
	AccessGrantedQueue = "lab.access.granted"
)
