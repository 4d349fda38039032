package verify

import "errors"

var (
	// ErrInvalidInput marks requests that are missing fields or carry an undecodable image.
	ErrInvalidInput = errors.New("invalid input")
	// ErrFeatureExtractionFailed is returned when neither the frame nor its mirror produced an embedding.
	ErrFeatureExtractionFailed = errors.New("feature extraction failed")
	// ErrPersistence wraps store failures on the request path.
	ErrPersistence = errors.New("persistence error")
	// ErrInvalidAdmin is returned by kiosk setup for an unknown admin ID.
	ErrInvalidAdmin = errors.New("invalid admin ID")
	// ErrUnknownLab is returned by kiosk setup for an unknown lab ID.
	ErrUnknownLab = errors.New("invalid lab ID")
)
