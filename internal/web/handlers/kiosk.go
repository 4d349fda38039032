package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/lab-kiosk/internal/constants"
	"github.com/kozaktomas/lab-kiosk/internal/database"
	"github.com/kozaktomas/lab-kiosk/internal/logging"
	"github.com/kozaktomas/lab-kiosk/internal/verify"
)

// KioskService is the verification pipeline behind the kiosk endpoints.
type KioskService interface {
	Verify(ctx context.Context, image []byte, labID string) (verify.Response, error)
	VerifyReservation(ctx context.Context, reservationID, labID string) (verify.Response, error)
	SetupKiosk(ctx context.Context, adminID, labID string) (*database.Lab, error)
}

// KioskHandler handles the kiosk endpoints.
type KioskHandler struct {
	service KioskService
	log     logging.Logger
}

// NewKioskHandler creates a new kiosk handler.
func NewKioskHandler(service KioskService, log logging.Logger) *KioskHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &KioskHandler{service: service, log: log}
}

type uploadForm struct {
	LabID string `schema:"lab_id"`
}

// UploadImage verifies the face in an uploaded frame.
func (h *KioskHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	var form uploadForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	labID := strings.TrimSpace(form.LabID)
	if labID == "" {
		respondError(w, http.StatusBadRequest, "lab_id is required")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}

	resp, err := h.service.Verify(r.Context(), data, labID)
	if err != nil {
		h.handleError(w, r, err, "invalid image")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type reservationRequest struct {
	ReservationID string `json:"reservation_id" schema:"reservation_id"`
	LabID         string `json:"lab_id" schema:"lab_id"`
}

// VerifyReservation checks a reservation ID scanned from a QR code.
func (h *KioskHandler) VerifyReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	req.ReservationID = strings.TrimSpace(req.ReservationID)
	req.LabID = strings.TrimSpace(req.LabID)
	if req.ReservationID == "" || req.LabID == "" {
		respondError(w, http.StatusBadRequest, "reservation_id and lab_id are required")
		return
	}

	resp, err := h.service.VerifyReservation(r.Context(), req.ReservationID, req.LabID)
	if err != nil {
		h.handleError(w, r, err, "invalid reservation ID")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type setupRequest struct {
	AdminID string `json:"admin_id" schema:"admin_id"`
	LabID   string `json:"lab_id" schema:"lab_id"`
}

type setupResponse struct {
	LabID   string `json:"lab_id"`
	LabName string `json:"lab_name"`
}

// Setup binds a kiosk to a lab after checking the admin ID.
func (h *KioskHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	lab, err := h.service.SetupKiosk(r.Context(), strings.TrimSpace(req.AdminID), strings.TrimSpace(req.LabID))
	switch {
	case errors.Is(err, verify.ErrInvalidAdmin):
		respondError(w, http.StatusForbidden, "Invalid Admin ID")
		return
	case errors.Is(err, verify.ErrUnknownLab):
		respondError(w, http.StatusNotFound, "Invalid Lab ID")
		return
	case errors.Is(err, verify.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), verify.ErrInvalidInput.Error()+": "))
		return
	case err != nil:
		h.log.Error(r.Context(), "kiosk setup failed", "error", sanitizeForLog(err.Error()))
		respondError(w, http.StatusInternalServerError, errUnexpected)
		return
	}

	h.log.Info(r.Context(), "kiosk bound to lab", "lab_id", lab.LabID)
	respondJSON(w, http.StatusOK, setupResponse{LabID: lab.LabID, LabName: lab.LabName})
}

func (h *KioskHandler) handleError(w http.ResponseWriter, r *http.Request, err error, invalidMsg string) {
	switch {
	case errors.Is(err, verify.ErrFeatureExtractionFailed):
		h.log.Warn(r.Context(), "feature extraction failed", "error", sanitizeForLog(err.Error()))
		respondError(w, http.StatusBadRequest, "Feature extraction failed")
	case errors.Is(err, verify.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, invalidMsg)
	default:
		h.log.Error(r.Context(), "verification failed", "error", sanitizeForLog(err.Error()))
		respondError(w, http.StatusInternalServerError, errUnexpected)
	}
}
