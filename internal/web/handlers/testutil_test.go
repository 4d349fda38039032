package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kozaktomas/lab-kiosk/internal/database"
	"github.com/kozaktomas/lab-kiosk/internal/verify"
)

// stubService records what the handlers passed through and returns canned results.
type stubService struct {
	verifyResp verify.Response
	verifyErr  error
	labResp    *database.Lab
	setupErr   error

	verifyCalls int
	gotImage    []byte
	gotLabID    string
	gotReservID string
	gotAdminID  string
}

func (s *stubService) Verify(_ context.Context, image []byte, labID string) (verify.Response, error) {
	s.verifyCalls++
	s.gotImage = image
	s.gotLabID = labID
	return s.verifyResp, s.verifyErr
}

func (s *stubService) VerifyReservation(_ context.Context, reservationID, labID string) (verify.Response, error) {
	s.verifyCalls++
	s.gotReservID = reservationID
	s.gotLabID = labID
	return s.verifyResp, s.verifyErr
}

func (s *stubService) SetupKiosk(_ context.Context, adminID, labID string) (*database.Lab, error) {
	s.gotAdminID = adminID
	s.gotLabID = labID
	return s.labResp, s.setupErr
}

// multipartRequest builds a POST with the given form fields and an optional "image" file.
func multipartRequest(t *testing.T, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "frame.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(image)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
