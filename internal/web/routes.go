package web

import (
	"github.com/kozaktomas/lab-kiosk/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", handlers.HealthCheck)

	s.router.Post("/upload_image", s.kiosk.UploadImage)
	s.router.Post("/verify_reservation", s.kiosk.VerifyReservation)
	s.router.Post("/kiosk/setup", s.kiosk.Setup)
}
