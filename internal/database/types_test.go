package database

import (
	"testing"
	"time"
)

func TestReservationStartsAt(t *testing.T) {
	loc := time.FixedZone("kiosk", 2*60*60)

	tests := []struct {
		name    string
		date    string
		clock   string
		want    time.Time
		wantErr bool
	}{
		{"with seconds", "2024-03-01", "10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, loc), false},
		{"without seconds", "2024-03-01", "09:30", time.Date(2024, 3, 1, 9, 30, 0, 0, loc), false},
		{"bad time", "2024-03-01", "ten o'clock", time.Time{}, true},
		{"bad date", "01/03/2024", "10:00", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reservation{Date: tt.date, Time: tt.clock}
			got, err := r.StartsAt(loc)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("StartsAt() = %v, want %v", got, tt.want)
			}
		})
	}
}
