package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/lab-kiosk/internal/database"
)

const reservationColumns = `reservation_id, user_id, lab_id,
		to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI:SS'),
		verified, checked`

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(row scanner) (database.Reservation, error) {
	var r database.Reservation
	err := row.Scan(&r.ReservationID, &r.UserID, &r.LabID, &r.Date, &r.Time, &r.Verified, &r.Checked)
	return r, err
}

// ListVerifiedReservations returns the user's verified reservations for a lab on a date
func (p *Pool) ListVerifiedReservations(ctx context.Context, userID, labID, date string) ([]database.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1 AND lab_id = $2 AND date = $3 AND verified
		ORDER BY reservation_id
	`

	rows, err := p.db.QueryContext(ctx, query, userID, labID, date)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []database.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		reservations = append(reservations, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return reservations, nil
}

// GetReservation returns a reservation by ID, nil if not found
func (p *Pool) GetReservation(ctx context.Context, reservationID string) (*database.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = $1`

	r, err := scanReservation(p.db.QueryRowContext(ctx, query, reservationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation %s: %w", reservationID, err)
	}
	return &r, nil
}

// MarkChecked consumes an unchecked reservation
func (p *Pool) MarkChecked(ctx context.Context, reservationID string) (bool, error) {
	query := `UPDATE reservations SET checked = TRUE WHERE reservation_id = $1 AND NOT checked`

	res, err := p.db.ExecContext(ctx, query, reservationID)
	if err != nil {
		return false, fmt.Errorf("mark reservation %s checked: %w", reservationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
