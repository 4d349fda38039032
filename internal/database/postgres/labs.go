package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/lab-kiosk/internal/database"
)

// GetLab returns a lab by ID, nil if not found
func (p *Pool) GetLab(ctx context.Context, labID string) (*database.Lab, error) {
	var lab database.Lab
	err := p.db.QueryRowContext(ctx, `SELECT lab_id, lab_name FROM labs WHERE lab_id = $1`, labID).
		Scan(&lab.LabID, &lab.LabName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query lab %s: %w", labID, err)
	}
	return &lab, nil
}

// AdminExists reports whether adminID is registered
func (p *Pool) AdminExists(ctx context.Context, adminID string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM admin WHERE admin_id = $1)`, adminID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query admin: %w", err)
	}
	return exists, nil
}
