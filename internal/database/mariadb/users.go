package mariadb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kozaktomas/lab-kiosk/internal/database"
)

// ListEnrolledWithEmbedding returns users with computed features, ordered by ID.
// features holds a JSON array of floats.
func (p *Pool) ListEnrolledWithEmbedding(ctx context.Context) ([]database.EnrolledUser, error) {
	query := `
		SELECT id, COALESCE(photo_path, ''), features
		FROM user_img
		WHERE features IS NOT NULL
		ORDER BY id
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query enrolled users: %w", err)
	}
	defer rows.Close()

	var users []database.EnrolledUser
	for rows.Next() {
		var u database.EnrolledUser
		var raw []byte
		if err := rows.Scan(&u.UserID, &u.PhotoPath, &raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal(raw, &u.Embedding); err != nil {
			return nil, fmt.Errorf("decode features of %s: %w", u.UserID, err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return users, nil
}

// ListMissingEmbeddings returns users with a photo but no features yet.
func (p *Pool) ListMissingEmbeddings(ctx context.Context) ([]database.EnrolledUser, error) {
	query := `
		SELECT id, photo_path
		FROM user_img
		WHERE features IS NULL AND photo_path IS NOT NULL
		ORDER BY id
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users without features: %w", err)
	}
	defer rows.Close()

	var users []database.EnrolledUser
	for rows.Next() {
		var u database.EnrolledUser
		if err := rows.Scan(&u.UserID, &u.PhotoPath); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return users, nil
}

// SaveEmbedding writes the features of a user as a JSON array.
func (p *Pool) SaveEmbedding(ctx context.Context, userID string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	query := `UPDATE user_img SET features = ? WHERE id = ?`
	if _, err := p.db.ExecContext(ctx, query, string(data), userID); err != nil {
		return fmt.Errorf("update features of %s: %w", userID, err)
	}

	return nil
}
