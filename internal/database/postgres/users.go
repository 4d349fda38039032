package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/lab-kiosk/internal/database"
)

// ListEnrolledWithEmbedding returns users with computed features, ordered by ID
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
		var vec pgvector.Vector
		if err := rows.Scan(&u.UserID, &u.PhotoPath, &vec); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		u.Embedding = vec.Slice()
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return users, nil
}

// ListMissingEmbeddings returns users with a photo but no features yet
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

// SaveEmbedding stores the features of a user
func (p *Pool) SaveEmbedding(ctx context.Context, userID string, embedding []float32) error {
	query := `UPDATE user_img SET features = $1 WHERE id = $2`
	if _, err := p.db.ExecContext(ctx, query, pgvector.NewVector(embedding), userID); err != nil {
		return fmt.Errorf("update features of %s: %w", userID, err)
	}
	return nil
}
