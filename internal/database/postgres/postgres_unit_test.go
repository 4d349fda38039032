package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoolWithMock(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestListEnrolledWithEmbedding_ScansVectors(t *testing.T) {
	pool, mock := newPoolWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "photo_path", "features"}).
		AddRow("S1", "photos/s1.jpg", "[1,0,0.5]")
	mock.ExpectQuery(`(?s)FROM\s+user_img\s+WHERE\s+features\s+IS\s+NOT\s+NULL\s+ORDER\s+BY\s+id`).
		WillReturnRows(rows)

	users, err := pool.ListEnrolledWithEmbedding(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []float32{1, 0, 0.5}, users[0].Embedding)
}

func TestSaveEmbedding_UsesVector(t *testing.T) {
	pool, mock := newPoolWithMock(t)

	mock.ExpectExec(`UPDATE\s+user_img\s+SET\s+features\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2`).
		WithArgs(pgvector.NewVector([]float32{0.5, -1}), "S1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, pool.SaveEmbedding(context.Background(), "S1", []float32{0.5, -1}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkChecked_OnlyUnchecked(t *testing.T) {
	pool, mock := newPoolWithMock(t)

	q := `UPDATE\s+reservations\s+SET\s+checked\s*=\s*TRUE\s+WHERE\s+reservation_id\s*=\s*\$1\s+AND\s+NOT\s+checked`
	mock.ExpectExec(q).WithArgs("100000000000001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("100000000000001").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := pool.MarkChecked(context.Background(), "100000000000001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pool.MarkChecked(context.Background(), "100000000000001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminExists_UsesExists(t *testing.T) {
	pool, mock := newPoolWithMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs("ADMIN00001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := pool.AdminExists(context.Background(), "ADMIN00001")
	require.NoError(t, err)
	assert.True(t, ok)
}
