package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonton108/plc-dashboard/internal/domain"
)

func setupMockMeasurementDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresMeasurementRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresMeasurementRepository(db)
	return db, mock, repo
}

func TestMeasurementInsert_Success(t *testing.T) {
	db, mock, repo := setupMockMeasurementDB(t)
	defer db.Close()

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	production := int64(42)
	current := 12.5

	mock.ExpectQuery(`INSERT INTO logs`).
		WithArgs(int64(1), ts, &production, &current, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Insert(context.Background(), &domain.Measurement{
		EquipmentID:     1,
		Timestamp:       ts,
		ProductionCount: &production,
		Current:         &current,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeasurementInsert_StorageFailure(t *testing.T) {
	db, mock, repo := setupMockMeasurementDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO logs`).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.Insert(context.Background(), &domain.Measurement{
		EquipmentID: 1,
		Timestamp:   time.Now().UTC(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert log")
}

func TestListRange_ReturnsNewestFirst(t *testing.T) {
	db, mock, repo := setupMockMeasurementDB(t)
	defer db.Close()

	from := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "equipment_id", "timestamp", "production_count",
		"current", "temperature", "pressure", "cycle_time", "error_code",
	}).
		AddRow(int64(2), int64(1), to.Add(-time.Hour), int64(10), 12.5, 25.0, 0.8, 15.0, nil).
		AddRow(int64(1), int64(1), to.Add(-2*time.Hour), int64(9), 12.1, 24.8, 0.79, 14.8, 101)

	mock.ExpectQuery(`SELECT(.|\s)+FROM logs(.|\s)+ORDER BY timestamp DESC(.|\s)+LIMIT`).
		WithArgs(int64(1), from, to, 100).
		WillReturnRows(rows)

	measurements, err := repo.ListRange(context.Background(), 1, from, to, 100)

	require.NoError(t, err)
	require.Len(t, measurements, 2)
	assert.Equal(t, int64(2), measurements[0].ID)
	require.NotNil(t, measurements[0].ProductionCount)
	assert.Equal(t, int64(10), *measurements[0].ProductionCount)
	assert.Nil(t, measurements[0].ErrorCode)
	require.NotNil(t, measurements[1].ErrorCode)
	assert.Equal(t, 101, *measurements[1].ErrorCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRange_NoLimitOmitsLimitClause(t *testing.T) {
	db, mock, repo := setupMockMeasurementDB(t)
	defer db.Close()

	from := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery(`SELECT(.|\s)+FROM logs(.|\s)+ORDER BY timestamp DESC`).
		WithArgs(int64(1), from, to).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "equipment_id", "timestamp", "production_count",
			"current", "temperature", "pressure", "cycle_time", "error_code",
		}))

	measurements, err := repo.ListRange(context.Background(), 1, from, to, 0)

	require.NoError(t, err)
	assert.Empty(t, measurements)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBatchBefore_UsesStrictComparison(t *testing.T) {
	db, mock, repo := setupMockMeasurementDB(t)
	defer db.Close()

	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// 严格 "<"：等于 cutoff 的记录不在删除范围内
	mock.ExpectExec(`DELETE FROM logs(.|\s)+WHERE timestamp < \$1(.|\s)+LIMIT \$2`).
		WithArgs(cutoff, 1000).
		WillReturnResult(sqlmock.NewResult(0, 1000))

	deleted, err := repo.DeleteBatchBefore(context.Background(), cutoff, 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountBefore(t *testing.T) {
	db, mock, repo := setupMockMeasurementDB(t)
	defer db.Close()

	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM logs WHERE timestamp < \$1`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2500)))

	count, err := repo.CountBefore(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(2500), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
