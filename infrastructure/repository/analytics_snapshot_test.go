package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

var snapshotRowColumns = []string{"id", "period", "filters_key", "filters", "result", "created_at", "updated_at"}

func TestAnalyticsSnapshotRepository_GetByPeriod(t *testing.T) {
	filters := domain.Filters{Owner: "ana"}
	at := time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC)

	t.Run("encontrado", func(t *testing.T) {
		conn, mock := newMockConn(t)
		repo := NewAnalyticsSnapshotRepository(conn)

		mock.ExpectQuery(regexp.QuoteMeta("FROM analytics_snapshots")).
			WithArgs(filters.Key(), "03-2024").
			WillReturnRows(sqlmock.NewRows(snapshotRowColumns).
				AddRow(int64(7), "03-2024", filters.Key(), []byte(`{"owner":"ana"}`), []byte(`{}`), at, at))

		entry, err := repo.GetByPeriod(context.Background(), "03-2024", filters)

		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(7), entry.ID)
		assert.Equal(t, filters, entry.Filters)
		assert.NotNil(t, entry.Result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inexistente", func(t *testing.T) {
		conn, mock := newMockConn(t)
		repo := NewAnalyticsSnapshotRepository(conn)

		mock.ExpectQuery(regexp.QuoteMeta("FROM analytics_snapshots")).
			WillReturnRows(sqlmock.NewRows(snapshotRowColumns))

		entry, err := repo.GetByPeriod(context.Background(), "03-2024", filters)

		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsSnapshotRepository_SaveOrUpdate(t *testing.T) {
	t.Run("período inválido", func(t *testing.T) {
		conn, mock := newMockConn(t)
		repo := NewAnalyticsSnapshotRepository(conn)

		err := repo.SaveOrUpdate(context.Background(), &domain.AnalyticsSnapshotEntry{Period: "2024-03"})

		assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert por período e filtros", func(t *testing.T) {
		conn, mock := newMockConn(t)
		repo := NewAnalyticsSnapshotRepository(conn)

		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (period, filters_key) DO UPDATE")).
			WithArgs("03-2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), domain.Filters{}.Key(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.SaveOrUpdate(context.Background(), &domain.AnalyticsSnapshotEntry{
			Period: "03-2024",
			Result: &domain.AggregateResult{},
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsSnapshotRepository_DeleteOlderThan(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := &analyticsSnapshotRepository{
		conn: conn,
		now:  func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) },
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analytics_snapshots WHERE period_start < $1")).
		WithArgs(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 5))

	deleted, err := repo.DeleteOlderThan(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsSnapshotRepository_GetAllPeriods(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewAnalyticsSnapshotRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT period FROM analytics_snapshots GROUP BY period, period_start ORDER BY period_start ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"period"}).AddRow("12-2023").AddRow("01-2024"))

	periods, err := repo.GetAllPeriods(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"12-2023", "01-2024"}, periods)
	assert.NoError(t, mock.ExpectationsWereMet())
}
