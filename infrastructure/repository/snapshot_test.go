package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

func TestSnapshotRepository_FetchEntities(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filters domain.Filters
		query   string
		args    []driver.Value
	}{
		{
			name:    "sem filtros",
			filters: domain.Filters{},
			query:   "FROM pipeline_entities pe ORDER BY pe.id ASC",
		},
		{
			name:    "por responsável",
			filters: domain.Filters{Owner: "ana"},
			query:   "FROM pipeline_entities pe WHERE pe.owner = $1 ORDER BY pe.id ASC",
			args:    []driver.Value{"ana"},
		},
		{
			name:    "por canal e responsável",
			filters: domain.Filters{Owner: "ana", Channel: "web"},
			query:   "WHERE pe.channel = $1 AND pe.owner = $2",
			args:    []driver.Value{"web", "ana"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMockConn(t)
			repo := NewSnapshotRepository(conn)

			expected := mock.ExpectQuery(regexp.QuoteMeta(tt.query))
			if len(tt.args) > 0 {
				expected = expected.WithArgs(tt.args...)
			}
			expected.WillReturnRows(sqlmock.NewRows(entityRowColumns).
				AddRow("E1", "LEAD", "Acme", "PROSPECTO", at, "ana", "web", "", 0.0, at))

			entities, err := repo.FetchEntities(context.Background(), tt.filters)

			require.NoError(t, err)
			require.Len(t, entities, 1)
			assert.Equal(t, "E1", entities[0].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSnapshotRepository_FetchHistory(t *testing.T) {
	t.Run("lista vazia não consulta o banco", func(t *testing.T) {
		conn, mock := newMockConn(t)
		repo := NewSnapshotRepository(conn)

		records, err := repo.FetchHistory(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("histórico de várias entidades", func(t *testing.T) {
		conn, mock := newMockConn(t)
		repo := NewSnapshotRepository(conn)

		t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE sh.entity_id = ANY($1) ORDER BY sh.entity_id ASC, sh.changed_at ASC")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "entity_id", "from_stage", "to_stage", "changed_at"}).
				AddRow("H1", "E1", nil, "PROSPECTO", t0).
				AddRow("H2", "E2", nil, "PROSPECTO", t0))

		records, err := repo.FetchHistory(context.Background(), []string{"E1", "E2"})

		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSnapshotRepository_FetchDeals(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewSnapshotRepository(conn)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	churned := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM deals d JOIN pipeline_entities pe ON pe.id = d.entity_id WHERE pe.subchannel = $1")).
		WithArgs("ads").
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "currency", "mrr_original", "fee_original", "exchange_rate", "mrr_usd", "fee_usd", "status", "start_date", "churned_at", "created_at", "updated_at"}).
			AddRow("E1", "COP", 4000000.0, 0.0, 4000.0, 1000.0, 0.0, "CHURNED", start, churned, start, start).
			AddRow("E2", "USD", 500.0, 100.0, nil, 500.0, 100.0, "ACTIVE", start, nil, start, start))

	deals, err := repo.FetchDeals(context.Background(), domain.Filters{Subchannel: "ads"})

	require.NoError(t, err)
	require.Len(t, deals, 2)

	require.NotNil(t, deals[0].ExchangeRate)
	assert.InDelta(t, 4000.0, *deals[0].ExchangeRate, 0.001)
	require.NotNil(t, deals[0].ChurnedAt)
	assert.True(t, churned.Equal(*deals[0].ChurnedAt))

	assert.Nil(t, deals[1].ExchangeRate)
	assert.Nil(t, deals[1].ChurnedAt)
	assert.Equal(t, domain.DealStatusActive, deals[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
