package repository

//go:generate mockgen -source=analytics_snapshot.go -destination=mocks/analytics_snapshot.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/vfg2006/pipeline-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	analyticsSnapshotsTable = "analytics_snapshots ans"
)

// AnalyticsSnapshotRepository guarda o resultado mensal das análises por conjunto de filtros
type AnalyticsSnapshotRepository interface {
	GetByPeriod(ctx context.Context, period string, filters domain.Filters) (*domain.AnalyticsSnapshotEntry, error)
	ListByPeriod(ctx context.Context, period string) ([]*domain.AnalyticsSnapshotEntry, error)
	SaveOrUpdate(ctx context.Context, entry *domain.AnalyticsSnapshotEntry) error
	DeleteOlderThan(ctx context.Context, months int) (int64, error)
	GetAllPeriods(ctx context.Context) ([]string, error)
}

type analyticsSnapshotRepository struct {
	conn *postgres.Connection
	now  func() time.Time
}

func NewAnalyticsSnapshotRepository(conn *postgres.Connection) AnalyticsSnapshotRepository {
	return &analyticsSnapshotRepository{
		conn: conn,
		now:  time.Now,
	}
}

func (r *analyticsSnapshotRepository) GetByPeriod(ctx context.Context, period string, filters domain.Filters) (*domain.AnalyticsSnapshotEntry, error) {
	query, args, err := squirrel.
		Select("ans.id, ans.period, ans.filters_key, ans.filters, ans.result, ans.created_at, ans.updated_at").
		From(analyticsSnapshotsTable).
		Where(squirrel.Eq{"ans.period": period, "ans.filters_key": filters.Key()}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	entry, err := r.scanEntry(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear snapshot de análise: %w", err)
	}

	return entry, nil
}

func (r *analyticsSnapshotRepository) ListByPeriod(ctx context.Context, period string) ([]*domain.AnalyticsSnapshotEntry, error) {
	query, args, err := squirrel.
		Select("ans.id, ans.period, ans.filters_key, ans.filters, ans.result, ans.created_at, ans.updated_at").
		From(analyticsSnapshotsTable).
		Where(squirrel.Eq{"ans.period": period}).
		OrderBy("ans.filters_key ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.AnalyticsSnapshotEntry, 0)
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear snapshot de análise: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}

func (r *analyticsSnapshotRepository) SaveOrUpdate(ctx context.Context, entry *domain.AnalyticsSnapshotEntry) error {
	periodStart, err := time.Parse(domain.PeriodLayout, entry.Period)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPeriod, entry.Period)
	}

	filtersJSON, err := json.Marshal(entry.Filters)
	if err != nil {
		return fmt.Errorf("erro ao serializar filtros para JSON: %w", err)
	}

	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("erro ao serializar resultado para JSON: %w", err)
	}

	query, args, err := squirrel.StatementBuilder.
		Insert("analytics_snapshots").
		Columns("period", "period_start", "filters_key", "filters", "result").
		Values(entry.Period, periodStart, entry.Filters.Key(), filtersJSON, resultJSON).
		Suffix(`
			ON CONFLICT (period, filters_key) DO UPDATE SET
				filters = EXCLUDED.filters,
				result = EXCLUDED.result,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

// DeleteOlderThan remove snapshots de meses anteriores ao corte
func (r *analyticsSnapshotRepository) DeleteOlderThan(ctx context.Context, months int) (int64, error) {
	cutoff := domain.MonthPeriod(r.now().AddDate(0, -months, 0)).Start

	query, args, err := squirrel.
		Delete("analytics_snapshots").
		Where(squirrel.Lt{"period_start": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

// GetAllPeriods retorna todos os períodos disponíveis no formato mm-yyyy, do mais antigo ao mais recente
func (r *analyticsSnapshotRepository) GetAllPeriods(ctx context.Context) ([]string, error) {
	query, args, err := squirrel.
		Select("period").
		From("analytics_snapshots").
		GroupBy("period", "period_start").
		OrderBy("period_start ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	periods := make([]string, 0)
	for rows.Next() {
		var period string
		if err := rows.Scan(&period); err != nil {
			return nil, fmt.Errorf("erro ao escanear período: %w", err)
		}
		periods = append(periods, period)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return periods, nil
}

func (r *analyticsSnapshotRepository) scanEntry(row scanner) (*domain.AnalyticsSnapshotEntry, error) {
	var (
		entry       domain.AnalyticsSnapshotEntry
		filtersJSON []byte
		resultJSON  []byte
	)

	if err := row.Scan(
		&entry.ID,
		&entry.Period,
		&entry.FiltersKey,
		&filtersJSON,
		&resultJSON,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(filtersJSON) > 0 {
		if err := json.Unmarshal(filtersJSON, &entry.Filters); err != nil {
			return nil, fmt.Errorf("erro ao deserializar filtros: %w", err)
		}
	}

	if len(resultJSON) > 0 {
		entry.Result = &domain.AggregateResult{}
		if err := json.Unmarshal(resultJSON, entry.Result); err != nil {
			return nil, fmt.Errorf("erro ao deserializar resultado: %w", err)
		}
	}

	return &entry, nil
}
