package repository

//go:generate mockgen -source=deal.go -destination=mocks/deal.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/pipeline-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

type DealRepository interface {
	GetByEntityID(ctx context.Context, entityID string) (*domain.Deal, error)
	SaveOrUpdate(ctx context.Context, deal *domain.Deal) error
}

type dealRepository struct {
	conn *postgres.Connection
}

func NewDealRepository(conn *postgres.Connection) DealRepository {
	return &dealRepository{
		conn: conn,
	}
}

// GetByEntityID retorna nil quando a entidade ainda não tem contrato
func (r *dealRepository) GetByEntityID(ctx context.Context, entityID string) (*domain.Deal, error) {
	query, args, err := squirrel.
		Select(dealColumns).
		From(dealsTable).
		Where(squirrel.Eq{"d.entity_id": entityID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	deal, err := scanDeal(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear contrato: %w", err)
	}

	return deal, nil
}

func (r *dealRepository) SaveOrUpdate(ctx context.Context, deal *domain.Deal) error {
	var rate sql.NullFloat64
	if deal.ExchangeRate != nil {
		rate = sql.NullFloat64{Float64: *deal.ExchangeRate, Valid: true}
	}
	var churnedAt sql.NullTime
	if deal.ChurnedAt != nil {
		churnedAt = sql.NullTime{Time: *deal.ChurnedAt, Valid: true}
	}

	query, args, err := squirrel.StatementBuilder.
		Insert("deals").
		Columns("entity_id", "currency", "mrr_original", "fee_original", "exchange_rate", "mrr_usd", "fee_usd", "status", "start_date", "churned_at").
		Values(
			deal.EntityID,
			deal.Currency,
			deal.MRROriginal,
			deal.FeeOriginal,
			rate,
			deal.MRRUSD,
			deal.FeeUSD,
			deal.Status,
			deal.StartDate,
			churnedAt,
		).
		Suffix(`
			ON CONFLICT (entity_id) DO UPDATE SET
				currency = EXCLUDED.currency,
				mrr_original = EXCLUDED.mrr_original,
				fee_original = EXCLUDED.fee_original,
				exchange_rate = EXCLUDED.exchange_rate,
				mrr_usd = EXCLUDED.mrr_usd,
				fee_usd = EXCLUDED.fee_usd,
				status = EXCLUDED.status,
				start_date = EXCLUDED.start_date,
				churned_at = EXCLUDED.churned_at,
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
			if pqErr.Code == pqForeignKeyViolation {
				return domain.ErrEntityNotFound
			}
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
