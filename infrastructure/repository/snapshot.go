package repository

//go:generate mockgen -source=snapshot.go -destination=mocks/snapshot.go -package=mocks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/pipeline-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

const (
	pipelineEntitiesTable = "pipeline_entities pe"
	stageHistoryTable     = "stage_history sh"
	dealsTable            = "deals d"

	entityColumns  = "pe.id, pe.kind, pe.name, pe.stage, pe.stage_entered_at, pe.owner, pe.channel, pe.subchannel, pe.estimated_value_usd, pe.created_at"
	historyColumns = "sh.id, sh.entity_id, sh.from_stage, sh.to_stage, sh.changed_at"
	dealColumns    = "d.entity_id, d.currency, d.mrr_original, d.fee_original, d.exchange_rate, d.mrr_usd, d.fee_usd, d.status, d.start_date, d.churned_at, d.created_at, d.updated_at"
)

// SnapshotRepository é a fonte somente leitura das análises
type SnapshotRepository interface {
	domain.SnapshotReader
}

type snapshotRepository struct {
	conn *postgres.Connection
}

func NewSnapshotRepository(conn *postgres.Connection) SnapshotRepository {
	return &snapshotRepository{
		conn: conn,
	}
}

// filtersClause monta o filtro por dimensões da entidade; nil quando não há filtros
func filtersClause(filters domain.Filters) squirrel.Sqlizer {
	eq := squirrel.Eq{}
	if filters.Owner != "" {
		eq["pe.owner"] = filters.Owner
	}
	if filters.Channel != "" {
		eq["pe.channel"] = filters.Channel
	}
	if filters.Subchannel != "" {
		eq["pe.subchannel"] = filters.Subchannel
	}
	if len(eq) == 0 {
		return nil
	}
	return eq
}

func (r *snapshotRepository) FetchEntities(ctx context.Context, filters domain.Filters) ([]domain.PipelineEntity, error) {
	builder := squirrel.
		Select(entityColumns).
		From(pipelineEntitiesTable).
		OrderBy("pe.id ASC").
		PlaceholderFormat(squirrel.Dollar)
	if clause := filtersClause(filters); clause != nil {
		builder = builder.Where(clause)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar entidades: %w", err)
	}
	defer rows.Close()

	entities := make([]domain.PipelineEntity, 0)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear entidade: %w", err)
		}
		entities = append(entities, *entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entities, nil
}

func (r *snapshotRepository) FetchHistory(ctx context.Context, entityIDs []string) ([]domain.StageHistoryRecord, error) {
	if len(entityIDs) == 0 {
		return []domain.StageHistoryRecord{}, nil
	}

	query, args, err := squirrel.
		Select(historyColumns).
		From(stageHistoryTable).
		Where("sh.entity_id = ANY(?)", pq.Array(entityIDs)).
		OrderBy("sh.entity_id ASC", "sh.changed_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return queryHistory(ctx, r.conn, query, args...)
}

func (r *snapshotRepository) FetchDeals(ctx context.Context, filters domain.Filters) ([]domain.Deal, error) {
	builder := squirrel.
		Select(dealColumns).
		From(dealsTable).
		Join("pipeline_entities pe ON pe.id = d.entity_id").
		OrderBy("d.entity_id ASC").
		PlaceholderFormat(squirrel.Dollar)
	if clause := filtersClause(filters); clause != nil {
		builder = builder.Where(clause)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar contratos: %w", err)
	}
	defer rows.Close()

	deals := make([]domain.Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear contrato: %w", err)
		}
		deals = append(deals, *deal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return deals, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*domain.PipelineEntity, error) {
	e := &domain.PipelineEntity{}
	if err := row.Scan(
		&e.ID,
		&e.Kind,
		&e.Name,
		&e.Stage,
		&e.StageEnteredAt,
		&e.Owner,
		&e.Channel,
		&e.Subchannel,
		&e.EstimatedValueUSD,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func scanHistoryRecord(row scanner) (*domain.StageHistoryRecord, error) {
	var (
		record    domain.StageHistoryRecord
		fromStage sql.NullString
	)
	if err := row.Scan(
		&record.ID,
		&record.EntityID,
		&fromStage,
		&record.ToStage,
		&record.ChangedAt,
	); err != nil {
		return nil, err
	}
	if fromStage.Valid {
		record.FromStage = domain.StagePtr(domain.Stage(fromStage.String))
	}
	return &record, nil
}

func scanDeal(row scanner) (*domain.Deal, error) {
	var (
		deal      domain.Deal
		rate      sql.NullFloat64
		churnedAt sql.NullTime
	)
	if err := row.Scan(
		&deal.EntityID,
		&deal.Currency,
		&deal.MRROriginal,
		&deal.FeeOriginal,
		&rate,
		&deal.MRRUSD,
		&deal.FeeUSD,
		&deal.Status,
		&deal.StartDate,
		&churnedAt,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if rate.Valid {
		deal.ExchangeRate = &rate.Float64
	}
	if churnedAt.Valid {
		deal.ChurnedAt = &churnedAt.Time
	}
	return &deal, nil
}

func queryHistory(ctx context.Context, q postgres.Queryer, query string, args ...any) ([]domain.StageHistoryRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	records := make([]domain.StageHistoryRecord, 0)
	for rows.Next() {
		record, err := scanHistoryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear histórico: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}
