package repository

//go:generate mockgen -source=ledger.go -destination=mocks/ledger.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pipeline-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/ledger"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// LedgerRepository persiste entidades e históricos de etapa com controle otimista de concorrência
type LedgerRepository interface {
	ledger.Store
}

type ledgerRepository struct {
	conn *postgres.Connection
}

func NewLedgerRepository(conn *postgres.Connection) LedgerRepository {
	return &ledgerRepository{
		conn: conn,
	}
}

func (r *ledgerRepository) GetEntity(ctx context.Context, entityID string) (*domain.PipelineEntity, error) {
	query, args, err := squirrel.
		Select(entityColumns).
		From(pipelineEntitiesTable).
		Where(squirrel.Eq{"pe.id": entityID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	entity, err := scanEntity(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf("erro ao escanear entidade: %w", err)
	}

	return entity, nil
}

func (r *ledgerRepository) CreateEntity(ctx context.Context, entity domain.PipelineEntity, record domain.StageHistoryRecord) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		query, args, err := squirrel.
			Insert("pipeline_entities").
			Columns("id", "kind", "name", "stage", "stage_entered_at", "owner", "channel", "subchannel", "estimated_value_usd", "created_at").
			Values(
				entity.ID,
				entity.Kind,
				entity.Name,
				entity.Stage,
				entity.StageEnteredAt,
				entity.Owner,
				entity.Channel,
				entity.Subchannel,
				entity.EstimatedValueUSD,
				entity.CreatedAt,
			).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
				return domain.ErrEntityAlreadyExist
			}
			return fmt.Errorf("erro ao inserir entidade: %w", err)
		}

		return insertHistory(ctx, tx, record)
	})
}

// AppendTransition só atualiza a entidade se etapa e stage_entered_at ainda forem os lidos pelo chamador;
// nenhuma linha afetada significa que outra transição venceu a corrida.
func (r *ledgerRepository) AppendTransition(ctx context.Context, record domain.StageHistoryRecord, expectedEnteredAt time.Time) error {
	if record.FromStage == nil {
		return domain.NewStaleTransitionError(record.EntityID, "", "")
	}
	expected := *record.FromStage

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		query, args, err := squirrel.
			Update("pipeline_entities").
			Set("stage", record.ToStage).
			Set("stage_entered_at", record.ChangedAt).
			Where(squirrel.Eq{
				"id":               record.EntityID,
				"stage":            expected,
				"stage_entered_at": expectedEnteredAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("erro ao atualizar etapa: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("erro ao obter linhas afetadas: %w", err)
		}

		if affected == 0 {
			actual, err := currentStage(ctx, tx, record.EntityID)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"entity_id": record.EntityID,
				"expected":  expected,
				"actual":    actual,
			}).Debug("Transição rejeitada por etapa desatualizada")
			return domain.NewStaleTransitionError(record.EntityID, expected, actual)
		}

		return insertHistory(ctx, tx, record)
	})
}

func (r *ledgerRepository) ListHistory(ctx context.Context, entityID string) ([]domain.StageHistoryRecord, error) {
	query, args, err := squirrel.
		Select(historyColumns).
		From(stageHistoryTable).
		Where(squirrel.Eq{"sh.entity_id": entityID}).
		OrderBy("sh.changed_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return queryHistory(ctx, r.conn, query, args...)
}

func currentStage(ctx context.Context, q postgres.Queryer, entityID string) (domain.Stage, error) {
	query, args, err := squirrel.
		Select("stage").
		From("pipeline_entities").
		Where(squirrel.Eq{"id": entityID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("erro ao construir a query: %w", err)
	}

	var stage domain.Stage
	if err := q.QueryRowContext(ctx, query, args...).Scan(&stage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrEntityNotFound
		}
		return "", fmt.Errorf("erro ao buscar etapa atual: %w", err)
	}

	return stage, nil
}

func insertHistory(ctx context.Context, q postgres.Queryer, record domain.StageHistoryRecord) error {
	var fromStage sql.NullString
	if record.FromStage != nil {
		fromStage = sql.NullString{String: string(*record.FromStage), Valid: true}
	}

	query, args, err := squirrel.
		Insert("stage_history").
		Columns("id", "entity_id", "from_stage", "to_stage", "changed_at").
		Values(record.ID, record.EntityID, fromStage, record.ToStage, record.ChangedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao inserir histórico: %w", err)
	}

	return nil
}
