// Package migration cria e evolui o schema usado pelos repositórios.
package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/pipeline-analytics-api/infrastructure/database/postgres"
)

// Migration é um passo versionado do schema
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// Migrations lista os passos em ordem de versão
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "pipeline_entities",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS pipeline_entities (
				id                  VARCHAR(32)   PRIMARY KEY,
				kind                VARCHAR(16)   NOT NULL,
				name                VARCHAR(255)  NOT NULL DEFAULT '',
				stage               VARCHAR(16)   NOT NULL,
				stage_entered_at    TIMESTAMPTZ   NOT NULL,
				owner               VARCHAR(255)  NOT NULL DEFAULT '',
				channel             VARCHAR(255)  NOT NULL DEFAULT '',
				subchannel          VARCHAR(255)  NOT NULL DEFAULT '',
				estimated_value_usd NUMERIC(18,2) NOT NULL DEFAULT 0,
				created_at          TIMESTAMPTZ   NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_pipeline_entities_owner ON pipeline_entities (owner)`,
			`CREATE INDEX IF NOT EXISTS idx_pipeline_entities_channel ON pipeline_entities (channel, subchannel)`,
		},
	},
	{
		Version: 2,
		Name:    "stage_history",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS stage_history (
				id         VARCHAR(32) PRIMARY KEY,
				entity_id  VARCHAR(32) NOT NULL REFERENCES pipeline_entities (id) ON DELETE CASCADE,
				from_stage VARCHAR(16),
				to_stage   VARCHAR(16) NOT NULL,
				changed_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_stage_history_entity ON stage_history (entity_id, changed_at)`,
		},
	},
	{
		Version: 3,
		Name:    "deals",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS deals (
				entity_id     VARCHAR(32)   PRIMARY KEY REFERENCES pipeline_entities (id) ON DELETE CASCADE,
				currency      CHAR(3)       NOT NULL,
				mrr_original  NUMERIC(18,2) NOT NULL DEFAULT 0,
				fee_original  NUMERIC(18,2) NOT NULL DEFAULT 0,
				exchange_rate NUMERIC(18,6),
				mrr_usd       NUMERIC(18,2) NOT NULL DEFAULT 0,
				fee_usd       NUMERIC(18,2) NOT NULL DEFAULT 0,
				status        VARCHAR(16)   NOT NULL,
				start_date    DATE          NOT NULL,
				churned_at    TIMESTAMPTZ,
				created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
				updated_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		Version: 4,
		Name:    "analytics_snapshots",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS analytics_snapshots (
				id           BIGSERIAL    PRIMARY KEY,
				period       CHAR(7)      NOT NULL,
				period_start DATE         NOT NULL,
				filters_key  VARCHAR(512) NOT NULL,
				filters      JSONB        NOT NULL,
				result       JSONB        NOT NULL,
				created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
				updated_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
				UNIQUE (period, filters_key)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_analytics_snapshots_period_start ON analytics_snapshots (period_start)`,
		},
	},
}

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER     PRIMARY KEY,
	name       VARCHAR(64) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Apply executa, cada uma em sua transação, as migrações ainda não registradas.
// Retorna quantas foram aplicadas.
func Apply(ctx context.Context, conn postgres.Conn) (int, error) {
	if _, err := conn.ExecContext(ctx, createVersionTable); err != nil {
		return 0, fmt.Errorf("erro ao criar tabela de versões: %w", err)
	}

	current, err := currentVersion(ctx, conn)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}

		err := conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.Statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}

			query, args, err := squirrel.
				Insert("schema_migrations").
				Columns("version", "name").
				Values(m.Version, m.Name).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, query, args...)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("erro na migração %d (%s): %w", m.Version, m.Name, err)
		}

		logrus.WithFields(logrus.Fields{
			"version": m.Version,
			"name":    m.Name,
		}).Info("Migração aplicada")
		applied++
	}

	return applied, nil
}

func currentVersion(ctx context.Context, conn postgres.Queryer) (int, error) {
	var version int
	err := conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("erro ao consultar versão do schema: %w", err)
	}
	return version, nil
}
