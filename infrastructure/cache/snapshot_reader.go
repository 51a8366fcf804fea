// Package cache guarda em Redis as leituras da fonte de dados das análises.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/pipeline-analytics-api/internal/config"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	keyPrefix     = "pipeline"
	generationKey = keyPrefix + ":gen"
	defaultTTL    = 5 * time.Minute
)

// SnapshotReader decora outro domain.SnapshotReader com cache.
// As chaves carregam a geração atual; Invalidate avança a geração e as chaves antigas expiram pelo TTL.
// Uma leitura iniciada antes de uma escrita só pode gravar sob a geração antiga, que ninguém mais lê.
// Qualquer falha do Redis cai para a leitura direta.
type SnapshotReader struct {
	next   domain.SnapshotReader
	client redis.UniversalClient
	ttl    time.Duration
}

var _ domain.SnapshotReader = (*SnapshotReader)(nil)

func NewSnapshotReader(next domain.SnapshotReader, client redis.UniversalClient, ttl time.Duration) *SnapshotReader {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SnapshotReader{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

// NewClient cria o cliente Redis a partir da configuração
func NewClient(cfg config.Cache) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
}

func (c *SnapshotReader) FetchEntities(ctx context.Context, filters domain.Filters) ([]domain.PipelineEntity, error) {
	return cached(ctx, c, "entities", filters.Key(), func() ([]domain.PipelineEntity, error) {
		return c.next.FetchEntities(ctx, filters)
	})
}

func (c *SnapshotReader) FetchHistory(ctx context.Context, entityIDs []string) ([]domain.StageHistoryRecord, error) {
	ids := append([]string(nil), entityIDs...)
	sort.Strings(ids)

	return cached(ctx, c, "history", strings.Join(ids, ","), func() ([]domain.StageHistoryRecord, error) {
		return c.next.FetchHistory(ctx, entityIDs)
	})
}

func (c *SnapshotReader) FetchDeals(ctx context.Context, filters domain.Filters) ([]domain.Deal, error) {
	return cached(ctx, c, "deals", filters.Key(), func() ([]domain.Deal, error) {
		return c.next.FetchDeals(ctx, filters)
	})
}

// Invalidate descarta todas as leituras em cache avançando a geração
func (c *SnapshotReader) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("erro ao avançar geração do cache: %w", err)
	}
	return nil
}

func (c *SnapshotReader) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func cacheKey(gen int64, op, raw string) string {
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%d:%s:%s", keyPrefix, gen, op, hex.EncodeToString(sum[:]))
}

func cached[T any](ctx context.Context, c *SnapshotReader, op, raw string, load func() ([]T, error)) ([]T, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"op":    op,
			"error": err,
		}).Warn("Falha ao ler geração do cache, usando a fonte de dados")
		return load()
	}

	key := cacheKey(gen, op, raw)
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(payload, &out); err == nil {
			return out, nil
		}
		logrus.WithField("key", key).Warn("Conteúdo inválido no cache, recarregando")
	case !errors.Is(err, redis.Nil):
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Warn("Falha ao ler cache, usando a fonte de dados")
	}

	out, err := load()
	if err != nil {
		return nil, err
	}

	payload, err = json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Warn("Falha ao gravar cache")
	}

	return out, nil
}
