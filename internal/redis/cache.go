package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"memora/internal/domain/response"
	"memora/pkg/logger"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache key patterns:
// - thread:{prompt_id}:gen - generation counter, bumped on every write to the thread
// - thread:{prompt_id}:v{gen} - assembled tree for that generation, TTL bound

// ThreadCache stores assembled response trees keyed by generation, so a tree
// built before a write can never be served after it. Failures are logged and
// treated as misses.
type ThreadCache struct {
	client *goredis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewThreadCache(client *goredis.Client, ttl time.Duration, log *logger.Logger) *ThreadCache {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &ThreadCache{client: client, ttl: ttl, log: log}
}

func genKey(promptID uuid.UUID) string {
	return fmt.Sprintf("thread:%s:gen", promptID)
}

func treeKey(promptID uuid.UUID, gen int64) string {
	return fmt.Sprintf("thread:%s:v%d", promptID, gen)
}

func (c *ThreadCache) generation(ctx context.Context, promptID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(promptID)).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return gen, err
}

func (c *ThreadCache) Load(ctx context.Context, promptID uuid.UUID) ([]*response.Response, int64, bool) {
	gen, err := c.generation(ctx, promptID)
	if err != nil {
		c.log.WarnCtx(ctx, "thread cache generation read failed", zap.String("prompt_id", promptID.String()), zap.Error(err))
		return nil, -1, false
	}

	data, err := c.client.Get(ctx, treeKey(promptID, gen)).Bytes()
	if err == goredis.Nil {
		return nil, gen, false
	}
	if err != nil {
		c.log.WarnCtx(ctx, "thread cache read failed", zap.String("prompt_id", promptID.String()), zap.Error(err))
		return nil, gen, false
	}

	var tree []*response.Response
	if err := json.Unmarshal(data, &tree); err != nil {
		c.log.WarnCtx(ctx, "thread cache entry corrupt", zap.String("prompt_id", promptID.String()), zap.Error(err))
		return nil, gen, false
	}
	return tree, gen, true
}

// Store writes tree under generation. Negative generations come from a
// failed Load and are never stored.
func (c *ThreadCache) Store(ctx context.Context, promptID uuid.UUID, generation int64, tree []*response.Response) {
	if generation < 0 {
		return
	}
	data, err := json.Marshal(tree)
	if err != nil {
		c.log.WarnCtx(ctx, "thread cache encode failed", zap.String("prompt_id", promptID.String()), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, treeKey(promptID, generation), data, c.ttl).Err(); err != nil {
		c.log.WarnCtx(ctx, "thread cache write failed", zap.String("prompt_id", promptID.String()), zap.Error(err))
	}
}

// Invalidate bumps the generation; older entries expire on their own.
func (c *ThreadCache) Invalidate(ctx context.Context, promptID uuid.UUID) {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey(promptID))
	pipe.Expire(ctx, genKey(promptID), c.ttl+time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.ErrorCtx(ctx, "thread cache invalidation failed", zap.String("prompt_id", promptID.String()), zap.Error(err))
	}
}
