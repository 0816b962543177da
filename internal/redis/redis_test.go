package redis

import (
	"context"
	"testing"
	"time"

	"memora/internal/domain/response"
	"memora/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRateLimiterWindow(t *testing.T) {
	mr, c := newTestClient(t)
	rl := NewRateLimiter(c, RateLimitConfig{RequestLimit: 2, RequestWindow: time.Minute, WriteLimit: 1, WriteWindow: time.Minute})
	ctx := context.Background()

	for i, wantRemaining := range []int{1, 0} {
		res, err := rl.AllowRequest(ctx, "10.0.0.1")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed || res.Remaining != wantRemaining {
			t.Errorf("request %d: %+v", i, res)
		}
	}
	res, err := rl.AllowRequest(ctx, "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed || res.ResetIn <= 0 {
		t.Errorf("expected third request to be limited with a reset time, got %+v", res)
	}

	if res, _ := rl.AllowRequest(ctx, "10.0.0.2"); !res.Allowed {
		t.Error("limits must be per IP")
	}
	if res, _ := rl.AllowWrite(ctx, "10.0.0.1"); !res.Allowed {
		t.Error("write budget is separate from the request budget")
	}

	mr.FastForward(61 * time.Second)
	if res, _ := rl.AllowRequest(ctx, "10.0.0.1"); !res.Allowed {
		t.Error("expected the window to reset")
	}

	if res, _ := rl.AllowWrite(ctx, "user-1"); !res.Allowed {
		t.Error("expected first write to pass")
	}
	if res, _ := rl.AllowWrite(ctx, "user-1"); res.Allowed {
		t.Error("expected second write to be limited")
	}
	if err := rl.Reset(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}
	if res, _ := rl.AllowWrite(ctx, "user-1"); !res.Allowed {
		t.Error("expected reset to clear the write budget")
	}
}

func TestThreadCacheGenerations(t *testing.T) {
	mr, c := newTestClient(t)
	cache := NewThreadCache(c, time.Minute, logger.NewNop())
	ctx := context.Background()
	promptID := uuid.New()

	_, gen, ok := cache.Load(ctx, promptID)
	if ok || gen != 0 {
		t.Fatalf("expected empty cache at generation 0, got ok=%v gen=%d", ok, gen)
	}

	tree := []*response.Response{{ID: uuid.New(), Text: "root", UpvotesCount: 2, Replies: []*response.Response{{ID: uuid.New(), Text: "reply", Depth: 1, Replies: []*response.Response{}}}}}
	cache.Store(ctx, promptID, gen, tree)

	got, _, ok := cache.Load(ctx, promptID)
	if !ok || len(got) != 1 || got[0].Text != "root" || got[0].Replies[0].Text != "reply" {
		t.Fatalf("expected cached tree, got ok=%v %+v", ok, got)
	}

	cache.Invalidate(ctx, promptID)
	if _, gen, ok := cache.Load(ctx, promptID); ok || gen != 1 {
		t.Errorf("expected miss at generation 1 after invalidation, got ok=%v gen=%d", ok, gen)
	}

	// a tree built before the write lands under the old generation and stays unreachable
	cache.Store(ctx, promptID, 0, tree)
	if _, _, ok := cache.Load(ctx, promptID); ok {
		t.Error("stale generation must not be served")
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists(treeKey(promptID, 0)) {
		t.Error("expected old tree to expire")
	}
}

func TestThreadCacheFailuresAreMisses(t *testing.T) {
	mr, c := newTestClient(t)
	cache := NewThreadCache(c, time.Minute, logger.NewNop())
	ctx := context.Background()
	promptID := uuid.New()

	if err := mr.Set(treeKey(promptID, 0), "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := cache.Load(ctx, promptID); ok {
		t.Error("corrupt entries must read as misses")
	}

	mr.Close()
	_, gen, ok := cache.Load(ctx, promptID)
	if ok || gen >= 0 {
		t.Errorf("expected failed load with negative generation, got ok=%v gen=%d", ok, gen)
	}
	cache.Store(ctx, promptID, gen, nil)
	cache.Invalidate(ctx, promptID)
}
