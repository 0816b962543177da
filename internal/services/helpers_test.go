package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"memora/internal/commands"
	"memora/internal/domain/prompt"
	"memora/internal/domain/response"
	"memora/internal/domain/user"
	"memora/pkg/database"
	"memora/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tickClock advances one second per call so creation order is unambiguous.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// memoryCache is an in-process TreeCache with the same generation semantics as the redis one.
type memoryCache struct {
	mu    sync.Mutex
	gens  map[uuid.UUID]int64
	trees map[uuid.UUID]map[int64][]*response.Response
}

func newMemoryCache() *memoryCache {
	return &memoryCache{gens: map[uuid.UUID]int64{}, trees: map[uuid.UUID]map[int64][]*response.Response{}}
}

func (c *memoryCache) Load(ctx context.Context, id uuid.UUID) ([]*response.Response, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[id]
	tree, ok := c.trees[id][gen]
	return tree, gen, ok
}

func (c *memoryCache) Store(ctx context.Context, id uuid.UUID, gen int64, tree []*response.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trees[id] == nil {
		c.trees[id] = map[int64][]*response.Response{}
	}
	c.trees[id][gen] = tree
}

func (c *memoryCache) Invalidate(ctx context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
}

type testEnv struct {
	db          *gorm.DB
	clock       *tickClock
	cache       *memoryCache
	users       *UserService
	threads     *ThreadService
	polls       *PollService
	prompts     *PromptService
	communities *CommunityService
	reports     *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "services.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clock := &tickClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts := Options{Clock: clock.Now, Logger: logger.NewNop()}
	bus := commands.NewBus(commands.RequireActor())
	cache := newMemoryCache()

	env := &testEnv{db: db, clock: clock, cache: cache}
	env.users = NewUserService(db, opts)
	env.threads = NewThreadService(db, cache, bus, opts)
	env.polls = NewPollService(db, bus, opts)
	env.prompts = NewPromptService(db, env.threads, env.polls, bus, opts)
	env.communities = NewCommunityService(db, env.prompts, bus, opts)
	env.reports = NewReportService(db, bus, opts)
	return env
}

func identity(name string) user.Identity {
	return user.Identity{UID: "uid-" + name, Email: name + "@memora.dev", Name: name}
}

func (e *testEnv) textPrompt(t *testing.T, author user.Identity, title string) prompt.Prompt {
	t.Helper()
	p, err := e.prompts.Create(context.Background(), commands.CreatePromptCommand{
		Actor: author,
		Title: title,
		Type:  prompt.TypeText,
	})
	if err != nil {
		t.Fatalf("create text prompt: %v", err)
	}
	return p
}

func (e *testEnv) pollPrompt(t *testing.T, author user.Identity, options ...string) prompt.Prompt {
	t.Helper()
	p, err := e.prompts.Create(context.Background(), commands.CreatePromptCommand{
		Actor:   author,
		Title:   "Which one?",
		Type:    prompt.TypePoll,
		Options: options,
	})
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}
	return p
}

func (e *testEnv) respond(t *testing.T, p prompt.Prompt, author user.Identity, text string, parent *response.Response) response.Response {
	t.Helper()
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}
	r, err := e.threads.CreateResponse(context.Background(), p.ID, author, text, parentID)
	if err != nil {
		t.Fatalf("create response %q: %v", text, err)
	}
	return r
}

func (e *testEnv) setUpvotes(t *testing.T, id uuid.UUID, n int) {
	t.Helper()
	if err := e.db.Model(&response.Response{}).Where("id = ?", id).UpdateColumn("upvotes_count", n).Error; err != nil {
		t.Fatalf("set upvotes: %v", err)
	}
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func optionByText(t *testing.T, options []prompt.PollOption, text string) prompt.PollOption {
	t.Helper()
	for _, o := range options {
		if o.Text == text {
			return o
		}
	}
	t.Fatalf("option %q not found in %+v", text, options)
	return prompt.PollOption{}
}
