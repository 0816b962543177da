package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"memora/config"
	"memora/internal/commands"
	"memora/internal/handler"
	"memora/internal/redis"
	"memora/internal/services"
	"memora/pkg/database"
	"memora/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
)

const testSecret = "server-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) *apiClient {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}

	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	log := logger.NewNop()
	opts := services.Options{Logger: log}
	bus := commands.NewBus(commands.RequireActor())
	threads := services.NewThreadService(db, redis.NewThreadCache(rc, time.Minute, log), bus, opts)
	polls := services.NewPollService(db, bus, opts)
	prompts := services.NewPromptService(db, threads, polls, bus, opts)
	communities := services.NewCommunityService(db, prompts, bus, opts)
	reports := services.NewReportService(db, bus, opts)

	cfg := &config.Config{AppPort: "0", AppMode: TestMode, CORSOrigins: []string{"http://localhost:5173"}}
	srv := New(cfg, log)
	srv.SetupRoutes(&Handlers{
		Prompts:     handler.NewPromptHandler(prompts, polls),
		Responses:   handler.NewResponseHandler(threads),
		Communities: handler.NewCommunityHandler(communities),
		Reports:     handler.NewReportHandler(reports),
		Health:      handler.NewHealthHandler(db),
	}, services.NewJWTVerifier(testSecret, "", ""), redis.NewRateLimiter(rc, redis.DefaultRateLimitConfig()))

	return &apiClient{t: t, engine: srv.Engine()}
}

func token(t *testing.T, email string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-" + email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// do sends body as JSON and decodes the envelope's data into out when non-nil.
func (a *apiClient) do(method, path, email string, body interface{}, out interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("Authorization", "Bearer "+token(a.t, email))
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	if out != nil && env.Success {
		if err := json.Unmarshal(env.Data, out); err != nil {
			a.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return w.Code, env
}

type node struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Depth        int    `json:"depth"`
	UpvotesCount int    `json:"upvotes_count"`
	Upvoted      bool   `json:"upvoted"`
	Replies      []node `json:"replies"`
}

type promptBody struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	BodyHTML    string  `json:"body_html"`
	UserVote    *string `json:"user_vote"`
	TotalVotes  int     `json:"total_votes"`
	PollOptions []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		VoteCount int    `json:"vote_count"`
	} `json:"poll_options"`
	Responses []node `json:"responses"`
}

func TestThreadEndpoints(t *testing.T) {
	api := newTestServer(t)

	var p promptBody
	code, env := api.do(http.MethodPost, "/api/prompts", "ada@memora.dev", map[string]interface{}{
		"title": "First concert?",
		"body":  "Tell us *everything*",
		"type":  "text",
	}, &p)
	if code != http.StatusCreated {
		t.Fatalf("create prompt: %d %+v", code, env)
	}

	var root node
	if code, env := api.do(http.MethodPost, "/api/responses", "bob@memora.dev", map[string]interface{}{
		"prompt_id": p.ID, "text": "Queen, 1986",
	}, &root); code != http.StatusCreated {
		t.Fatalf("create response: %d %+v", code, env)
	}
	var reply node
	if code, env := api.do(http.MethodPost, "/api/responses", "ada@memora.dev", map[string]interface{}{
		"prompt_id": p.ID, "text": "jealous", "parent_id": root.ID,
	}, &reply); code != http.StatusCreated || reply.Depth != 1 {
		t.Fatalf("create reply: %d %+v %+v", code, env, reply)
	}

	var upvote struct {
		Upvoted  bool `json:"upvoted"`
		NewCount int  `json:"new_count"`
	}
	if code, _ := api.do(http.MethodPost, "/api/responses/"+root.ID+"/upvote", "ada@memora.dev", nil, &upvote); code != http.StatusOK || !upvote.Upvoted || upvote.NewCount != 1 {
		t.Fatalf("upvote: %d %+v", code, upvote)
	}

	var tree struct {
		Responses []node `json:"responses"`
	}
	if code, _ := api.do(http.MethodGet, "/api/prompts/"+p.ID+"/responses", "ada@memora.dev", nil, &tree); code != http.StatusOK {
		t.Fatalf("thread: %d", code)
	}
	if len(tree.Responses) != 1 || !tree.Responses[0].Upvoted || len(tree.Responses[0].Replies) != 1 {
		t.Errorf("unexpected tree %+v", tree.Responses)
	}

	var detail promptBody
	if code, _ := api.do(http.MethodGet, "/api/prompts/"+p.ID, "", nil, &detail); code != http.StatusOK {
		t.Fatalf("detail: %d", code)
	}
	if detail.BodyHTML == "" || len(detail.Responses) != 1 || detail.Responses[0].Upvoted {
		t.Errorf("unexpected anonymous detail %+v", detail)
	}
}

func TestThreadEndpointErrors(t *testing.T) {
	api := newTestServer(t)

	var poll promptBody
	if code, env := api.do(http.MethodPost, "/api/prompts", "ada@memora.dev", map[string]interface{}{
		"title": "Pick", "type": "POLL", "options": []string{"a", "b"},
	}, &poll); code != http.StatusCreated {
		t.Fatalf("create poll: %d %+v", code, env)
	}

	tests := []struct {
		name   string
		method string
		path   string
		email  string
		body   interface{}
		status int
		code   string
	}{
		{"no token", http.MethodPost, "/api/responses", "", map[string]string{"prompt_id": poll.ID, "text": "x"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"respond to poll", http.MethodPost, "/api/responses", "bob@memora.dev", map[string]string{"prompt_id": poll.ID, "text": "x"}, http.StatusBadRequest, "INVALID_OPERATION"},
		{"bad uuid", http.MethodGet, "/api/prompts/nope", "", nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing prompt", http.MethodGet, "/api/prompts/00000000-0000-0000-0000-000000000001", "", nil, http.StatusNotFound, "NOT_FOUND"},
		{"missing thread", http.MethodGet, "/api/prompts/00000000-0000-0000-0000-000000000001/responses", "", nil, http.StatusNotFound, "NOT_FOUND"},
		{"missing response", http.MethodPost, "/api/responses/00000000-0000-0000-0000-000000000001/upvote", "bob@memora.dev", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad sort", http.MethodGet, "/api/prompts?sort=hot", "", nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"empty body", http.MethodPost, "/api/responses", "bob@memora.dev", nil, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := api.do(tt.method, tt.path, tt.email, tt.body, nil)
			if code != tt.status || env.Code != tt.code || env.Success {
				t.Errorf("got %d %+v, want %d %s", code, env, tt.status, tt.code)
			}
		})
	}
}

func TestDepthLimitOverHTTP(t *testing.T) {
	api := newTestServer(t)
	var p promptBody
	api.do(http.MethodPost, "/api/prompts", "ada@memora.dev", map[string]string{"title": "Deep", "type": "TEXT"}, &p)

	var parent node
	api.do(http.MethodPost, "/api/responses", "ada@memora.dev", map[string]string{"prompt_id": p.ID, "text": "d0"}, &parent)
	for depth := 1; depth <= 10; depth++ {
		var child node
		code, env := api.do(http.MethodPost, "/api/responses", "ada@memora.dev", map[string]string{"prompt_id": p.ID, "text": "deeper", "parent_id": parent.ID}, &child)
		if code != http.StatusCreated {
			t.Fatalf("depth %d: %d %+v", depth, code, env)
		}
		parent = child
	}
	code, env := api.do(http.MethodPost, "/api/responses", "ada@memora.dev", map[string]string{"prompt_id": p.ID, "text": "too deep", "parent_id": parent.ID}, nil)
	if code != http.StatusUnprocessableEntity || env.Code != "DEPTH_EXCEEDED" {
		t.Errorf("expected 422 DEPTH_EXCEEDED, got %d %+v", code, env)
	}
}

func TestPollEndpoints(t *testing.T) {
	api := newTestServer(t)

	var poll promptBody
	api.do(http.MethodPost, "/api/prompts", "ada@memora.dev", map[string]interface{}{
		"title": "Best season", "type": "POLL", "options": []string{"Spring", "Autumn"},
	}, &poll)
	spring, autumn := poll.PollOptions[0].ID, poll.PollOptions[1].ID

	var result struct {
		Options []struct {
			ID        string `json:"id"`
			VoteCount int    `json:"vote_count"`
		} `json:"options"`
		TotalVotes int `json:"total_votes"`
	}
	if code, env := api.do(http.MethodPost, "/api/prompts/"+poll.ID+"/vote", "bob@memora.dev", map[string]string{"option_id": spring}, &result); code != http.StatusOK || result.TotalVotes != 1 {
		t.Fatalf("vote: %d %+v %+v", code, env, result)
	}
	if code, _ := api.do(http.MethodPost, "/api/prompts/"+poll.ID+"/vote", "bob@memora.dev", map[string]string{"option_id": autumn}, &result); code != http.StatusOK || result.Options[0].ID != autumn || result.TotalVotes != 1 {
		t.Fatalf("switch: %d %+v", code, result)
	}

	var detail promptBody
	api.do(http.MethodGet, "/api/prompts/"+poll.ID, "bob@memora.dev", nil, &detail)
	if detail.UserVote == nil || *detail.UserVote != autumn {
		t.Errorf("expected user_vote %s, got %v", autumn, detail.UserVote)
	}

	if code, _ := api.do(http.MethodDelete, "/api/prompts/"+poll.ID+"/vote", "bob@memora.dev", nil, &result); code != http.StatusOK || result.TotalVotes != 0 {
		t.Fatalf("retract: %d %+v", code, result)
	}

	var text promptBody
	api.do(http.MethodPost, "/api/prompts", "ada@memora.dev", map[string]string{"title": "Words", "type": "TEXT"}, &text)
	code, env := api.do(http.MethodPost, "/api/prompts/"+text.ID+"/vote", "bob@memora.dev", map[string]string{"option_id": spring}, nil)
	if code != http.StatusBadRequest || env.Code != "INVALID_OPERATION" {
		t.Errorf("expected INVALID_OPERATION voting on text prompt, got %d %+v", code, env)
	}
}

func TestCommunityReportAndLikeEndpoints(t *testing.T) {
	api := newTestServer(t)

	var community struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	if code, env := api.do(http.MethodPost, "/api/communities", "ada@memora.dev", map[string]string{"name": "Gardeners", "slug": "gardeners"}, &community); code != http.StatusCreated {
		t.Fatalf("create community: %d %+v", code, env)
	}
	if code, env := api.do(http.MethodPost, "/api/communities", "ada@memora.dev", map[string]string{"name": "Again", "slug": "gardeners"}, nil); code != http.StatusConflict || env.Code != "CONFLICT" {
		t.Errorf("expected 409 on duplicate slug, got %d %+v", code, env)
	}

	var p promptBody
	api.do(http.MethodPost, "/api/prompts", "ada@memora.dev", map[string]string{"title": "Tomatoes", "type": "TEXT", "community_id": community.ID}, &p)

	var list struct {
		Prompts    []promptBody `json:"prompts"`
		Pagination struct {
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	if code, _ := api.do(http.MethodGet, "/api/communities/gardeners/prompts?sort=trending", "", nil, &list); code != http.StatusOK || list.Pagination.Total != 1 || list.Pagination.Pages != 1 {
		t.Errorf("community prompts: %d %+v", code, list)
	}

	if code, _ := api.do(http.MethodPatch, "/api/communities/gardeners", "ada@memora.dev", map[string]string{"name": "Growers"}, nil); code != http.StatusOK {
		t.Errorf("update community: %d", code)
	}

	var like struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	if code, _ := api.do(http.MethodPost, "/api/prompts/"+p.ID+"/like", "bob@memora.dev", nil, &like); code != http.StatusOK || !like.Liked || like.LikesCount != 1 {
		t.Errorf("like: %d %+v", code, like)
	}

	if code, env := api.do(http.MethodPost, "/api/reports", "bob@memora.dev", map[string]string{"resource_type": "prompt", "resource_id": p.ID, "reason": "off topic"}, nil); code != http.StatusCreated {
		t.Errorf("report: %d %+v", code, env)
	}
	var reports struct {
		Reports []struct {
			Reason string `json:"reason"`
		} `json:"reports"`
	}
	if code, _ := api.do(http.MethodGet, "/api/reports?resource_type=PROMPT&resource_id="+p.ID, "ada@memora.dev", nil, &reports); code != http.StatusOK || len(reports.Reports) != 1 {
		t.Errorf("list reports: %d %+v", code, reports)
	}

	if code, env := api.do(http.MethodDelete, "/api/prompts/"+p.ID, "bob@memora.dev", nil, nil); code != http.StatusForbidden || env.Code != "FORBIDDEN" {
		t.Errorf("expected 403 for non-author delete, got %d %+v", code, env)
	}
	if code, _ := api.do(http.MethodDelete, "/api/prompts/"+p.ID, "ada@memora.dev", nil, nil); code != http.StatusOK {
		t.Errorf("author delete: %d", code)
	}
}

func TestHealth(t *testing.T) {
	api := newTestServer(t)
	if code, env := api.do(http.MethodGet, "/health", "", nil, nil); code != http.StatusOK || !env.Success {
		t.Errorf("health: %d %+v", code, env)
	}
}
