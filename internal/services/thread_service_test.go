package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"memora/internal/domain/prompt"
	"memora/internal/domain/response"
	"memora/internal/domain/user"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
)

func TestCreateResponseComputesDepth(t *testing.T) {
	env := newTestEnv(t)
	ada := identity("ada")
	p := env.textPrompt(t, ada, "Earliest memory")

	root := env.respond(t, p, ada, "Snow in the garden", nil)
	if root.Depth != 0 || root.ParentID != nil {
		t.Fatalf("expected top-level response at depth 0, got %+v", root)
	}
	if root.Author == nil || root.Author.Email != "ada@memora.dev" || root.UpvotesCount != 0 {
		t.Errorf("expected resolved author and zero upvotes, got %+v", root)
	}

	parent := root
	for want := 1; want <= response.MaxDepth; want++ {
		parent = env.respond(t, p, ada, "deeper", &parent)
		if parent.Depth != want {
			t.Fatalf("expected depth %d, got %d", want, parent.Depth)
		}
	}

	before := env.count(t, &response.Response{}, "")
	_, err := env.threads.CreateResponse(context.Background(), p.ID, ada, "too deep", &parent.ID)
	if !errors.Is(err, memora_errors.ErrDepthExceeded) {
		t.Fatalf("expected depth exceeded, got %v", err)
	}
	if after := env.count(t, &response.Response{}, ""); after != before {
		t.Errorf("rejected reply must not be stored: %d -> %d rows", before, after)
	}
}

func TestCreateResponseRejectsCrossPromptParent(t *testing.T) {
	env := newTestEnv(t)
	ada := identity("ada")
	a := env.textPrompt(t, ada, "Prompt A")
	b := env.textPrompt(t, ada, "Prompt B")
	onA := env.respond(t, a, ada, "on A", nil)

	_, err := env.threads.CreateResponse(context.Background(), b.ID, ada, "on B", &onA.ID)
	if !errors.Is(err, memora_errors.ErrInvalidOperation) {
		t.Fatalf("expected invalid operation, got %v", err)
	}
	if n := env.count(t, &response.Response{}, "prompt_id = ?", b.ID); n != 0 {
		t.Errorf("expected no response on B, got %d", n)
	}
}

func TestCreateResponseGuards(t *testing.T) {
	env := newTestEnv(t)
	ada := identity("ada")
	text := env.textPrompt(t, ada, "Text")
	poll := env.pollPrompt(t, ada, "Yes", "No")
	missing := uuid.New()

	tests := []struct {
		name     string
		promptID uuid.UUID
		parentID *uuid.UUID
		author   user.Identity
		text     string
		want     error
	}{
		{"poll prompt", poll.ID, nil, ada, "hi", memora_errors.ErrInvalidOperation},
		{"missing prompt", uuid.New(), nil, ada, "hi", memora_errors.ErrNotFound},
		{"missing parent", text.ID, &missing, ada, "hi", memora_errors.ErrNotFound},
		{"blank text", text.ID, nil, ada, "   ", memora_errors.ErrInvalidInput},
		{"markup only", text.ID, nil, ada, "<b></b>", memora_errors.ErrInvalidInput},
		{"too long", text.ID, nil, ada, strings.Repeat("x", 1001), memora_errors.ErrInvalidInput},
		{"anonymous", text.ID, nil, user.Identity{}, "hi", memora_errors.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.threads.CreateResponse(context.Background(), tt.promptID, tt.author, tt.text, tt.parentID)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if n := env.count(t, &response.Response{}, ""); n != 0 {
		t.Errorf("expected no stored responses, got %d", n)
	}
}

func TestCreateResponseSanitizesText(t *testing.T) {
	env := newTestEnv(t)
	ada := identity("ada")
	p := env.textPrompt(t, ada, "Text")

	r := env.respond(t, p, ada, "  <script>alert(1)</script>I remember <b>rain</b> & thunder  ", nil)
	if r.Text != "I remember rain & thunder" {
		t.Errorf("unexpected sanitized text %q", r.Text)
	}
}

func TestBuildTreeOrdering(t *testing.T) {
	env := newTestEnv(t)
	ada, bob := identity("ada"), identity("bob")
	p := env.textPrompt(t, ada, "Favourite place")

	a := env.respond(t, p, ada, "A", nil)
	b := env.respond(t, p, bob, "B", nil)
	c := env.respond(t, p, ada, "C", nil)
	x := env.respond(t, p, ada, "X", &b)
	y := env.respond(t, p, bob, "Y", &b)
	z := env.respond(t, p, bob, "Z", &x)

	env.setUpvotes(t, a.ID, 3)
	env.setUpvotes(t, b.ID, 7)
	env.setUpvotes(t, c.ID, 1)
	env.setUpvotes(t, y.ID, 50)

	tree, err := env.threads.BuildTree(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	if got := texts(tree); got != "B,A,C" {
		t.Fatalf("expected top level B,A,C, got %s", got)
	}
	if got := texts(tree[0].Replies); got != "X,Y" {
		t.Errorf("expected replies X,Y in creation order, got %s", got)
	}
	if got := texts(tree[0].Replies[0].Replies); got != "Z" || tree[0].Replies[0].Replies[0].ID != z.ID {
		t.Errorf("expected Z under X, got %s", got)
	}
	if len(tree[1].Replies) != 0 || tree[1].Replies == nil {
		t.Errorf("expected empty, non-nil replies for A")
	}
	if tree[0].Author == nil || tree[0].Author.Name != "bob" {
		t.Errorf("expected authors to be loaded, got %+v", tree[0].Author)
	}
}

func TestBuildTreeTiesKeepCreationOrder(t *testing.T) {
	env := newTestEnv(t)
	ada := identity("ada")
	p := env.textPrompt(t, ada, "Ties")
	first := env.respond(t, p, ada, "first", nil)
	second := env.respond(t, p, ada, "second", nil)
	env.respond(t, p, ada, "third", nil)
	env.setUpvotes(t, first.ID, 2)
	env.setUpvotes(t, second.ID, 2)

	tree, err := env.threads.BuildTree(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(tree); got != "first,second,third" {
		t.Errorf("expected stable tie order, got %s", got)
	}
}

func TestBuildTreeMissingPrompt(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.threads.BuildTree(context.Background(), uuid.New())
	if !errors.Is(err, memora_errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestBuildTreeCacheIsInvalidatedByWrites(t *testing.T) {
	env := newTestEnv(t)
	ada, bob := identity("ada"), identity("bob")
	p := env.textPrompt(t, ada, "Cached")
	first := env.respond(t, p, ada, "first", nil)

	tree, err := env.threads.BuildTree(context.Background(), p.ID)
	if err != nil || len(tree) != 1 {
		t.Fatalf("unexpected tree %v err %v", tree, err)
	}
	if _, _, ok := env.cache.Load(context.Background(), p.ID); !ok {
		t.Fatal("expected tree to be cached")
	}

	env.respond(t, p, bob, "second", nil)
	tree, err = env.threads.BuildTree(context.Background(), p.ID)
	if err != nil || len(tree) != 2 {
		t.Fatalf("expected fresh tree with 2 responses, got %d err %v", len(tree), err)
	}

	if _, err := env.threads.ToggleUpvote(context.Background(), first.ID, bob); err != nil {
		t.Fatal(err)
	}
	tree, err = env.threads.BuildTree(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if tree[0].ID != first.ID || tree[0].UpvotesCount != 1 {
		t.Errorf("expected upvoted response first with count 1, got %+v", tree[0])
	}
}

func TestToggleUpvoteTwiceRestoresState(t *testing.T) {
	env := newTestEnv(t)
	ada, bob := identity("ada"), identity("bob")
	p := env.textPrompt(t, ada, "Upvotes")
	r := env.respond(t, p, ada, "upvote me", nil)
	ctx := context.Background()

	on, err := env.threads.ToggleUpvote(ctx, r.ID, bob)
	if err != nil {
		t.Fatal(err)
	}
	if !on.Upvoted || on.NewCount != 1 {
		t.Errorf("expected upvoted with count 1, got %+v", on)
	}
	off, err := env.threads.ToggleUpvote(ctx, r.ID, bob)
	if err != nil {
		t.Fatal(err)
	}
	if off.Upvoted || off.NewCount != 0 {
		t.Errorf("expected removed with count 0, got %+v", off)
	}
	if n := env.count(t, &response.Upvote{}, "response_id = ?", r.ID); n != 0 {
		t.Errorf("expected no upvote rows, got %d", n)
	}

	if _, err := env.threads.ToggleUpvote(ctx, uuid.New(), bob); !errors.Is(err, memora_errors.ErrNotFound) {
		t.Errorf("expected not found for missing response, got %v", err)
	}
}

func TestToggleUpvoteCountsMatchRows(t *testing.T) {
	env := newTestEnv(t)
	ada := identity("ada")
	p := env.textPrompt(t, ada, "Many voters")
	r := env.respond(t, p, ada, "popular", nil)
	ctx := context.Background()

	voters := []string{"v1", "v2", "v3", "v4", "v5"}
	for _, v := range voters {
		if _, err := env.threads.ToggleUpvote(ctx, r.ID, identity(v)); err != nil {
			t.Fatal(err)
		}
	}
	res, err := env.threads.ToggleUpvote(ctx, r.ID, identity("v2"))
	if err != nil {
		t.Fatal(err)
	}
	rows := env.count(t, &response.Upvote{}, "response_id = ?", r.ID)
	if res.NewCount != 4 || rows != 4 {
		t.Errorf("expected counter and rows to agree at 4, got counter %d rows %d", res.NewCount, rows)
	}

	upvoted, err := env.threads.UpvotedBy(ctx, p.ID, identity("v1"))
	if err != nil || !upvoted[r.ID] {
		t.Errorf("expected v1 to have upvoted, got %v err %v", upvoted, err)
	}
	upvoted, err = env.threads.UpvotedBy(ctx, p.ID, identity("stranger"))
	if err != nil || len(upvoted) != 0 {
		t.Errorf("expected no upvotes for unknown user, got %v err %v", upvoted, err)
	}
}

func TestThreadScenarioWithCascadeDelete(t *testing.T) {
	env := newTestEnv(t)
	ada, bob, cy := identity("ada"), identity("bob"), identity("cy")
	ctx := context.Background()
	p := env.textPrompt(t, ada, "Scenario")

	root := env.respond(t, p, bob, "root", nil)
	reply := env.respond(t, p, cy, "reply", &root)
	env.respond(t, p, ada, "nested", &reply)
	for _, voter := range []user.Identity{ada, cy} {
		if _, err := env.threads.ToggleUpvote(ctx, root.ID, voter); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := env.threads.ToggleUpvote(ctx, reply.ID, ada); err != nil {
		t.Fatal(err)
	}

	detail, err := env.prompts.Get(ctx, p.ID, &ada)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Prompt.ResponseCount != 3 || len(detail.Responses) != 1 || detail.Responses[0].UpvotesCount != 2 {
		t.Fatalf("unexpected detail: count=%d tree=%d", detail.Prompt.ResponseCount, len(detail.Responses))
	}
	if !detail.Upvoted[root.ID] || !detail.Upvoted[reply.ID] {
		t.Errorf("expected viewer upvotes to be reported, got %v", detail.Upvoted)
	}

	if err := env.prompts.Delete(ctx, p.ID, bob); !errors.Is(err, memora_errors.ErrForbidden) {
		t.Fatalf("expected non-author delete to be forbidden, got %v", err)
	}
	if err := env.prompts.Delete(ctx, p.ID, ada); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := env.count(t, &response.Response{}, ""); n != 0 {
		t.Errorf("expected responses to cascade, %d left", n)
	}
	if n := env.count(t, &response.Upvote{}, ""); n != 0 {
		t.Errorf("expected upvotes to cascade, %d left", n)
	}
	if _, err := env.threads.BuildTree(ctx, p.ID); !errors.Is(err, memora_errors.ErrNotFound) {
		t.Errorf("expected deleted prompt to be gone from cache and store, got %v", err)
	}
	if n := env.count(t, &prompt.Prompt{}, ""); n != 0 {
		t.Errorf("expected prompt to be deleted, %d left", n)
	}
}

func texts(nodes []*response.Response) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.Text
	}
	return strings.Join(parts, ",")
}

func TestAssembleTreeSkipsOrphans(t *testing.T) {
	missing := uuid.New()
	root := response.Response{ID: uuid.New(), Text: "root"}
	orphan := response.Response{ID: uuid.New(), Text: "orphan", ParentID: &missing, Depth: 1}
	tree := assembleTree([]response.Response{root, orphan})
	if len(tree) != 1 || tree[0].Text != "root" || len(tree[0].Replies) != 0 {
		t.Errorf("unexpected tree %+v", tree)
	}
}
