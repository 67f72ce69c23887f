package service

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"regexp"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/coderedlink/coderedlink/internal/apperr"
	"github.com/coderedlink/coderedlink/internal/model"
	"github.com/coderedlink/coderedlink/internal/repository"
)

func setupService(t *testing.T, opts Options) *LinkService {
	t.Helper()
	repo, err := repository.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewLinkService(repo, opts)
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected an application error, got %v", err)
	}
	if ae.StatusCode != status {
		t.Fatalf("status = %d, want %d (%s)", ae.StatusCode, status, ae.Message)
	}
}

func TestCreateGeneratesCode(t *testing.T) {
	svc := setupService(t, Options{})

	link, err := svc.Create(context.Background(), model.CreateLinkRequest{
		URL: "https://example.com/some/long/path",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !regexp.MustCompile(`^[A-Za-z0-9]{6}$`).MatchString(link.Code) {
		t.Errorf("generated code %q is not 6 alphanumeric characters", link.Code)
	}
	if link.ID == "" {
		t.Error("link should get an ID")
	}
	if link.TotalClicks != 0 {
		t.Errorf("total clicks = %d, want 0", link.TotalClicks)
	}
}

func TestCreateIsDeterministicWithSeededRand(t *testing.T) {
	a := setupService(t, Options{Rand: rand.New(rand.NewSource(11))})
	b := setupService(t, Options{Rand: rand.New(rand.NewSource(11))})

	la, err := a.Create(context.Background(), model.CreateLinkRequest{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	lb, err := b.Create(context.Background(), model.CreateLinkRequest{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if la.Code != lb.Code {
		t.Errorf("same seed produced different codes: %q vs %q", la.Code, lb.Code)
	}
}

func TestCreateWithCustomCode(t *testing.T) {
	svc := setupService(t, Options{})

	link, err := svc.Create(context.Background(), model.CreateLinkRequest{
		URL:  "https://example.com/b",
		Code: "promo1",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if link.Code != "promo1" {
		t.Errorf("code = %q, want promo1", link.Code)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := setupService(t, Options{})

	tests := []struct {
		name string
		req  model.CreateLinkRequest
	}{
		{"empty url", model.CreateLinkRequest{URL: ""}},
		{"relative url", model.CreateLinkRequest{URL: "bad"}},
		{"ftp url", model.CreateLinkRequest{URL: "ftp://example.com"}},
		{"short code", model.CreateLinkRequest{URL: "https://example.com", Code: "ab"}},
		{"long code", model.CreateLinkRequest{URL: "https://example.com", Code: "abcdefghijk"}},
		{"bad characters", model.CreateLinkRequest{URL: "https://example.com", Code: "no-dash"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			wantStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestCreateBadURLWinsOverCodeConflict(t *testing.T) {
	svc := setupService(t, Options{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com/b", Code: "promo1"}); err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	// Invalid URL and colliding code together: the URL error is reported.
	_, err := svc.Create(ctx, model.CreateLinkRequest{URL: "bad", Code: "promo1"})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestCreateCodeConflict(t *testing.T) {
	svc := setupService(t, Options{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com", Code: "taken1"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://other.example", Code: "taken1"})
	wantStatus(t, err, http.StatusConflict)
}

func TestDeletedCodeStaysReserved(t *testing.T) {
	svc := setupService(t, Options{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com", Code: "promo1"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, "promo1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com", Code: "promo1"})
	wantStatus(t, err, http.StatusConflict)
}

func TestDeletedCodeReusableWhenConfigured(t *testing.T) {
	svc := setupService(t, Options{ReuseDeleted: true})
	ctx := context.Background()

	if _, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com", Code: "promo1"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, "promo1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Reuse is allowed by config, but the permanent unique constraint on
	// the code column still blocks the insert while the old row exists.
	_, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com", Code: "promo1"})
	wantStatus(t, err, http.StatusConflict)
}

func TestGetRoundTrip(t *testing.T) {
	svc := setupService(t, Options{})
	ctx := context.Background()

	created, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com/a", Code: "round1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.Get(ctx, "round1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.TargetURL != "https://example.com/a" {
		t.Errorf("target = %s", got.TargetURL)
	}
	if got.TotalClicks != 0 {
		t.Errorf("total clicks = %d, want 0", got.TotalClicks)
	}
	if len(got.Clicks) != 0 {
		t.Errorf("clicks = %v, want empty", got.Clicks)
	}
	if got.ID != created.ID {
		t.Errorf("id changed between create and get")
	}
}

func TestGetUnknown(t *testing.T) {
	svc := setupService(t, Options{})

	_, err := svc.Get(context.Background(), "ghost1")
	wantStatus(t, err, http.StatusNotFound)
}

func TestDeleteHidesLink(t *testing.T) {
	svc := setupService(t, Options{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com", Code: "bye123"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, "bye123"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err := svc.Get(ctx, "bye123")
	wantStatus(t, err, http.StatusNotFound)

	_, err = svc.Resolve(ctx, "bye123")
	wantStatus(t, err, http.StatusNotFound)

	// Deleting again reports not found.
	wantStatus(t, svc.Delete(ctx, "bye123"), http.StatusNotFound)
}

func TestListNewestFirstWithCap(t *testing.T) {
	svc := setupService(t, Options{ListLimit: 2})
	ctx := context.Background()

	for _, code := range []string{"one111", "two222", "three3"} {
		if _, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com/" + code, Code: code}); err != nil {
			t.Fatalf("create %s failed: %v", code, err)
		}
		time.Sleep(5 * time.Millisecond) // distinct created_at ordering
	}

	links, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("list length = %d, want capped 2", len(links))
	}
	if links[0].Code != "three3" || links[1].Code != "two222" {
		t.Errorf("wrong order: %s, %s", links[0].Code, links[1].Code)
	}
}

func TestResolveReturnsActiveLink(t *testing.T) {
	svc := setupService(t, Options{})
	ctx := context.Background()

	created, err := svc.Create(ctx, model.CreateLinkRequest{URL: "https://example.com/b", Code: "promo1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	link, err := svc.Resolve(ctx, "promo1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if link.TargetURL != "https://example.com/b" {
		t.Errorf("target = %s", link.TargetURL)
	}
	if link.ID != created.ID {
		t.Error("resolve returned a different link")
	}
}
