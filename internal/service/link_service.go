package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coderedlink/coderedlink/internal/apperr"
	"github.com/coderedlink/coderedlink/internal/codegen"
	"github.com/coderedlink/coderedlink/internal/model"
	"github.com/coderedlink/coderedlink/internal/repository"
	"github.com/coderedlink/coderedlink/internal/validator"
)

// Options tunes code allocation and listing.
type Options struct {
	CodeLength   int        // length of generated codes
	CustomMin    int        // custom-code length bounds
	CustomMax    int
	MaxAttempts  int        // generation retries before giving up
	ReuseDeleted bool       // when true, soft-deleted codes may be claimed again
	ListLimit    int        // cap for List, 0 disables
	Rand         *rand.Rand // injected for deterministic tests; nil means time-seeded
}

// LinkService implements the link registry and the redirect resolution
// logic on top of the repository.
type LinkService struct {
	repo      *repository.Store
	validator *validator.LinkValidator
	opts      Options

	mu  sync.Mutex // guards rnd, which is not goroutine-safe
	rnd *rand.Rand
}

// NewLinkService creates a service with the given options. Zero-value
// options fall back to the canonical defaults (6-char generated codes,
// 4-8 custom codes, permanently reserved deleted codes).
func NewLinkService(repo *repository.Store, opts Options) *LinkService {
	if opts.CodeLength == 0 {
		opts.CodeLength = 6
	}
	if opts.CustomMin == 0 {
		opts.CustomMin = 4
	}
	if opts.CustomMax == 0 {
		opts.CustomMax = 8
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 5
	}

	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &LinkService{
		repo:      repo,
		validator: validator.New(opts.CustomMin, opts.CustomMax),
		opts:      opts,
		rnd:       rnd,
	}
}

// Create validates the target URL and the optional custom code, allocates a
// final code, and persists the link. Validation order is fixed: a bad URL is
// reported before any code conflict.
func (s *LinkService) Create(ctx context.Context, req model.CreateLinkRequest) (*model.Link, error) {
	if appErr := s.validator.ValidateURL(req.URL); appErr != nil {
		return nil, appErr
	}
	if appErr := s.validator.ValidateCustomCode(req.Code); appErr != nil {
		return nil, appErr
	}

	link := &model.Link{
		ID:        uuid.NewString(),
		TargetURL: req.URL,
		CreatedAt: time.Now().UTC(),
	}

	if req.Code != "" {
		if err := s.createWithCustomCode(ctx, link, req.Code); err != nil {
			return nil, err
		}
	} else {
		if err := s.createWithGeneratedCode(ctx, link); err != nil {
			return nil, err
		}
	}

	return link, nil
}

func (s *LinkService) createWithCustomCode(ctx context.Context, link *model.Link, code string) error {
	// Deleted codes stay reserved unless reuse is enabled; the namespace
	// only grows by default.
	inUse, err := s.repo.CodeInUse(ctx, code, !s.opts.ReuseDeleted)
	if err != nil {
		return fmt.Errorf("check code availability: %w", err)
	}
	if inUse {
		return apperr.CodeTaken(code)
	}

	link.Code = code
	err = s.repo.CreateLink(ctx, link)
	if errors.Is(err, repository.ErrDuplicateCode) {
		// Lost the check-then-create race; the constraint has the last word.
		return apperr.CodeTaken(code)
	}
	return err
}

func (s *LinkService) createWithGeneratedCode(ctx context.Context, link *model.Link) error {
	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		code := s.generate()

		inUse, err := s.repo.CodeInUse(ctx, code, !s.opts.ReuseDeleted)
		if err != nil {
			return fmt.Errorf("check code availability: %w", err)
		}
		if inUse {
			continue
		}

		link.Code = code
		err = s.repo.CreateLink(ctx, link)
		if errors.Is(err, repository.ErrDuplicateCode) {
			// Concurrent creation grabbed the same code between the check
			// and the insert; generate another.
			continue
		}
		return err
	}

	return fmt.Errorf("no unique code found after %d attempts", s.opts.MaxAttempts)
}

func (s *LinkService) generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codegen.Generate(s.opts.CodeLength, s.rnd)
}

// Get returns a visible link with its clicks ordered oldest-first.
func (s *LinkService) Get(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.repo.GetActiveByCodeWithClicks(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.LinkNotFound(code)
	}
	return link, err
}

// List returns active links, newest first, honoring the configured cap.
func (s *LinkService) List(ctx context.Context) ([]model.Link, error) {
	return s.repo.ListActive(ctx, s.opts.ListLimit)
}

// Delete soft-deletes a link. Absent and already-deleted links both report
// not found; there is no resurrection path.
func (s *LinkService) Delete(ctx context.Context, code string) error {
	err := s.repo.SoftDelete(ctx, code, time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.LinkNotFound(code)
	}
	return err
}

// Resolve returns the visible link for a code, for the redirect hot path.
// Soft-deleted links do not resolve.
func (s *LinkService) Resolve(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.repo.GetActiveByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.LinkNotFound(code)
	}
	return link, err
}
