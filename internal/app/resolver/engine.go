package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/relinkd/relink/internal/app/model"
	"github.com/relinkd/relink/internal/app/repository"
	"go.uber.org/zap"
)

// LinkLoader is the engine's only outbound dependency with I/O: a point
// lookup of a link record by short code or alias.
type LinkLoader interface {
	Load(ctx context.Context, code string) (*model.Link, error)
}

// UnlockTokenValidator checks a previously issued unlock token so a visitor
// who already passed the password challenge is not re-challenged on every
// hit. Optional; without one every gated request needs a password.
type UnlockTokenValidator interface {
	Validate(code, token string) error
}

// Metrics receives resolution observations. Implementations must be safe
// for concurrent use.
type Metrics interface {
	Resolution(status Status)
	StoreError()
}

type nopMetrics struct{}

func (nopMetrics) Resolution(Status) {}
func (nopMetrics) StoreError()       {}

// Request carries everything one resolution needs. Now is captured once at
// the edge and threaded through every stage so a single request sees one
// consistent instant, even across a DST boundary mid-flight.
type Request struct {
	Code        string
	Now         time.Time
	Device      model.DeviceClass
	Password    string
	UnlockToken string
}

// Deps groups the engine's collaborators.
type Deps struct {
	Loader    LinkLoader
	Passwords PasswordVerifier
	Tokens    UnlockTokenValidator
	Metrics   Metrics
	Logger    *zap.Logger
}

// Engine runs the full resolution pipeline: load, availability gate,
// destination resolution, access gate. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	loader    LinkLoader
	passwords PasswordVerifier
	tokens    UnlockTokenValidator
	metrics   Metrics
	logger    *zap.Logger
}

// New creates an Engine with the provided dependencies.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Engine{
		loader:    deps.Loader,
		passwords: deps.Passwords,
		tokens:    deps.Tokens,
		metrics:   metrics,
		logger:    logger,
	}
}

// Resolve decides the outcome for one visit. It is side-effect free apart
// from logging and metrics, so it also serves preview ("inspect without
// redirecting") requests unchanged. Business outcomes are values; the only
// error path is loader transport failure, which collapses to NotFound for
// the visitor while the distinction is kept for operators.
func (e *Engine) Resolve(ctx context.Context, req Request) Result {
	link, err := e.loader.Load(ctx, req.Code)
	if err != nil {
		if !errors.Is(err, repository.ErrLinkNotFound) {
			e.metrics.StoreError()
			e.logger.Error("link store lookup failed",
				zap.String("code", req.Code), zap.Error(err))
		}
		return e.observe(Result{Status: StatusNotFound})
	}

	switch CheckAvailability(link, req.Now) {
	case Suspended:
		return e.observe(Result{Status: StatusSuspended})
	case Gone:
		return e.observe(Result{Status: StatusGone})
	case NotYetActive:
		return e.observe(Result{Status: StatusNotYetActive})
	}

	url := ResolveDestination(link, req.Now, req.Device)

	// Tokens are bound to the code the visitor actually used (which may be
	// the custom alias), matching how the unlock cookie was issued.
	if link.PasswordProtected() && req.Password == "" &&
		req.UnlockToken != "" && e.tokens != nil {
		if e.tokens.Validate(req.Code, req.UnlockToken) == nil {
			return e.observe(Redirect(url))
		}
	}

	return e.observe(CheckAccess(link, url, req.Password, e.passwords))
}

func (e *Engine) observe(res Result) Result {
	e.metrics.Resolution(res.Status)
	return res
}
