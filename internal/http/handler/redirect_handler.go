package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/relinkd/relink/internal/app/model"
	"github.com/relinkd/relink/internal/app/resolver"
	"github.com/relinkd/relink/internal/app/service"
	"github.com/relinkd/relink/internal/http/useragent"
	httpUtil "github.com/relinkd/relink/internal/http/util"
	"github.com/relinkd/relink/internal/http/view"
	"go.uber.org/zap"
)

const unlockCookiePrefix = "relink_unlock_"

// RedirectDeps groups dependencies required by the redirect handlers.
type RedirectDeps struct {
	Logger *zap.Logger
	Engine *resolver.Engine
	Unlock *httpUtil.UnlockSigner
	Visits *service.VisitPublisher
	// Permanent switches the reveal response from 302 to 301. Kept off by
	// default so destination edits are not pinned by browser caches.
	Permanent bool
}

// RedirectHandler serves the visitor-facing resolution flow: redirect,
// password challenge, unlock retry, and the side-effect-free preview.
type RedirectHandler struct {
	logger    *zap.Logger
	engine    *resolver.Engine
	unlock    *httpUtil.UnlockSigner
	visits    *service.VisitPublisher
	permanent bool
}

// NewRedirectHandler creates a redirect handler with the provided
// dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:    logger,
		engine:    deps.Engine,
		unlock:    deps.Unlock,
		visits:    deps.Visits,
		permanent: deps.Permanent,
	}
}

// Register wires the visitor routes onto the provided router. The unlock
// route is registered separately in the server so it can carry its own rate
// limiter.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/:code", h.Resolve)
	router.Get("/:code/preview", h.Preview)
}

// RegisterUnlock wires the password retry route, typically behind a rate
// limiter.
func (h *RedirectHandler) RegisterUnlock(router fiber.Router, limiter fiber.Handler) {
	if limiter != nil {
		router.Post("/:code/unlock", limiter, h.Unlock)
		return
	}
	router.Post("/:code/unlock", h.Unlock)
}

// Health is a simple root endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "relink-resolver",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Resolve handles GET /:code.
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	code := c.Params("code")
	if !validCode(code) {
		return h.notFound(c)
	}

	req := resolver.Request{
		Code:        code,
		Now:         time.Now().UTC(),
		Device:      useragent.Classify(c.Get("User-Agent")),
		UnlockToken: c.Cookies(unlockCookiePrefix + code),
	}

	res := h.engine.Resolve(h.userContext(c), req)
	h.publishVisit(code, res.Status, req.Device, c)
	return h.respond(c, code, res)
}

// Unlock handles POST /:code/unlock, the password challenge retry.
func (h *RedirectHandler) Unlock(c *fiber.Ctx) error {
	code := c.Params("code")
	if !validCode(code) {
		return h.notFound(c)
	}

	var body struct {
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&body); err != nil || body.Password == "" {
		// An empty retry re-renders the challenge rather than erroring.
		return h.respond(c, code, resolver.Result{Status: resolver.StatusPasswordRequired})
	}

	req := resolver.Request{
		Code:     code,
		Now:      time.Now().UTC(),
		Device:   useragent.Classify(c.Get("User-Agent")),
		Password: body.Password,
	}

	res := h.engine.Resolve(h.userContext(c), req)
	h.publishVisit(code, res.Status, req.Device, c)

	if res.Status == resolver.StatusRedirect {
		h.setUnlockCookie(c, code)
	}
	return h.respond(c, code, res)
}

// Preview handles GET /:code/preview: resolve without redirecting and
// without emitting a visit event. The destination stays hidden while the
// link is password gated.
func (h *RedirectHandler) Preview(c *fiber.Ctx) error {
	code := c.Params("code")
	if !validCode(code) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "short link not found",
		})
	}

	req := resolver.Request{
		Code:   code,
		Now:    time.Now().UTC(),
		Device: useragent.Classify(c.Get("User-Agent")),
	}

	res := h.engine.Resolve(h.userContext(c), req)

	payload := fiber.Map{
		"code":   code,
		"status": string(res.Status),
	}
	if res.Status == resolver.StatusRedirect {
		payload["url"] = res.URL
	}
	return c.JSON(payload)
}

// respond maps an engine result onto the HTTP response contract. Gone and
// NotYetActive read as 404 on purpose: visitors must not be able to tell an
// expired link from one that never existed, and scheduled links must look
// nonexistent before launch.
func (h *RedirectHandler) respond(c *fiber.Ctx, code string, res resolver.Result) error {
	switch res.Status {
	case resolver.StatusRedirect:
		status := fiber.StatusFound
		if h.permanent {
			status = fiber.StatusMovedPermanently
		}
		h.logger.Debug("redirecting short link",
			zap.String("code", code), zap.String("target", res.URL))
		return c.Redirect(res.URL, status)

	case resolver.StatusSuspended:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "link unavailable",
		})

	case resolver.StatusPasswordRequired:
		return h.renderChallenge(c, code, false)

	case resolver.StatusUnauthorized:
		return h.renderChallenge(c, code, true)

	default: // not_found, gone, not_yet_active
		return h.notFound(c)
	}
}

func (h *RedirectHandler) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "short link not found",
	})
}

func (h *RedirectHandler) renderChallenge(c *fiber.Ctx, code string, failed bool) error {
	html, err := view.RenderChallengePage(view.ChallengePageData{
		Code:      code,
		ActionURL: "/" + code + "/unlock",
		Failed:    failed,
	})
	if err != nil {
		h.logger.Error("failed to render challenge page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}

	return c.Status(fiber.StatusForbidden).
		Type("html", "utf-8").
		SendString(html)
}

func (h *RedirectHandler) setUnlockCookie(c *fiber.Ctx, code string) {
	if h.unlock == nil {
		return
	}
	token, err := h.unlock.Issue(code)
	if err != nil {
		h.logger.Warn("failed to issue unlock token",
			zap.String("code", code), zap.Error(err))
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     unlockCookiePrefix + code,
		Value:    token,
		Expires:  time.Now().Add(h.unlock.TTL()),
		Path:     "/" + code,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *RedirectHandler) publishVisit(code string, status resolver.Status, device model.DeviceClass, c *fiber.Ctx) {
	if h.visits == nil {
		return
	}
	ip := c.IP()
	ua := c.Get("User-Agent")
	go func() {
		if err := h.visits.Publish(code, string(status), device, ip, ua); err != nil {
			h.logger.Error("failed to publish visit event",
				zap.Error(err), zap.String("code", code))
		}
	}()
}

func (h *RedirectHandler) userContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// validCode enforces the short code charset. Anything outside it cannot
// exist, so it never reaches storage.
func validCode(code string) bool {
	if code == "" || len(code) > 64 {
		return false
	}
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_':
		default:
			return false
		}
	}
	return true
}
