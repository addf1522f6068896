package api

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/bitfsorg/pact-go/ledger"
	"github.com/bitfsorg/pact-go/metrics"
)

// HealthCheck reports whether a dependency is reachable. A nil check is skipped.
type HealthCheck func(ctx context.Context) error

// RegisterRoutes mounts the dispatch routes on app.
func RegisterRoutes(app *fiber.App, h *Handler, limiter *CallerLimiter, checks map[string]HealthCheck) {
	app.Use(requestMetrics())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		results := map[string]string{}
		status := "ok"
		code := fiber.StatusOK

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	})

	v1 := app.Group("/api/v1", RateLimit(limiter))

	v1.Post("/trades", h.CreateTrade)
	v1.Get("/trades/:id", h.GetTrade)
	v1.Post("/trades/:id/fund", h.MarkFunded)
	v1.Post("/trades/:id/deliver", h.ConfirmDelivery)
	v1.Post("/trades/:id/cancel", h.CancelTrade)

	v1.Post("/streams", h.CreateStream)
	v1.Get("/streams/:id", h.GetStream)
	v1.Post("/streams/:id/toggle", h.ToggleStream)
	v1.Get("/streams/:id/recipients", h.GetRecipients)
	v1.Get("/streams/:id/shares", h.CalcShares)
}

// RateLimit rejects requests with 429 once the caller's bucket is empty.
func RateLimit(limiter *CallerLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(limitKey(c), time.Now()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "rate limit exceeded",
				Kind:  "rate_limited",
			})
		}
		return c.Next()
	}
}

func requestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		route := c.Route().Path
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Response().StatusCode())).Inc()
		return err
	}
}

// limitKey buckets by the caller's public-key hash, so every encoding of one
// address shares a bucket. Missing or unparsable callers are keyed by remote IP.
func limitKey(c *fiber.Ctx) string {
	if addr, err := ledger.ParseAddress(c.Get(CallerHeader)); err == nil {
		return "addr:" + hex.EncodeToString(addr[:])
	}
	return "ip:" + c.IP()
}
