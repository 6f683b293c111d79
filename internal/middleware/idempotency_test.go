package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/points_ledger/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *miniredis.Miniredis, *int32) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	var calls int32
	app := fiber.New()
	app.Use(RequestID())
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/spend", func(c *fiber.Ctx) error {
		n := atomic.AddInt32(&calls, 1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"call": n})
	})
	app.Post("/reject", func(c *fiber.Ctx) error {
		atomic.AddInt32(&calls, 1)
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request: Invalid points")
	})

	return app, mr, &calls
}

func post(t *testing.T, app *fiber.App, path, key string) (int, string) {
	t.Helper()
	return postBody(t, app, path, key, `{"points":100}`)
}

func postBody(t *testing.T, app *fiber.App, path, key, payload string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	app, _, calls := setupTestApp(t)

	post(t, app, "/spend", "")
	post(t, app, "/spend", "")

	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", got)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, _, calls := setupTestApp(t)

	status, first := post(t, app, "/spend", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}

	status, second := post(t, app, "/spend", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, status)
	}
	if second != first {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected handler to run once, ran %d times", got)
	}
}

func TestIdempotencyDoesNotCacheRejections(t *testing.T) {
	app, mr, calls := setupTestApp(t)

	for i := 0; i < 2; i++ {
		status, body := post(t, app, "/reject", "retry-me")
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 got %d", status)
		}
		if body != "Invalid request: Invalid points" {
			t.Fatalf("unexpected body %q", body)
		}
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", got)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no cached keys, got %v", keys)
	}
}

func TestIdempotencyInFlightConflict(t *testing.T) {
	app, mr, _ := setupTestApp(t)

	if err := mr.Set(idempotencyPrefix+"POST:/spend:busy", inProgressMarker); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	status, _ := post(t, app, "/spend", "busy")
	if status != fiber.StatusConflict {
		t.Fatalf("expected %d got %d", fiber.StatusConflict, status)
	}
}

func TestIdempotencyKeysAreScopedByRoute(t *testing.T) {
	app, _, calls := setupTestApp(t)

	post(t, app, "/spend", "shared")
	post(t, app, "/reject", "shared")

	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected both routes to run, ran %d times", got)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	app, _, calls := setupTestApp(t)

	status, _ := postBody(t, app, "/spend", "reused", `{"points":1000}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}

	status, _ = postBody(t, app, "/spend", "reused", `{"points":5000}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected status %d got %d", fiber.StatusUnprocessableEntity, status)
	}

	status, _ = postBody(t, app, "/spend", "reused", `{"points":1000}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected replay status %d got %d", fiber.StatusOK, status)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected handler to run once, ran %d times", got)
	}
}
