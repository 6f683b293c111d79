package middleware

import (
	"bytes"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/points_ledger/internal/logging"
)

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(logging.RequestID(c.UserContext()))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(requestIDHeader)
	assert.NotEmpty(t, generated)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, generated, body.String())

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "client-supplied")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "client-supplied", resp.Header.Get(requestIDHeader))
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Post("/spend", RateLimit(cache, "spend", 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/spend", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/spend", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Positive(t, mr.TTL(keys[0]))
}

func TestRateLimitRestoresMissingExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Post("/spend", RateLimit(cache, "spend", 5), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/spend", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	key := keys[0]

	// Leave a counter behind with no TTL, as after a failed EXPIRE.
	mr.Del(key)
	require.NoError(t, mr.Set(key, "1"))
	require.Zero(t, mr.TTL(key))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/spend", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Positive(t, mr.TTL(key))

	count, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestRateLimitDisabled(t *testing.T) {
	app := fiber.New()
	app.Post("/spend", RateLimit(nil, "spend", 1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/spend", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestAuditLogsRejectedRequests(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logging.NewWithWriter(&buf, "info")))
	app.Post("/spend", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request: Not enough points")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/spend", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status":400`)
	assert.Contains(t, out, "Not enough points")
	assert.Contains(t, out, `"request_id"`)
}
