package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vampyr-backend/services"
)

func linkErrorStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return linkErrorResponse(c, err)
	})

	resp, reqErr := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, reqErr)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	return resp.StatusCode, string(body)
}

func TestLinkErrorResponseStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrPlayerNotFound, fiber.StatusNotFound},
		{services.ErrCodeInvalidOrExpired, fiber.StatusBadRequest},
		{services.ErrCodeAlreadyUsed, fiber.StatusConflict},
		{services.ErrPlayerAlreadyLinked, fiber.StatusConflict},
		{services.ErrStoreUnavailable, fiber.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		status, _ := linkErrorStatus(t, tc.err)
		assert.Equal(t, tc.status, status, "for %v", tc.err)
	}

	// Wrapped store failures keep their retryable status.
	status, _ := linkErrorStatus(t, fmt.Errorf("%w: dial tcp refused", services.ErrStoreUnavailable))
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestLinkErrorResponseHidesInternals(t *testing.T) {
	status, body := linkErrorStatus(t, errors.New("pq: connection refused at 10.0.0.3:5432"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, body, "10.0.0.3")
	assert.NotContains(t, body, "pq:")
}
