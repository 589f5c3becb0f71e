package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperr"
)

func TestMetricsCountsByRouteAndStatus(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := apperr.As(err); ok {
				return c.SendStatus(appErr.Status())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Use(Metrics())
	app.Get("/metrics-test/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return apperr.NotFound("not found")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	ok := httpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/:id", "200")
	notFound := httpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/:id", "404")
	okBefore, notFoundBefore := testutil.ToFloat64(ok), testutil.ToFloat64(notFound)

	for _, id := range []string{"a", "b", "missing"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics-test/"+id, nil), -1)
		require.NoError(t, err)
	}

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, notFoundBefore+1, testutil.ToFloat64(notFound))
}
