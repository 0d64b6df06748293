package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/enterprise/ga-view-proxy/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The function handlers are built once per process, so every case shares
// the environment set up here.
func TestFunctionEntrypoints(t *testing.T) {
	t.Setenv("GA_VIEW_ID", "")
	t.Setenv("GA_SECRETS_SOURCE", "env")
	t.Setenv("GA_API_TOKEN", "function-token")
	t.Setenv("LOG_OUTPUT", "discard")

	t.Run("net/http unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ServeFunction(report.KindOrigin, rec, httptest.NewRequest(http.MethodGet, "/api/origin", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("net/http view not set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ad", nil)
		req.Header.Set("Authorization", "Bearer function-token")
		rec := httptest.NewRecorder()

		ServeFunction(report.KindAd, rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"GA_VIEW_ID not set"}`, rec.Body.String())
	})

	t.Run("lambda preflight", func(t *testing.T) {
		resp, err := LambdaFunction(report.KindOrigin)(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodOptions,
			Headers:    map[string]string{"origin": "https://example.com"},
		})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "https://example.com", resp.Headers["Access-Control-Allow-Origin"])
		assert.Empty(t, resp.Body)
	})

	handlers, err := FunctionHandlers()
	require.NoError(t, err)
	again, err := FunctionHandlers()
	require.NoError(t, err)
	assert.Same(t, handlers, again)
}

func TestFunctionHost_BuildFailure(t *testing.T) {
	builds := 0
	host := &functionHost{build: func() (*Handlers, error) {
		builds++
		return nil, errors.New("unknown secrets source \"vault\"")
	}}

	t.Run("net/http preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/origin", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")
		rec := httptest.NewRecorder()

		host.serveHTTP(report.KindOrigin, rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "31536000", rec.Header().Get("Access-Control-Max-Age"))
		assert.Zero(t, rec.Body.Len())
	})

	t.Run("net/http get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/origin", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()

		host.serveHTTP(report.KindOrigin, rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.JSONEq(t, `{"error":"Something went wrong"}`, rec.Body.String())
	})

	t.Run("lambda preflight", func(t *testing.T) {
		resp, err := host.lambda(report.KindAd)(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: "options",
			Headers:    map[string]string{"origin": "https://example.com"},
		})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "https://example.com", resp.Headers["Access-Control-Allow-Origin"])
		assert.Empty(t, resp.Body)
	})

	t.Run("lambda get", func(t *testing.T) {
		resp, err := host.lambda(report.KindAd)(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodGet,
			Headers:    map[string]string{"origin": "https://example.com"},
		})
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "https://example.com", resp.Headers["Access-Control-Allow-Origin"])
		assert.JSONEq(t, `{"error":"Something went wrong"}`, resp.Body)
	})

	assert.Equal(t, 1, builds)
}
