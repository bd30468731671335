package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"userkeeper/internal/handler"
)

func TestRegister_Routes(t *testing.T) {
	e := echo.New()
	Register(e, zap.NewNop(), handler.NewUserHandler(nil, nil))

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /healthz",
		"GET /swagger/*",
		"POST /api/users",
		"POST /api/users/bulk",
		"GET /api/users",
		"GET /api/users/search",
		"GET /api/users/:id",
		"PUT /api/users/:id",
		"DELETE /api/users/:id",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.NotNil(t, e.Validator)
}

func TestRegister_HealthzIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	Register(e, zap.New(core), handler.NewUserHandler(nil, nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "/healthz", ctx["uri"])
		assert.Equal(t, int64(http.StatusOK), ctx["status"])
		assert.NotEmpty(t, ctx["request_id"])
	}
}
