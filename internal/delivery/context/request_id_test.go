package context

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"refugis/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestIdentityRoundTrip(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := GetIdentity(c)
	assert.False(t, ok)

	SetIdentity(c, entity.Identity{UserID: "u1", IsAdmin: true})
	identity, ok := GetIdentity(c)
	assert.True(t, ok)
	assert.Equal(t, "u1", identity.UserID)
	assert.True(t, identity.IsAdmin)
}

func TestLoggerOrDefault(t *testing.T) {
	fallback := slog.Default()
	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))

	scoped := fallback.With(slog.String("request_id", "r1"))
	ctx := WithLogger(WithRequestID(context.Background(), "r1"), scoped)
	assert.Same(t, scoped, GetLoggerOrDefault(ctx, fallback))
	assert.Equal(t, "r1", GetRequestIDFromContext(ctx))
}
