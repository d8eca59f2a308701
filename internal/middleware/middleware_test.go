package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/utils"
)

func protected(secret string, roles ...model.Role) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": CurrentUserID(c), "role": CurrentRole(c)})
	}, JWTAuth(secret), RequireRole(roles...))
	return e
}

func call(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := protected("k", model.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, call(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, "junk").Code)

	cust, err := utils.NewAccessToken("k", "c1", model.RoleCustomer, time.Minute)
	require.NoError(t, err)
	rec := call(e, cust.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"c1","role":"customer"}`, rec.Body.String())

	owner, err := utils.NewAccessToken("k", "o1", model.RoleRestaurant, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(e, owner.Token).Code)
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(200, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, 200, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
}

func TestCacheKeyDependsOnPath(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}
	a := CacheKey(cfg, "GET", "/v1/restaurants/a/score-policy", "")
	b := CacheKey(cfg, "get", "/v1/restaurants/b/score-policy", "")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, CacheKey(cfg, "get", "/v1/restaurants/a/score-policy", ""))
	assert.Contains(t, a, "cache:")
}

func TestMiddlewaresPassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/reservations")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	assert.Equal(t, "rl:user:anon:route:POST /v1/reservations", rateKey(cfg, c))

	c.Set(ctxUserID, "c1")
	assert.Equal(t, "rl:user:c1:route:POST /v1/reservations", rateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.1", rateKey(cfg, c))
}
