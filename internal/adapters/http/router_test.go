package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerline/peerline/internal/adapters/signal"
	"github.com/peerline/peerline/internal/config"
)

func TestHealthzAndTokenCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Mode: "test", Secret: "s3cret"}
	r := SetupRouter(context.Background(), cfg, signal.NewServer(signal.Options{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	found := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "peerline" && ck.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "session cookie not issued")
}

func TestClientTokenStableAcrossRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("peerline", cookie.NewStore([]byte("s3cret"))))
	r.Use(ClientTokenMiddleware())

	var seen []string
	r.GET("/probe", func(c *gin.Context) {
		seen = append(seen, c.GetString("client_token"))
		c.Status(http.StatusNoContent)
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/probe", nil))
	require.Equal(t, http.StatusNoContent, w1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for _, ck := range w1.Result().Cookies() {
		req2.AddCookie(ck)
	}
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.Equal(t, seen[0], seen[1], "token changed between requests")
}
