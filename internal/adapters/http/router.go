// Package http assembles the gin surface in front of the signaling relay.
package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/peerline/peerline/internal/adapters/signal"
	"github.com/peerline/peerline/internal/config"
)

const tokenKey = "ct"

// ClientTokenMiddleware pins a stable identity on every client through
// the signed session store and exposes it as "client_token" for the
// signaling handler. Reconnects keep their peer id as long as the cookie
// survives.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(tokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set(tokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Str("module", "adapters.http").Err(err).Msg("session save")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires middleware and routes. ctx bounds the lifetime of
// every websocket accepted through the signal endpoint.
func SetupRouter(ctx context.Context, cfg *config.Config, srv *signal.Server) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("peerline", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		srv.Handle(ctx, c)
	})

	return r
}
