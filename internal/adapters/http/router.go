package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/githubayushraj/My-Lobby-Backend/internal/adapters/signal"
	"github.com/githubayushraj/My-Lobby-Backend/internal/app"
	"github.com/githubayushraj/My-Lobby-Backend/internal/app/orch"
	"github.com/githubayushraj/My-Lobby-Backend/internal/config"
)

const (
	sessionName    = "LobbySessions"
	clientTokenKey = "client_token"
)

type handlers struct {
	orch     *orch.Orchestrator
	meetings *app.MeetingService
	ice      []webrtc.ICEServer
}

// ClientTokenMiddleware gives every browser a stable token kept in the
// signed session cookie.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	o *orch.Orchestrator,
	ws *signal.SignalWSController,
	meetings *app.MeetingService,
	ice []webrtc.ICEServer,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	signalHandler := func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client_token", c.GetString(clientTokenKey)).Msg("ws signal endpoint hit")
		ws.HandleSignal(ctx, c)
	}
	r.GET("/signaling", signalHandler)

	h := &handlers{orch: o, meetings: meetings, ice: ice}
	api := r.Group("/api")
	api.GET("/ws/signal", signalHandler)
	api.POST("/meetings/create", h.createMeeting)
	api.GET("/meetings/join/:friendlyId", h.joinMeeting)
	api.POST("/janus/create-room", h.createMediaRoom)
	api.GET("/ice-servers", h.iceServers)
	api.GET("/rooms", h.rooms)
	api.GET("/stats", h.stats)

	return r
}
