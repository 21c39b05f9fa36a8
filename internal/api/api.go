package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/smartbrain/smartbrain/internal/api/handler"
	"github.com/smartbrain/smartbrain/internal/config"
	"github.com/smartbrain/smartbrain/internal/engine"
)

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	engine    *engine.Engine
}

func New(cfg *config.Config, eng *engine.Engine, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{
		cfg:       cfg,
		ginEngine: gin.Default(),
		engine:    eng,
	}
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.ginEngine.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	h := handler.New(s.engine)

	s.ginEngine.POST("/signin", h.SignIn)
	s.ginEngine.POST("/register", h.Register)
	s.ginEngine.GET("/profile/:id", h.Profile)
	s.ginEngine.POST("/generate-image", h.GenerateImage)
}

func (s *Server) Run() error {
	s.setupRoutes()

	return s.ginEngine.Run(s.cfg.Listen)
}
