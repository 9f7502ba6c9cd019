package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bedrock-kb-api/internal/conf"
	"bedrock-kb-api/internal/kb/service"
	"bedrock-kb-api/internal/pkg/logger"
)

// HTTPServer wraps the Gin engine and the underlying http.Server so the
// entrypoint can start and stop them as a unit.
type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	log    *logger.Logger
}

// NewHTTPServer builds the router, installs middleware and registers the
// knowledge base routes at the root path.
func NewHTTPServer(cfg *conf.Config, kbService *service.KnowledgeBaseService, log *logger.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(logger.GinRecovery(log))
	engine.Use(logger.GinLogger(log))
	engine.Use(cors.New(corsConfig(cfg.CORS)))

	kbService.RegisterRoutes(engine)

	return &HTTPServer{
		engine: engine,
		server: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		log: log,
	}
}

func corsConfig(cfg conf.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}

	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowOrigins
	return c
}

// Start blocks serving HTTP until the listener fails or Stop is called.
func (s *HTTPServer) Start() error {
	s.log.Info("http server listening on " + s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}
