package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trivia-trens/trivia-monitora/services/api/config"
	"github.com/trivia-trens/trivia-monitora/services/api/db"
	"github.com/trivia-trens/trivia-monitora/services/api/fleet"
	"github.com/trivia-trens/trivia-monitora/services/api/levels"
	"github.com/trivia-trens/trivia-monitora/services/api/metrics"
	"github.com/trivia-trens/trivia-monitora/services/api/storage"
)

// Store is the data access the handlers need. *db.Store implements it.
type Store interface {
	GeneratorRows(ctx context.Context) ([]levels.RawAssetRecord, error)
	LocomotiveLevelRows(ctx context.Context) ([]levels.LocomotiveRow, error)
	LocomotiveRows(ctx context.Context) ([]levels.LocomotiveRow, error)
	ElevatorRows(ctx context.Context) ([]levels.ElevatorRow, error)
	Equipment(ctx context.Context, id string) (*db.EquipmentState, error)
	SetEquipmentState(ctx context.Context, id string, on bool) error

	CreateLocomotive(ctx context.Context, in fleet.LocomotiveInput) (string, error)
	UpdateLocomotive(ctx context.Context, id string, in fleet.LocomotiveInput) error
	SetLocomotivePhoto(ctx context.Context, id, photoURL string) error
	DeleteLocomotive(ctx context.Context, id string) error

	UserProfile(ctx context.Context, id string) (*db.UserProfile, error)
	ListUsers(ctx context.Context, f db.UserFilter) ([]db.UserProfile, error)
	SetUserAuthorized(ctx context.Context, id string, authorized bool) error
	UpdateUser(ctx context.Context, id string, u db.UserUpdate) error
	DeleteUser(ctx context.Context, id string) error

	AccessLogEnabled(ctx context.Context) (bool, error)
	SetAccessLogEnabled(ctx context.Context, enabled bool) error
	RecordAccess(ctx context.Context, e db.AccessEntry) error
	UserAreas(ctx context.Context) ([]string, error)
	AccessTimestamps(ctx context.Context) ([]string, error)
}

// PhotoStore keeps vehicle photos. *storage.Client implements it.
type PhotoStore interface {
	ReplaceVehiclePhoto(ctx context.Context, vehicleID string, p storage.Photo) (string, error)
	DeletePrefix(ctx context.Context, vehicleID string) error
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg      config.Config
	store    Store
	photos   PhotoStore
	pipeline *levels.Pipeline
	log      logrus.FieldLogger
	engine   *gin.Engine
	now      func() time.Time
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, store Store, photos PhotoStore, logger logrus.FieldLogger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(corsMiddleware())

	server := &Server{
		cfg:      cfg,
		store:    store,
		photos:   photos,
		pipeline: levels.NewPipeline(levels.Options{Zone: cfg.CivilZone()}),
		log:      logger,
		engine:   engine,
		now:      time.Now,
	}
	engine.Use(server.identityMiddleware())
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.engine.Group("/api")
	api.GET("/fuel-levels", noStore(), s.handleFuelLevels)
	api.GET("/locomotivas-levels", noStore(), s.handleLocomotiveLevels)

	ops := api.Group("/operacao", requireUser())
	ops.GET("/equipamentos", s.handleListEquipment)
	ops.POST("/equipamentos/:id/estado", s.handleSetEquipmentState)

	admin := api.Group("/admin", requireAdmin())
	admin.GET("/usuarios", s.handleListUsers)
	admin.POST("/usuarios/:id/status", s.handleSetUserStatus)
	admin.POST("/usuarios/:id/edit", s.handleEditUser)
	admin.DELETE("/usuarios/:id", s.handleDeleteUser)

	super := admin.Group("", requireSuperAdmin())
	super.GET("/locomotivas", noStore(), s.handleListLocomotives)
	super.POST("/locomotivas", s.handleCreateLocomotive)
	super.POST("/locomotivas/:id/edit", s.handleEditLocomotive)
	super.DELETE("/locomotivas/:id", s.handleDeleteLocomotive)
	super.GET("/numeros", s.handleNumbers)

	api.POST("/toggle-log-acesso", requireAdmin(), requireSuperAdmin(), s.handleToggleAccessLog)
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		metrics.IncHTTPRequest(route, status)

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"elapsed": time.Since(start).String(),
		}
		if id, ok := identityFrom(c); ok {
			fields["user_id"] = id.UserID
		}
		entry := logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case route == "/healthz" || route == "/metrics":
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func noStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}
