package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/inventar-app/inventar-core/internal/export"
	"github.com/inventar-app/inventar-core/internal/infrastructure/config"
	"github.com/inventar-app/inventar-core/internal/infrastructure/logging"
	"github.com/inventar-app/inventar-core/internal/inventory"
	"github.com/inventar-app/inventar-core/internal/notify"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Inventory is the domain surface the handlers call. *inventory.Manager
// implements it.
type Inventory interface {
	IssueDevice(ctx context.Context, deviceID, personnelNo int64, assignedFrom *time.Time) (*inventory.IssueResult, error)
	ReturnDevice(ctx context.Context, assignmentID int64, damageNotes *string) (*inventory.ReturnResult, error)
	RegisterDevice(ctx context.Context, d inventory.NewDevice) (int64, error)
	GetDevice(ctx context.Context, deviceID int64) (*inventory.DeviceSummary, error)
	CurrentAssignment(ctx context.Context, deviceID int64) (*inventory.Assignment, error)
	ListDevices(ctx context.Context, f inventory.DeviceFilter) ([]inventory.DeviceSummary, error)
	ListActiveAssignments(ctx context.Context) ([]inventory.ActiveAssignment, error)
	ExportAssignments(ctx context.Context, f inventory.ExportFilter) ([]inventory.AssignmentRecord, error)
	ListDeviceTypes(ctx context.Context) ([]inventory.DeviceType, error)
	ListLocations(ctx context.Context) ([]inventory.Location, error)
	ListPersons(ctx context.Context) ([]inventory.Person, error)
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DBStatter exposes connection pool statistics.
type DBStatter interface {
	Stats() sql.DBStats
}

// NotifyStatter exposes notification delivery counters.
type NotifyStatter interface {
	Stats() notify.Stats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Export    export.Options
	Logger    *logging.Logger
	Inventory Inventory

	// Database must be healthy for /health to report ok.
	Database HealthChecker

	// Components are optional services (mqtt, redis, influxdb). A failing
	// component degrades health but does not fail it.
	Components map[string]HealthChecker

	DBStats       DBStatter
	Notifications NotifyStatter

	// Hub, if set, is used instead of a server-owned hub. It must already
	// be running and registered as a notification sink.
	Hub *Hub

	// Now is used for export file names. Defaults to time.Now.
	Now func() time.Time

	Version string
}

// Server is the HTTP API server for Inventar Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg           config.APIConfig
	wsCfg         config.WebSocketConfig
	exportOpts    export.Options
	logger        *logging.Logger
	inventory     Inventory
	database      HealthChecker
	components    map[string]HealthChecker
	dbStats       DBStatter
	notifications NotifyStatter
	now           func() time.Time
	version       string
	startTime     time.Time

	router      http.Handler
	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called, but Handler() is
// usable immediately.
//
// Parameters:
//   - deps: Required dependencies (logger, inventory)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Inventory == nil {
		return nil, fmt.Errorf("inventory is required")
	}

	s := &Server{
		cfg:           deps.Config,
		wsCfg:         deps.WS,
		exportOpts:    deps.Export,
		logger:        deps.Logger,
		inventory:     deps.Inventory,
		database:      deps.Database,
		components:    deps.Components,
		dbStats:       deps.DBStats,
		notifications: deps.Notifications,
		now:           deps.Now,
		version:       deps.Version,
		startTime:     time.Now(),
	}
	if s.now == nil {
		s.now = time.Now
	}

	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	} else {
		s.hub = NewHub(s.wsCfg, s.logger)
	}

	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It starts the server-owned WebSocket hub and launches the HTTP listener
// in a background goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Parent context for background goroutines
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
