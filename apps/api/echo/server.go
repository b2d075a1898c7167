package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/activity"
	"github.com/planitkids/fritids/core/bus"
	"github.com/planitkids/fritids/core/calendar"
	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/core/user"
	mediasvc "github.com/planitkids/fritids/services/media"
	"github.com/planitkids/fritids/services/tokenstore"
)

// Deps holds the services served by the API.
type Deps struct {
	UserSvc     *user.Service
	RosterSvc   *roster.Service
	OccasionSvc *calendar.OccasionService
	ActivitySvc *activity.Service
	BusSvc      *bus.Service
	Tokens      tokenstore.Store
	Media       *mediasvc.LocalStore
	Validate    *validator.Validate
	Translator  ut.Translator
}

type Server struct {
	conf     *core.Config
	logger   core.Logger
	deps     *Deps
	app      *echo.Echo
	jwt      middleware.JWTConfig
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(conf *core.Config, logger core.Logger, deps *Deps) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = s.conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)
	if s.deps.Media != nil && s.deps.Media.Dir() != "" {
		s.app.Static("/media", s.deps.Media.Dir())
	}

	s.jwt = newJWTConfig(s.conf)
	authed := []echo.MiddlewareFunc{middleware.JWTWithConfig(s.jwt), revocationMiddleware(s.deps.Tokens)}

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, authed, s.conf, s.deps)
	registerUserAPI(v1, authed, s.deps)
	registerGroupAPI(v1, authed, s.deps)
	registerCalendarAPI(v1, authed, s.deps)
	registerActivityAPI(v1, authed, s.deps)
	registerBusAPI(v1, authed, s.deps)
	registerRosterAPI(v1, authed, s.deps)
}

// Start listens until the server is shut down; failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
