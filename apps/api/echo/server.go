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

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/message"
	"github.com/trezcool/malezi/core/milestone"
	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/report"
	"github.com/trezcool/malezi/core/shift"
	appsync "github.com/trezcool/malezi/core/sync"
	"github.com/trezcool/malezi/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        user.Service
		ChildSvc       child.Service
		ObservationSvc observation.Service
		MilestoneSvc   milestone.Service
		MessageSvc     message.Service
		ShiftSvc       shift.Service
		ModerationSvc  moderation.Service
		ReportSvc      report.Service
		SyncSvc        appsync.Service
		Emitter        *activity.Emitter
		Validate       *validator.Validate
		Translator     ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf
	initAuth(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate)
	registerFamilyAPI(v1, jwt, s.deps.ChildSvc, s.deps.UserSvc, s.deps.Validate)
	registerObservationAPI(v1, jwt, s.deps.ObservationSvc, s.deps.UserSvc)
	registerMilestoneAPI(v1, jwt, s.deps.MilestoneSvc, s.deps.UserSvc)
	registerMessageAPI(v1, jwt, s.deps.MessageSvc, s.deps.UserSvc)
	registerShiftAPI(v1, jwt, s.deps.ShiftSvc, s.deps.UserSvc)
	registerModerationAPI(v1, jwt, s.deps.ModerationSvc, s.deps.UserSvc)
	registerReportAPI(v1, jwt, s.deps.ReportSvc, s.deps.UserSvc)
	registerSyncAPI(v1, jwt, s.deps.SyncSvc, s.deps.UserSvc)
	registerActivityAPI(v1, jwt, s.deps.Emitter)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Malezi API!")
}
