package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/contract"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		StudentSvc    student.Service
		MediationSvc  mediation.Service
		ContractSvc   contract.Service
		EngagementSvc engagement.Service

		Logger core.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		validate   *validator.Validate
		translator ut.Translator
		shutdown   chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	validate, translator := core.NewValidator()
	s := &server{
		opts:       opts,
		app:        echo.New(),
		validate:   validate,
		translator: translator,
		shutdown:   make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.translator, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerStudentAPI(v1, jwt, s.opts.StudentSvc, s.validate)
	registerMediationAPI(v1, jwt, s.opts.MediationSvc, s.validate)
	registerContractAPI(v1, jwt, s.opts.ContractSvc, s.validate)
	registerEngagementAPI(v1, jwt, s.opts.EngagementSvc, s.validate)
	registerPublicAPI(v1, s.opts.ContractSvc)
}

func (s *server) Start() error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Start(s.opts.Address) }()
	select {
	case err := <-errc:
		return err
	case <-s.shutdown:
		return core.NewShutdownError("integrity issue caught by the error handler")
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+core.Conf.AppName+" back office API!")
}
