package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/malezi/apps/api/echo"
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
	emailsvc "github.com/trezcool/malezi/services/email"
	logsvc "github.com/trezcool/malezi/services/logger"
	"github.com/trezcool/malezi/storage/database"
	sqlxrepos "github.com/trezcool/malezi/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	sdb := sqlx.NewDb(db, "postgres")

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := newTranslator()

	emitter := activity.NewEmitter()
	matcher := moderation.NewMatcher(conf.ModerationKeywords)

	usrRepo := sqlxrepos.NewUserRepository(sdb)
	usrSvc := user.NewService(usrRepo, mailSvc, conf, emitter)
	childSvc := child.NewService(sqlxrepos.NewChildRepository(sdb), usrRepo)
	modSvc := moderation.NewService(sqlxrepos.NewModerationRepository(sdb), validate, emitter)
	obsSvc := observation.NewService(
		sqlxrepos.NewObservationRepository(sdb), childSvc, modSvc, matcher, validate, emitter, conf, logger)
	mlstSvc := milestone.NewService(sqlxrepos.NewMilestoneRepository(sdb), childSvc, validate)
	msgSvc := message.NewService(sqlxrepos.NewMessageRepository(sdb), usrSvc, modSvc, matcher, validate, logger)
	shiftSvc := shift.NewService(sqlxrepos.NewShiftRepository(sdb), childSvc, validate)
	reportSvc := report.NewService(sqlxrepos.NewReportRepository(sdb), shiftSvc)
	syncSvc := appsync.NewService(
		sqlxrepos.NewSyncRepository(sdb), obsSvc, mlstSvc, msgSvc, shiftSvc, validate, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("activity_subscribers", expvar.Func(func() interface{} {
		return emitter.SubscriberCount()
	}))

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			ChildSvc:       childSvc,
			ObservationSvc: obsSvc,
			MilestoneSvc:   mlstSvc,
			MessageSvc:     msgSvc,
			ShiftSvc:       shiftSvc,
			ModerationSvc:  modSvc,
			ReportSvc:      reportSvc,
			SyncSvc:        syncSvc,
			Emitter:        emitter,
			Validate:       validate,
			Translator:     translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
