package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/lernwerk/backoffice/apps/api/echo"
	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/contract"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
	emailsvc "github.com/lernwerk/backoffice/services/email"
	logsvc "github.com/lernwerk/backoffice/services/logger"
	"github.com/lernwerk/backoffice/storage/database"
	sqlxrepos "github.com/lernwerk/backoffice/storage/database/sqlx"
)

func main() {
	// set up logging
	var logger core.Logger
	if core.Conf.Debug {
		zl, err := logsvc.NewZapLogger(core.Conf)
		errAndDie(err)
		defer func() { _ = zl.Sync() }()
		logger = zl
	} else {
		logger = logsvc.NewRollbarLogger(stdlog.New(os.Stdout, "", stdlog.LstdFlags), core.Conf)
	}

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	tx := database.NewTransactor(db)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	studentRepo := sqlxrepos.NewStudentRepository(db)
	contractRepo := sqlxrepos.NewContractRepository(db)
	engagementRepo := sqlxrepos.NewEngagementRepository(db)
	mediationRepo := sqlxrepos.NewMediationRepository(db)

	studentSvc := student.NewService(tx, studentRepo)
	contractSvc := contract.NewService(tx, contractRepo, studentSvc, engagementRepo, mailSvc, logger)
	engagementSvc := engagement.NewService(tx, engagementRepo, contractSvc, mediationRepo)
	mediationSvc := mediation.NewService(tx, mediationRepo, engagementSvc)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       core.Conf.Server.Addr,
			StudentSvc:    studentSvc,
			MediationSvc:  mediationSvc,
			ContractSvc:   contractSvc,
			EngagementSvc: engagementSvc,
			Logger:        logger,
		},
	)

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		errAndDie(err)
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			errAndDie(err)
		}
	}
}

func errAndDie(err error) {
	if err != nil {
		stdlog.Fatal(err)
	}
}
