package main

import (
	"log"
	"os"

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

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	zl, err := logsvc.NewZapLogger(core.Conf)
	errAndDie(err)
	defer func() { _ = zl.Sync() }()

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	tx := database.NewTransactor(db)

	studentRepo := sqlxrepos.NewStudentRepository(db)
	contractRepo := sqlxrepos.NewContractRepository(db)
	engagementRepo := sqlxrepos.NewEngagementRepository(db)
	mediationRepo := sqlxrepos.NewMediationRepository(db)

	studentSvc := student.NewService(tx, studentRepo)
	contractSvc := contract.NewService(tx, contractRepo, studentSvc, engagementRepo, emailsvc.NewConsoleService(), zl)
	engagementSvc := engagement.NewService(tx, engagementRepo, contractSvc, mediationRepo)
	mediationSvc := mediation.NewService(tx, mediationRepo, engagementSvc)

	// start CLI
	cli := commandLine{
		db:           db,
		studentSvc:   studentSvc,
		mediationSvc: mediationSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
