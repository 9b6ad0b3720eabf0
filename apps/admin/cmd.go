package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
	"github.com/lernwerk/backoffice/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db           *sqlx.DB
	studentSvc   student.Service
	mediationSvc mediation.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb                                   - create the database and app user if missing")
	fmt.Println("  migrate up|down|status|version|create ...  - run database migrations (goose)")
	fmt.Println("  stafftoken -username USERNAME [-admin]     - mint an API token for a staff member")
	fmt.Println("  seeddemo                                   - load a small demo dataset")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	staffTokenCmd := flag.NewFlagSet("stafftoken", flag.ExitOnError)
	staffTokenUname := staffTokenCmd.String("username", "", "The staff member's username.")
	staffTokenAdmin := staffTokenCmd.Bool("admin", false, "Grant admin rights.")

	switch args[1] {
	case "createdb":
		return database.CreateIfNotExist(core.Conf)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "stafftoken":
		if err := staffTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *staffTokenUname == "" {
			staffTokenCmd.Usage()
			return errHelp
		}
		return cli.staffToken(*staffTokenUname, *staffTokenAdmin)
	case "seeddemo":
		return cli.seedDemo()
	default:
		cli.printUsage()
		return errHelp
	}
}
