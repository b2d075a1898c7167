// Command admin runs the maintenance tasks of the PlanIt Kids database.
package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/core/user"
	logsvc "github.com/planitkids/fritids/services/logger"
	"github.com/planitkids/fritids/storage/database"
	sqlxrepos "github.com/planitkids/fritids/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewStdLogger("ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile, conf)

	if conf.Database.Engine != database.EnginePostgres {
		logger.Fatal("admin commands need the postgres database engine")
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	// set up DB
	errAndDie(logger, database.CreateIfNotExist(context.Background(), conf))
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer func() { _ = db.Close() }()

	// start CLI
	cli := commandLine{
		db:        db.DB,
		usrSvc:    user.NewService(sqlxrepos.NewUserRepository(db)),
		rosterSvc: roster.NewService(sqlxrepos.NewRosterRepository(db)),
		validate:  validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed: "+err.Error(), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
