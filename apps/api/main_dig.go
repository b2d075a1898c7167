package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	dig_container "github.com/planitkids/fritids/apps/api/di/dig"
	echoapi "github.com/planitkids/fritids/apps/api/echo"
	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/user"
	appfs "github.com/planitkids/fritids/fs"
	"github.com/planitkids/fritids/services/jobs"
)

type app struct {
	conf      *core.Config
	logger    core.Logger
	dbLogger  core.Logger
	closeDB   dig_container.DBCloser
	scheduler *jobs.Scheduler
	server    *echoapi.Server
}

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		closeDB dig_container.DBCloser,
		scheduler *jobs.Scheduler,
		server *echoapi.Server,
	) {
		a := app{
			conf:      conf,
			logger:    apiLogger,
			dbLogger:  dbLoggerParam.Logger,
			closeDB:   closeDB,
			scheduler: scheduler,
			server:    server,
		}
		a.run()
	}))
}

func (a app) run() {
	a.logger.Info(fmt.Sprintf("%s API initializing : version %q, database engine %q", a.conf.AppName, a.conf.Build, a.conf.Database.Engine))

	core.ParseEmailTemplates(appfs.FS, a.conf, a.logger)
	user.LoadCommonPasswords(a.logger)

	defer func() {
		if err := a.closeDB(); err != nil {
			a.dbLogger.Fatal("Failed to close", err)
		}
	}()
	defer a.logger.Info("Application stopped")

	a.startDebugServer()

	a.scheduler.Start()
	go a.server.Start()

	select {
	case err := <-a.server.Errors():
		a.logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-a.server.ShutdownSignal():
		a.logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		a.shutdown()
	}
}

// startDebugServer serves /debug/pprof and /debug/vars on the debug host.
func (a app) startDebugServer() {
	expvar.NewString("build").Set(a.conf.Build)
	expvar.NewString("env").Set(a.conf.Env)
	expvar.NewString("db_engine").Set(a.conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(a.conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			a.logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()
}

// shutdown stops the cron jobs, then gives outstanding requests until the shutdown timeout to complete.
func (a app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(ctx); err != nil {
		a.logger.Error(fmt.Sprintf("could not stop jobs: %v", err), err)
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

		if err = a.server.Close(); err != nil {
			a.logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
