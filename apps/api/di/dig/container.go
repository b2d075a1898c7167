package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/planitkids/fritids/apps/api/echo"
	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/activity"
	"github.com/planitkids/fritids/core/bus"
	"github.com/planitkids/fritids/core/calendar"
	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/core/user"
	emailsvc "github.com/planitkids/fritids/services/email"
	"github.com/planitkids/fritids/services/jobs"
	logsvc "github.com/planitkids/fritids/services/logger"
	mediasvc "github.com/planitkids/fritids/services/media"
	"github.com/planitkids/fritids/services/tokenstore"
	"github.com/planitkids/fritids/storage/database"
	inmemdb "github.com/planitkids/fritids/storage/database/inmem"
	sqlxrepos "github.com/planitkids/fritids/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// DBCloser releases the database of the repositories.
	DBCloser func() error

	Repositories struct {
		dig.Out
		Users      user.Repository
		Rosters    roster.Repository
		Occasions  calendar.OccasionRepository
		Activities activity.Repository
		Buses      bus.Repository
		Closer     DBCloser
	}

	DepsParam struct {
		dig.In
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
)

func newLogger(conf *core.Config) core.Logger {
	return logsvc.NewStdLogger("API : ", log.LstdFlags, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.NewStdLogger("DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile, conf)
}

// newRepositories opens the database of conf.Database.Engine, migrating postgres to the latest version.
func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.Engine == database.EngineMemory {
		loggerParam.Logger.Warn("using the in-memory database; data is lost on shutdown")
		db := inmemdb.NewDB()
		return Repositories{
			Users:      inmemdb.NewUserRepository(db),
			Rosters:    inmemdb.NewRosterRepository(db),
			Occasions:  inmemdb.NewOccasionRepository(db),
			Activities: inmemdb.NewActivityRepository(db),
			Buses:      inmemdb.NewBusRepository(db),
			Closer:     func() error { return nil },
		}
	}

	if err := database.CreateIfNotExist(context.Background(), conf); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	return Repositories{
		Users:      sqlxrepos.NewUserRepository(db),
		Rosters:    sqlxrepos.NewRosterRepository(db),
		Occasions:  sqlxrepos.NewOccasionRepository(db),
		Activities: sqlxrepos.NewActivityRepository(db),
		Buses:      sqlxrepos.NewBusRepository(db),
		Closer:     db.Close,
	}
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	activity.InitValidators(validate, translator)
	bus.InitValidators(validate, translator)
	return validate, translator
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newDeps(p DepsParam) *echoapi.Deps {
	return &echoapi.Deps{
		UserSvc:     p.UserSvc,
		RosterSvc:   p.RosterSvc,
		OccasionSvc: p.OccasionSvc,
		ActivitySvc: p.ActivitySvc,
		BusSvc:      p.BusSvc,
		Tokens:      p.Tokens,
		Media:       p.Media,
		Validate:    p.Validate,
		Translator:  p.Translator,
	}
}

func newScheduler(conf *core.Config, logger core.Logger, busSvc *bus.Service) (*jobs.Scheduler, error) {
	s := jobs.NewScheduler(logger)
	if err := s.AddNotificationPurge(conf.Jobs.NotificationPurgeSpec, conf.Jobs.NotificationRetention, busSvc); err != nil {
		return nil, err
	}
	return s, nil
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newValidator))
	must(c.Provide(newEmailService))
	must(c.Provide(tokenstore.New))
	must(c.Provide(mediasvc.NewLocalStore))
	must(c.Provide(user.NewService))
	must(c.Provide(roster.NewService))
	must(c.Provide(calendar.NewOccasionService))
	must(c.Provide(activity.NewService))
	must(c.Provide(bus.NewService))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))
	must(c.Provide(newScheduler))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
