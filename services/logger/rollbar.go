package logsvc

import (
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/user"
)

// RollbarLogger prints to a std logger and reports to Rollbar.
//
// Log args may hold an error, a map[string]interface{} of extras and the user.User the entry is about.
// The user is reported as the Rollbar person, with its role and school added to the extras.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetCustom(map[string]interface{}{"app": conf.AppName})
	return &RollbarLogger{std: std}
}

// NewStdLogger returns a RollbarLogger writing to stdout with the given component prefix, eg. "API : ".
// Rollbar reporting is disabled in debug mode.
func NewStdLogger(prefix string, flags int, conf *core.Config) *RollbarLogger {
	logger := NewRollbarLogger(log.New(os.Stdout, prefix, flags), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

type logEntry struct {
	msg    string
	usr    *user.User
	err    error
	extras map[string]interface{}
	others []interface{}
}

func newLogEntry(msg string, args []interface{}) logEntry {
	e := logEntry{msg: msg}
	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			if e.usr == nil {
				usr := v
				e.usr = &usr
			}
		case error:
			if e.err == nil {
				e.err = v
			} else {
				e.others = append(e.others, v)
			}
		case map[string]interface{}:
			if e.extras == nil {
				e.extras = make(map[string]interface{}, len(v)+2)
			}
			for k, val := range v {
				e.extras[k] = val
			}
		default:
			e.others = append(e.others, arg)
		}
	}
	if e.usr != nil {
		if e.extras == nil {
			e.extras = make(map[string]interface{}, 2)
		}
		e.extras["role"] = e.usr.Role
		e.extras["school_id"] = e.usr.SchoolID
	}
	return e
}

func (e logEntry) report(level string) {
	if e.usr != nil {
		rollbar.SetPerson(e.usr.ID, e.usr.Name, e.usr.Email)
	} else {
		rollbar.ClearPerson()
	}

	args := []interface{}{e.msg}
	if e.err != nil {
		args = append(args, e.err)
	}
	if e.extras != nil {
		args = append(args, e.extras)
	}
	rollbar.Log(level, args...)
}

func (l RollbarLogger) print(level string, e logEntry) {
	l.std.Printf("[%s] %s\n", level, e.msg)
	if e.usr != nil {
		l.std.Printf("user: %s <%s> (%s)\n", e.usr.ID, e.usr.Email, e.usr.Role)
	}
	if e.err != nil {
		l.std.Printf("%+v\n", e.err)
	}
	for _, arg := range e.others {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) log(level, label, msg string, args []interface{}) {
	e := newLogEntry(msg, args)
	e.report(level)
	l.print(label, e)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, "DEBUG", msg, args) }

func (l RollbarLogger) Info(msg string, args ...interface{}) { l.log(rollbar.INFO, "INFO", msg, args) }

func (l RollbarLogger) Warn(msg string, args ...interface{}) { l.log(rollbar.WARN, "WARN", msg, args) }

func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, "ERROR", msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, "FATAL", msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
