// Package testutil holds the helpers shared by the tests of several packages.
package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/activity"
	"github.com/planitkids/fritids/core/bus"
	"github.com/planitkids/fritids/core/user"
	appfs "github.com/planitkids/fritids/fs"
	logsvc "github.com/planitkids/fritids/services/logger"
)

// Config returns the configuration used by the tests.
func Config() *core.Config {
	return &core.Config{
		AppName:          "PlanIt Kids",
		Build:            "test",
		Env:              "TEST",
		Debug:            true,
		TestMode:         true,
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:19006",
		DefaultFromEmail: mail.Address{Name: "PlanIt Kids", Address: "noreply@test.com"},
		Server: core.ServerConfig{
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		Database: core.DatabaseConfig{Engine: "memory"},
		Jobs:     core.JobsConfig{NotificationPurgeSpec: "@daily", NotificationRetention: 30 * 24 * time.Hour},
	}
}

// Logger returns a core.Logger discarding everything.
func Logger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), conf)
	logger.Enable(false)
	return logger
}

// Validator returns a validator with every custom validation registered.
func Validator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	activity.InitValidators(validate, translator)
	bus.InitValidators(validate, translator)
	return validate, translator
}

// ParseEmailTemplates parses the embedded email templates.
func ParseEmailTemplates(conf *core.Config, logger core.Logger) {
	core.ParseEmailTemplates(appfs.FS, conf, logger)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role, schoolID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		SchoolID:  schoolID,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
