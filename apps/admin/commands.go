package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/user"
	"github.com/planitkids/fritids/services/rosterimport"
	"github.com/planitkids/fritids/storage/database"
)

var (
	migrateFunc = database.Migrate // mockable

	errNoDatabase = errors.New("migrations need a postgres database")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}

// addUser creates a user, or updates the role, school and password of an existing one and reactivates it.
func (cli *commandLine) addUser(name, email, role, schoolID, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != core.ErrNotFound {
			return err
		}
		nu := user.NewUser{
			Name:            name,
			Email:           email,
			Role:            role,
			SchoolID:        schoolID,
			Password:        pwd,
			PasswordConfirm: pwd,
		}
		if err = nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, nu)
		return err
	}

	active := true
	uu := user.UpdateUser{
		Name:            name,
		Role:            role,
		SchoolID:        schoolID,
		IsActive:        &active,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err = uu.Validate(ctx, usr, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	_, err = cli.usrSvc.Update(ctx, usr, uu)
	return err
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	_, err := cli.usrSvc.ResetPassword(context.Background(), email, pwd)
	return err
}

func (cli *commandLine) importRoster(schoolID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	counts, err := rosterimport.Import(context.Background(), cli.rosterSvc, schoolID, f)
	if err != nil {
		return err
	}
	classes := make([]string, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		fmt.Printf("%s: %d students\n", class, counts[class])
	}
	return nil
}
