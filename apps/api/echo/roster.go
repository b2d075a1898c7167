package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/services/rosterimport"
)

type rosterApi struct {
	svc *roster.Service
}

func registerRosterAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := rosterApi{svc: deps.RosterSvc}

	admins := with(authed, adminMiddleware())
	g.GET("/rosters", api.query, admins...)
	g.POST("/rosters/import", api.importWorkbook, admins...)
}

// Handlers

func (api *rosterApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.ClassRosters(ctx.Request().Context(), claims.SchoolID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

// importWorkbook adds the students of the uploaded `file` workbook, one sheet per class.
func (api *rosterApi) importWorkbook(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded workbook")
	}
	defer func() { _ = f.Close() }()

	classes, err := rosterimport.Parse(f)
	if err != nil {
		msg := "the file is not a valid workbook"
		if errors.Cause(err) == rosterimport.ErrEmptyWorkbook {
			msg = err.Error()
		}
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: msg})
	}
	counts, err := rosterimport.ImportClasses(ctx.Request().Context(), api.svc, claims.SchoolID, classes)
	if err != nil {
		return core.NewRemoteOperationError("could not import the roster", err)
	}
	return ctx.JSON(http.StatusOK, counts)
}
