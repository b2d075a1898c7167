package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/navigation"
	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/core/user"
)

const (
	errNotAvailable = "student is not available in this class"
	errNotInGroup   = "student is not in this group"
)

type groupApi struct {
	svc      *roster.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := groupApi{
		svc:      deps.RosterSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	gg := g.Group("/groups", with(authed, allowMiddleware(navigation.MyGroup, navigation.TrackColleaguesGroups))...)
	gg.GET("", api.list)
	gg.GET("/available", api.available)
	gg.POST("/assign", api.assign)
	gg.POST("/unassign", api.unassign)
}

// loadDay builds the Store of the context user for date.
func (api *groupApi) loadDay(ctx echo.Context, date string) (*roster.Store, Claims, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, Claims{}, err
	}
	users, err := api.usrSvc.Colleagues(ctx.Request().Context(), claims.SchoolID, claims.Subject)
	if err != nil {
		return nil, Claims{}, errors.Wrap(err, "querying colleagues")
	}
	colleagues := make([]roster.Colleague, 0, len(users))
	for _, u := range users {
		colleagues = append(colleagues, roster.Colleague{ID: u.ID, Email: u.Email})
	}
	store, err := api.svc.LoadDay(ctx.Request().Context(), claims.SchoolID, date, claims.Subject, colleagues)
	if err != nil {
		return nil, Claims{}, err
	}
	return store, claims, nil
}

func newDayResponse(date string, store *roster.Store) DayResponse {
	available := make(map[string][]string)
	for _, class := range store.Classes() {
		available[class] = store.Available(class)
	}
	return DayResponse{Date: date, Groups: store.Groups(), Available: available}
}

// Handlers

func (api *groupApi) list(ctx echo.Context) error {
	date, err := dateParam(ctx)
	if err != nil {
		return err
	}
	store, _, err := api.loadDay(ctx, date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newDayResponse(date, store))
}

func (api *groupApi) available(ctx echo.Context) error {
	date, err := dateParam(ctx)
	if err != nil {
		return err
	}
	class := core.CleanString(ctx.QueryParam("class"))
	if class == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "class", Error: "this field is required"})
	}
	store, _, err := api.loadDay(ctx, date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, store.Available(class))
}

func (api *groupApi) assign(ctx echo.Context) error {
	return api.move(ctx, func(store *roster.Store, sa roster.StudentAssignment) (bool, error) {
		if store.IsAssigned(sa.StudentName) {
			return false, nil
		}
		if !store.Assign(sa.ClassName, sa.StudentName) {
			return false, core.NewValidationError(nil, core.FieldError{Field: "student_name", Error: errNotAvailable})
		}
		return true, nil
	})
}

func (api *groupApi) unassign(ctx echo.Context) error {
	return api.move(ctx, func(store *roster.Store, sa roster.StudentAssignment) (bool, error) {
		if !store.Unassign(sa) {
			return false, core.NewValidationError(nil, core.FieldError{Field: "student_name", Error: errNotInGroup})
		}
		return true, nil
	})
}

// move applies op to the group of the request and saves that group when op changed it.
func (api *groupApi) move(ctx echo.Context, op func(*roster.Store, roster.StudentAssignment) (bool, error)) error {
	var data AssignmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignmentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	store, claims, err := api.loadDay(ctx, data.Date)
	if err != nil {
		return err
	}
	if err = store.SelectGroup(data.Group); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "group", Error: err.Error()})
	}
	sa := roster.StudentAssignment{StudentName: data.StudentName, ClassName: data.ClassName}
	changed, err := op(store, sa)
	if err != nil {
		return err
	}
	if changed {
		if err = api.svc.SaveGroup(ctx.Request().Context(), claims.SchoolID, data.Date, store, data.Group); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, newDayResponse(data.Date, store))
}

type (
	AssignmentRequest struct {
		Date        string          `json:"date" validate:"required,isodate"`
		Group       roster.GroupKey `json:"group"`
		ClassName   string          `json:"class_name" validate:"required"`
		StudentName string          `json:"student_name" validate:"required"`
	}

	DayResponse struct {
		Date      string              `json:"date"`
		Groups    []roster.GroupView  `json:"groups"`
		Available map[string][]string `json:"available"`
	}
)

func (ar *AssignmentRequest) Validate(validate *validator.Validate) error {
	ar.Date = core.CleanString(ar.Date)
	ar.ClassName = core.CleanString(ar.ClassName)
	ar.StudentName = core.CleanString(ar.StudentName)
	if ar.Group == "" {
		ar.Group = roster.MyGroup
	}
	return validate.Struct(ar)
}
