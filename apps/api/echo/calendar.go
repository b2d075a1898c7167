package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/calendar"
	"github.com/planitkids/fritids/core/navigation"
	"github.com/planitkids/fritids/core/user"
)

type calendarApi struct {
	svc      *calendar.OccasionService
	validate *validator.Validate
	now      func() time.Time
}

func registerCalendarAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := calendarApi{
		svc:      deps.OccasionSvc,
		validate: deps.Validate,
		now:      time.Now,
	}

	readers := with(authed, allowMiddleware(navigation.Calendar))
	editors := with(readers, roleMiddleware(user.RoleTeamLead, user.RoleAdmin))
	g.GET("/calendar/week", api.week, readers...)
	g.GET("/occasions", api.query, readers...)
	g.POST("/occasions", api.create, editors...)
	g.DELETE("/occasions/:id", api.destroy, editors...)
}

// maxWeekShift bounds the `shift` param of the week strip, about ten years either way.
const maxWeekShift = 520

var errShiftRange = fmt.Sprintf("shift must be between -%d and %d", maxWeekShift, maxWeekShift)

// Handlers

// week returns the strip of the week holding `date` (today by default), moved by `shift` weeks.
// `selected` defaults to today.
func (api *calendarApi) week(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	strip := calendar.NewStrip(api.now())
	if s := ctx.QueryParam("selected"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "selected", Error: "date must be formatted as YYYY-MM-DD"})
		}
		strip.Select(d)
	}
	if s := ctx.QueryParam("date"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
		}
		strip.Window = calendar.WeekFromDate(d)
	}
	if s := ctx.QueryParam("shift"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "shift", Error: "shift must be an integer"})
		}
		if n < -maxWeekShift || n > maxWeekShift {
			return core.NewValidationError(nil, core.FieldError{Field: "shift", Error: errShiftRange})
		}
		strip.Window = strip.Window.Shift(n)
	}

	occs, err := api.svc.ForWeek(ctx.Request().Context(), claims.SchoolID, strip.Window)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, WeekResponse{
		WeekNumber:  strip.WeekNumber(),
		Days:        strip.Days(),
		MarkedDates: calendar.MarkedDates(occs),
	})
}

// query lists the occasions of `month` (YYYY-MM) or of `date` (today by default).
func (api *calendarApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var occs []calendar.Occasion
	if month := ctx.QueryParam("month"); month != "" {
		occs, err = api.svc.ForMonth(ctx.Request().Context(), claims.SchoolID, month)
	} else {
		var date string
		if date, err = dateParam(ctx); err != nil {
			return err
		}
		occs, err = api.svc.ForDay(ctx.Request().Context(), claims.SchoolID, date)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, occs)
}

func (api *calendarApi) create(ctx echo.Context) error {
	var data calendar.NewOccasion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOccasion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	occ, err := api.svc.Add(ctx.Request().Context(), claims.SchoolID, claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, occ)
}

func (api *calendarApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	occ, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if occ.SchoolID != claims.SchoolID {
		return errHttpNotFound
	}
	if err = api.svc.Remove(ctx.Request().Context(), occ.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type WeekResponse struct {
	WeekNumber  int            `json:"week_number"`
	Days        []calendar.Day `json:"days"`
	MarkedDates []string       `json:"marked_dates"`
}
