package echoapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/activity"
	"github.com/planitkids/fritids/core/navigation"
	mediasvc "github.com/planitkids/fritids/services/media"
)

type activityApi struct {
	svc   *activity.Service
	media *mediasvc.LocalStore
}

func registerActivityAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := activityApi{
		svc:   deps.ActivitySvc,
		media: deps.Media,
	}

	readers := with(authed, allowMiddleware(navigation.DailyActivities, navigation.Agenda))
	planners := with(authed, allowMiddleware(navigation.DailyActivities))

	g.GET("/activities", api.list, readers...)
	g.POST("/activities", api.create, planners...)
	g.PUT("/activities/:id", api.update, planners...)
	g.DELETE("/activities/:id", api.destroy, planners...)
	g.POST("/activities/:id/photos", api.attachPhoto, planners...)
	g.DELETE("/activities/:id/photos/:photoID", api.removePhoto, planners...)
	g.POST("/activities/:id/staff", api.assignStaff, planners...)
	g.DELETE("/activities/:id/staff/:staffID", api.unassignStaff, planners...)
}

// plannerOf loads the planner of the day of the persisted activity :id and returns its local id there.
func (api *activityApi) plannerOf(ctx echo.Context) (*activity.Planner, string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, "", err
	}
	id, err := int64Param(ctx, "id")
	if err != nil {
		return nil, "", err
	}
	a, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return nil, "", err
	}
	if a.SchoolID != claims.SchoolID {
		return nil, "", errHttpNotFound
	}
	p, err := api.svc.PlannerFor(ctx.Request().Context(), a.SchoolID, a.Date)
	if err != nil {
		return nil, "", err
	}
	localID, ok := p.ByRemoteID(id)
	if !ok {
		return nil, "", errHttpNotFound
	}
	return p, localID, nil
}

// push persists the local changes of localID and writes the activity back.
func (api *activityApi) push(ctx echo.Context, p *activity.Planner, localID string) error {
	a, err := p.Update(ctx.Request().Context(), localID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

// Handlers

func (api *activityApi) list(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	date, err := dateParam(ctx)
	if err != nil {
		return err
	}
	acts, err := api.svc.ListByDay(ctx.Request().Context(), claims.SchoolID, date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acts)
}

// create adds a draft to the planner of the day, fills it in and saves it.
func (api *activityApi) create(ctx echo.Context) error {
	var data ActivityRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActivityRequest")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	date := core.CleanString(data.Date)
	if !core.IsISODate(date) {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
	}

	p, err := api.svc.PlannerFor(ctx.Request().Context(), claims.SchoolID, date)
	if err != nil {
		return err
	}
	draft := p.Add()
	if err = data.apply(p, draft.LocalID); err != nil {
		return err
	}
	a, err := p.Save(ctx.Request().Context(), draft.LocalID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *activityApi) update(ctx echo.Context) error {
	var data ActivityRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActivityRequest")
	}
	p, localID, err := api.plannerOf(ctx)
	if err != nil {
		return err
	}
	if err = data.apply(p, localID); err != nil {
		return err
	}
	return api.push(ctx, p, localID)
}

// destroy requires `confirm=true`.
func (api *activityApi) destroy(ctx echo.Context) error {
	confirmed, _ := strconv.ParseBool(ctx.QueryParam("confirm"))
	if !confirmed {
		return activity.ErrNotConfirmed
	}
	p, localID, err := api.plannerOf(ctx)
	if err != nil {
		return err
	}
	if err = p.Remove(ctx.Request().Context(), localID, confirmed); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// attachPhoto takes a multipart `photo` upload, a `uri` or `placeholder=true`.
// A request carrying none of them selects nothing and leaves the activity unchanged.
func (api *activityApi) attachPhoto(ctx echo.Context) error {
	p, localID, err := api.plannerOf(ctx)
	if err != nil {
		return err
	}

	if placeholder, _ := strconv.ParseBool(ctx.FormValue("placeholder")); placeholder {
		if _, err = p.AttachPlaceholder(localID); err != nil {
			return err
		}
		return api.push(ctx, p, localID)
	}

	var picker activity.PhotoPicker
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var file io.Reader
		if fh, err := ctx.FormFile("photo"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return errors.Wrap(err, "opening uploaded photo")
			}
			defer func() { _ = f.Close() }()
			file = f
		} else if err != http.ErrMissingFile {
			return errors.Wrap(err, "reading uploaded photo")
		}
		picker = mediasvc.NewUploadPicker(api.media, file)
	} else {
		var data PhotoRequest
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to PhotoRequest")
		}
		if data.Placeholder {
			if _, err = p.AttachPlaceholder(localID); err != nil {
				return err
			}
			return api.push(ctx, p, localID)
		}
		picker = mediasvc.URIPicker(data.URI)
	}

	before, err := p.Get(localID)
	if err != nil {
		return err
	}
	a, err := p.AttachPhoto(ctx.Request().Context(), localID, picker)
	if err != nil {
		return err
	}
	if len(a.Photos) == len(before.Photos) {
		return ctx.JSON(http.StatusOK, a)
	}
	return api.push(ctx, p, localID)
}

func (api *activityApi) removePhoto(ctx echo.Context) error {
	p, localID, err := api.plannerOf(ctx)
	if err != nil {
		return err
	}
	if _, err = p.RemovePhoto(localID, ctx.Param("photoID")); err != nil {
		return err
	}
	return api.push(ctx, p, localID)
}

func (api *activityApi) assignStaff(ctx echo.Context) error {
	var data StaffRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StaffRequest")
	}
	data.StaffID = core.CleanString(data.StaffID)
	data.Name = core.CleanString(data.Name)
	if data.StaffID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "id", Error: "this field is required"})
	}
	p, localID, err := api.plannerOf(ctx)
	if err != nil {
		return err
	}
	if _, err = p.AssignStaff(localID, activity.StaffRef{ID: data.StaffID, Name: data.Name}); err != nil {
		return err
	}
	return api.push(ctx, p, localID)
}

func (api *activityApi) unassignStaff(ctx echo.Context) error {
	p, localID, err := api.plannerOf(ctx)
	if err != nil {
		return err
	}
	if _, err = p.UnassignStaff(localID, ctx.Param("staffID")); err != nil {
		return err
	}
	return api.push(ctx, p, localID)
}

type (
	// ActivityRequest carries the fields to set; nil fields are left as they are.
	ActivityRequest struct {
		Date          string              `json:"date"`
		Type          *string             `json:"type"`
		FromTime      *string             `json:"from_time"`
		ToTime        *string             `json:"to_time"`
		Location      *string             `json:"location"`
		Description   *string             `json:"description"`
		AssignedStaff []activity.StaffRef `json:"assigned_staff"`
	}

	// StaffRequest names its id field apart from the :id path param it would otherwise be bound to.
	StaffRequest struct {
		StaffID string `json:"id"`
		Name    string `json:"name"`
	}

	PhotoRequest struct {
		URI         string `json:"uri"`
		Placeholder bool   `json:"placeholder"`
	}
)

func (ar ActivityRequest) apply(p *activity.Planner, localID string) error {
	fields := []struct {
		field activity.Field
		value *string
	}{
		{activity.FieldType, ar.Type},
		{activity.FieldFromTime, ar.FromTime},
		{activity.FieldToTime, ar.ToTime},
		{activity.FieldLocation, ar.Location},
		{activity.FieldDescription, ar.Description},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if _, err := p.UpdateField(localID, f.field, *f.value); err != nil {
			return err
		}
	}
	for _, s := range ar.AssignedStaff {
		if _, err := p.AssignStaff(localID, s); err != nil {
			return err
		}
	}
	return nil
}
