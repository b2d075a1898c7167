package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core/bus"
	"github.com/planitkids/fritids/core/navigation"
)

type busApi struct {
	svc      *bus.Service
	validate *validator.Validate
}

func registerBusAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := busApi{
		svc:      deps.BusSvc,
		validate: deps.Validate,
	}

	drivers := with(authed, allowMiddleware(navigation.BusDetails))
	parents := with(authed, allowMiddleware(navigation.ParentDashboard))
	admins := with(authed, adminMiddleware())

	g.GET("/buses", api.query, drivers...)
	g.GET("/buses/:id/students", api.students, drivers...)
	g.POST("/buses/:id/notifications", api.postStatus, drivers...)
	g.GET("/children", api.children, parents...)
	g.GET("/students/:id/status", api.studentStatus, parents...)

	g.POST("/buses", api.create, admins...)
	g.POST("/buses/:id/students", api.addStudent, admins...)
}

// Handlers

func (api *busApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	buses, err := api.svc.BusesForDriver(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, buses)
}

func (api *busApi) students(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := int64Param(ctx, "id")
	if err != nil {
		return err
	}
	students, err := api.svc.StudentsForBus(ctx.Request().Context(), claims.Subject, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *busApi) postStatus(ctx echo.Context) error {
	var data bus.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := int64Param(ctx, "id")
	if err != nil {
		return err
	}
	n, err := api.svc.PostStatus(ctx.Request().Context(), claims.Subject, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *busApi) children(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	statuses, err := api.svc.ChildrenStatus(ctx.Request().Context(), claims.Email)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statuses)
}

// studentStatus is limited to the children of the parent.
func (api *busApi) studentStatus(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := int64Param(ctx, "id")
	if err != nil {
		return err
	}
	statuses, err := api.svc.ChildrenStatus(ctx.Request().Context(), claims.Email)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		if st.Student.ID == id {
			return ctx.JSON(http.StatusOK, st)
		}
	}
	return errHttpNotFound
}

func (api *busApi) create(ctx echo.Context) error {
	var data NewBusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBusRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	b, err := api.svc.AddBus(ctx.Request().Context(), claims.SchoolID, data.Name, data.DriverID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *busApi) addStudent(ctx echo.Context) error {
	var data NewBusStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBusStudentRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := int64Param(ctx, "id")
	if err != nil {
		return err
	}
	st, err := api.svc.AddStudent(ctx.Request().Context(), claims.SchoolID, id, data.Name, data.ClassName, data.ParentEmail)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, st)
}

type (
	NewBusRequest struct {
		Name     string `json:"name" validate:"required,notblank"`
		DriverID string `json:"driver_id" validate:"required"`
	}

	NewBusStudentRequest struct {
		Name        string `json:"name" validate:"required,notblank"`
		ClassName   string `json:"class_name"`
		ParentEmail string `json:"parent_email" validate:"omitempty,email"`
	}
)
