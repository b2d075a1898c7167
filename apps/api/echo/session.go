package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/navigation"
	"github.com/planitkids/fritids/core/user"
	"github.com/planitkids/fritids/services/tokenstore"
)

type authApi struct {
	conf     *core.Config
	svc      *user.Service
	tokens   tokenstore.Store
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, authed []echo.MiddlewareFunc, conf *core.Config, deps *Deps) {
	api := authApi{
		conf:     conf,
		svc:      deps.UserSvc,
		tokens:   deps.Tokens,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout, authed...)
	ag.GET("/session", api.session, authed...)
	ag.POST("/token-refresh", api.refreshToken, authed...)

	ng := g.Group("/navigation", authed...)
	ng.GET("", api.navigation)
	ng.POST("", api.navigate)
	ng.POST("/role-selection", api.backToRoleSelection)

	mg := g.Group("/users/me", authed...)
	mg.GET("", api.me)
	mg.PUT("/role", api.setDailyRole, allowMiddleware(navigation.DailyRoleSelection))
}

// resume replays the session of the request on a fresh Router.
func resume(ctx echo.Context, svc *user.Service) (*navigation.Router, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, err
	}
	router := navigation.NewRouter(svc)
	if _, err = router.Resume(claims.Session()); err != nil {
		return nil, err
	}
	return router, nil
}

func (api *authApi) sessionResponse(usr user.User, router *navigation.Router) (SessionResponse, error) {
	token, err := GenerateToken(api.conf, NewClaims(api.conf, usr))
	if err != nil {
		return SessionResponse{}, errors.Wrap(err, "generating token")
	}
	sess, _ := router.Session()
	return SessionResponse{
		Token:        token,
		User:         usr,
		Session:      sess,
		State:        router.State(),
		Destinations: router.Allowed(),
	}, nil
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	router := navigation.NewRouter(api.svc)
	if _, err := router.Login(ctx.Request().Context(), data.Email, data.Password); err != nil {
		return errors.Wrap(err, "authenticating")
	}
	sess, _ := router.Session()
	usr, err := api.svc.GetByID(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}

	resp, err := api.sessionResponse(usr, router)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err = api.tokens.Revoke(ctx.Request().Context(), claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return errors.Wrap(err, "revoking token")
	}
	router := navigation.NewRouter(api.svc)
	return ctx.JSON(http.StatusOK, StateResponse{State: router.Logout(), Destinations: router.Allowed()})
}

func (api *authApi) session(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	router, err := resume(ctx, api.svc)
	if err != nil {
		return err
	}
	sess, _ := router.Session()
	return ctx.JSON(http.StatusOK, SessionResponse{
		User:         usr,
		Session:      sess,
		State:        router.State(),
		Destinations: router.Allowed(),
	})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) navigation(ctx echo.Context) error {
	router, err := resume(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, StateResponse{State: router.State(), Destinations: router.Allowed()})
}

func (api *authApi) navigate(ctx echo.Context) error {
	var data NavigateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NavigateRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	router, err := resume(ctx, api.svc)
	if err != nil {
		return err
	}
	state, err := router.Navigate(data.Destination)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, StateResponse{State: state, Destinations: router.Allowed()})
}

func (api *authApi) backToRoleSelection(ctx echo.Context) error {
	router, err := resume(ctx, api.svc)
	if err != nil {
		return err
	}
	state, err := router.BackToRoleSelection()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, StateResponse{State: state, Destinations: router.Allowed()})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

// setDailyRole persists the role picked on the role selection screen and issues a token carrying it.
func (api *authApi) setDailyRole(ctx echo.Context) error {
	var data user.DailyRole
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DailyRole")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	router, err := resume(ctx, api.svc)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.SetDailyRole(ctx.Request().Context(), claims.Subject, data.Role)
	if err != nil {
		return errors.Wrap(err, "setting daily role")
	}
	if _, err = router.ChangeRole(usr.Role); err != nil {
		return err
	}

	resp, err := api.sessionResponse(usr, router)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SessionResponse struct {
		Token        string                   `json:"token,omitempty"`
		User         user.User                `json:"user"`
		Session      navigation.Session       `json:"session"`
		State        navigation.State         `json:"state"`
		Destinations []navigation.Destination `json:"destinations"`
	}

	StateResponse struct {
		State        navigation.State         `json:"state"`
		Destinations []navigation.Destination `json:"destinations"`
	}

	NavigateRequest struct {
		Destination navigation.Destination `json:"destination" validate:"required"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
