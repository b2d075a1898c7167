package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/planitkids/fritids/core/navigation"
	"github.com/planitkids/fritids/core/user"
)

// allowMiddleware lets through the roles allowed to navigate to any of dests.
func allowMiddleware(dests ...navigation.Destination) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			for _, d := range dests {
				if navigation.IsAllowed(claims.Role, d) {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleAdmin)
}

// with returns base followed by extra, leaving base untouched.
func with(base []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	res := make([]echo.MiddlewareFunc, 0, len(base)+len(extra))
	res = append(res, base...)
	return append(res, extra...)
}
