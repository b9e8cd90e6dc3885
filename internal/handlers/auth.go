package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
	"github.com/Neeraj-0217/real-time-chat-app/internal/service/auth"
)

const accessTokenCookie = "access_token"

type AuthService interface {
	Register(params *model.CreateUserParams) (*model.User, string, error)
	Login(username, password string) (*model.User, string, error)
	Verify(token string) (*model.User, error)
	UpdateProfile(id model.UserID, displayName, password, profilePic string) (*model.User, error)
	TokenLifetime() time.Duration
}

func Register(authService AuthService, mediaService MediaService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.CreateUserParams{
			Username:    strings.TrimSpace(c.FormValue("username")),
			Password:    c.FormValue("password"),
			DisplayName: strings.TrimSpace(c.FormValue("display_name")),
			Gender:      c.FormValue("gender"),
		}

		if file, err := c.FormFile("profile_pic"); err == nil && file != nil {
			url, err := storeAvatar(mediaService, file)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			params.ProfilePic = url
		}

		user, token, err := authService.Register(params)
		if err != nil {
			if errors.Is(err, auth.ErrorInvalidParams) || errors.Is(err, model.ErrorUsernameTaken) {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return err
		}

		setTokenCookie(c, token, authService.TokenLifetime())
		return c.JSON(http.StatusCreated, user)
	}
}

func Login(authService AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, token, err := authService.Login(c.FormValue("username"), c.FormValue("password"))
		if err != nil {
			if errors.Is(err, model.ErrorInvalidUsernameOrPassword) {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			return err
		}

		setTokenCookie(c, token, authService.TokenLifetime())
		return c.JSON(http.StatusOK, user)
	}
}

func Verify(authService AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c, authService)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		return c.JSON(http.StatusOK, user)
	}
}

func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		c.SetCookie(&http.Cookie{
			Name:     accessTokenCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
	}
}

func setTokenCookie(c echo.Context, token string, lifetime time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     accessTokenCookie,
		Value:    "Bearer " + token,
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentUser resolves the caller from the access token cookie, falling back
// to the Authorization header for non-browser clients.
func currentUser(c echo.Context, authService AuthService) (*model.User, error) {
	raw := ""
	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		raw = c.Request().Header.Get(echo.HeaderAuthorization)
	}

	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return nil, model.ErrorNotAuthenticated
	}

	return authService.Verify(raw)
}
