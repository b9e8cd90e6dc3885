package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

func SearchUsers(authService AuthService, chatService ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c, authService)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		query := c.QueryParam("query")
		if query == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing query")
		}

		results, err := chatService.Search(query, user.ID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, results)
	}
}

// UserStatus reports a user's live online state straight from the registry.
// It intentionally requires no auth, matching the websocket upgrade path.
func UserStatus(chatService ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("userID"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
		}
		return c.JSON(http.StatusOK, map[string]any{
			"user_id":   id,
			"is_online": chatService.IsOnline(model.UserID(id)),
		})
	}
}

func UpdateProfile(authService AuthService, mediaService MediaService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c, authService)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		avatarURL := ""
		if file, err := c.FormFile("avatar"); err == nil && file != nil {
			avatarURL, err = storeAvatar(mediaService, file)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
		}

		updated, err := authService.UpdateProfile(
			user.ID,
			strings.TrimSpace(c.FormValue("display_name")),
			c.FormValue("password"),
			avatarURL,
		)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, map[string]any{
			"message": "profile updated",
			"user":    updated,
		})
	}
}

func storeAvatar(mediaService MediaService, file *multipart.FileHeader) (string, error) {
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".jpg") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".jpeg") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".png") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".gif") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".webp") {
		return "", errors.New("file must be an image")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	upload, err := mediaService.Store(file.Filename, src)
	if err != nil {
		return "", err
	}
	return upload.URL, nil
}
