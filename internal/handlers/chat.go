package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
	"github.com/Neeraj-0217/real-time-chat-app/internal/service/media"
)

const defaultHistoryLimit = 200

type ChatService interface {
	History(user, friend model.UserID, limit, offset int) ([]*model.Message, error)
	Search(query string, self model.UserID) ([]*model.UserSummary, error)
	IsOnline(user model.UserID) bool
	SetPreference(user, friend model.UserID, language string) error
}

type MediaService interface {
	Store(filename string, r io.Reader) (*media.Upload, error)
}

func ChatHistory(authService AuthService, chatService ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c, authService)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		friendID, err := strconv.ParseInt(c.Param("friendID"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid friend id")
		}

		limit := intQueryParam(c, "limit", defaultHistoryLimit)
		offset := intQueryParam(c, "offset", 0)

		msgs, err := chatService.History(user.ID, model.UserID(friendID), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, msgs)
	}
}

func UploadAttachment(authService AuthService, mediaService MediaService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := currentUser(c, authService); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		file, err := c.FormFile("file")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "missing file")
		}

		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
		}
		defer src.Close()

		upload, err := mediaService.Store(file.Filename, src)
		if err != nil {
			if errors.Is(err, media.ErrorFileTooLarge) {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
			}
			if errors.Is(err, media.ErrorExtensionNotAllowed) {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return err
		}

		return c.JSON(http.StatusOK, upload)
	}
}

func SetChatPreference(authService AuthService, chatService ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c, authService)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		friendID, err := strconv.ParseInt(c.Param("friendID"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid friend id")
		}

		body := struct {
			PreferredLanguage string `json:"preferred_language"`
		}{}
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}

		if err := chatService.SetPreference(user.ID, model.UserID(friendID), body.PreferredLanguage); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]string{
			"preferred_language": body.PreferredLanguage,
		})
	}
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
