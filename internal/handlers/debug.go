package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
	"github.com/Neeraj-0217/real-time-chat-app/internal/registry"
)

type ConnectionTable interface {
	Stats() registry.Stats
	OnlineUsers() []model.UserID
}

type OnlineStateStore interface {
	OnlineUserIDs() ([]model.UserID, error)
	ResetOnline(online []model.UserID) error
}

// DebugConnections compares the live registry against the persisted
// is_online flags so drift between the two is visible.
func DebugConnections(authService AuthService, table ConnectionTable, users OnlineStateStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := currentUser(c, authService); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		stats := table.Stats()
		persisted, err := users.OnlineUserIDs()
		if err != nil {
			return err
		}

		inDBNotInWS := []model.UserID{}
		for _, id := range persisted {
			if _, ok := stats.Users[id]; !ok {
				inDBNotInWS = append(inDBNotInWS, id)
			}
		}
		persistedSet := make(map[model.UserID]struct{}, len(persisted))
		for _, id := range persisted {
			persistedSet[id] = struct{}{}
		}
		inWSNotInDB := []model.UserID{}
		for id := range stats.Users {
			if _, ok := persistedSet[id]; !ok {
				inWSNotInDB = append(inWSNotInDB, id)
			}
		}

		return c.JSON(http.StatusOK, map[string]any{
			"websocket_stats":       stats,
			"database_online_users": persisted,
			"discrepancy": map[string]any{
				"in_db_not_in_ws": inDBNotInWS,
				"in_ws_not_in_db": inWSNotInDB,
			},
		})
	}
}

// FixOnlineStatus rewrites every is_online flag from the live registry, the
// compensating action for presence writes that failed mid-flight.
func FixOnlineStatus(authService AuthService, table ConnectionTable, users OnlineStateStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := currentUser(c, authService); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		online := table.OnlineUsers()
		if err := users.ResetOnline(online); err != nil {
			return err
		}

		return c.JSON(http.StatusOK, map[string]any{
			"message":      "online status synchronized",
			"online_users": online,
		})
	}
}
