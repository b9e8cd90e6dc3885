package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
	"github.com/Neeraj-0217/real-time-chat-app/internal/registry"
	"github.com/Neeraj-0217/real-time-chat-app/internal/relay"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket upgrades the request and hands the connection to the relay. The
// client identity is bound by the path parameter for the connection's whole
// lifetime; the handler blocks until the relay loop exits.
func WebSocket(r *relay.Relay) echo.HandlerFunc {
	return func(c echo.Context) error {
		clientID, err := strconv.ParseInt(c.Param("clientID"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
		}

		ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return fmt.Errorf("upgrading connection: %w", err)
		}

		r.Serve(model.UserID(clientID), registry.NewConn(ws))
		return nil
	}
}
