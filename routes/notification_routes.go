package routes

import (
	"fmt"

	config "github.com/Hieupu/ATPS-BE-sub002/configs"
	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	"github.com/Hieupu/ATPS-BE-sub002/middleware"
	ws "github.com/Hieupu/ATPS-BE-sub002/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func NotificationRoutes(app *fiber.App, h *handlers.NotificationHandler, hub *ws.Hub) {
	api := app.Group("/api/v1")

	notifications := api.Group("/notifications", middleware.Protected())
	notifications.Get("/me", h.ListMine)
	notifications.Patch("/:notificationId/read", h.MarkRead)
	notifications.Patch("/read-all", h.MarkAllRead)

	app.Get("/ws/:accountId", wsAuth, websocket.New(func(conn *websocket.Conn) {
		accountID, err := uuid.Parse(conn.Params("accountId"))
		if err != nil {
			conn.Close()
			return
		}

		client := &ws.Client{AccountID: accountID, Conn: conn}
		hub.Register(client)
		defer hub.Unregister(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}

// wsAuth gates the push stream. The JWT arrives as a query parameter since
// browsers cannot set headers on websocket upgrades, and it must belong to
// the account being subscribed to.
func wsAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token, err := jwt.Parse(c.Query("token"), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return fiber.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if sub, _ := claims["account_id"].(string); sub != c.Params("accountId") {
		return fiber.ErrForbidden
	}

	return c.Next()
}
