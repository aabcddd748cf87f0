package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/handlers"
	ws "github.com/Hieupu/ATPS-BE-sub002/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsUpgradeRequest(target string) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

func signPushToken(t *testing.T, accountID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       "learner",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestNotificationPushStreamAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	app := fiber.New()
	NotificationRoutes(app, handlers.NewNotificationHandler(nil), ws.NewHub())

	accountID := uuid.NewString()

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(wsUpgradeRequest("/ws/" + accountID))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, err := app.Test(wsUpgradeRequest("/ws/" + accountID + "?token=not-a-jwt"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token for another account", func(t *testing.T) {
		token := signPushToken(t, uuid.NewString())
		resp, err := app.Test(wsUpgradeRequest("/ws/" + accountID + "?token=" + token))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("plain http request", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ws/"+accountID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	})
}
