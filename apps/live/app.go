package live

import (
	"github.com/getevo/evo/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type App struct {
}

func (a App) Register() error {
	return nil
}

func (a App) Router() error {
	app := evo.GetFiber()

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/events", websocket.New(HandleWebSocket))

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "live"
}
