package routes

import (
	"github.com/gofiber/fiber/v2"

	"pricebot/controllers"
)

func RegisterRowRoutes(app *fiber.App) {
	app.Get("/:rowId", controllers.GetRowImage)
}
