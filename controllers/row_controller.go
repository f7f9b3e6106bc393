package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pricebot/prices"
)

// GetRowImage serves the rendered price table of a row as PNG.
func GetRowImage(c *fiber.Ctx) error {
	rowID, err := strconv.ParseUint(c.Params("rowId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Row id must be an integer"})
	}

	image, err := prices.Table(uint(rowID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Row not found"})
	}
	if err != nil {
		log.Printf("❌ Failed to render row %d: %v", rowID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render the price table"})
	}

	c.Set("Content-Type", "image/png")
	return c.Send(image)
}
