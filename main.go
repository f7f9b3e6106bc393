package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"pricebot/config"
	"pricebot/database"
	"pricebot/discord"
	"pricebot/gate"
	"pricebot/items"
	"pricebot/prices"
	"pricebot/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	database.ConnectDatabase(cfg.DatabasePath)

	items.Configure(cfg.ItemsPath)
	prices.ConfigureAssets(cfg.LocksPath)
	gate.Configure(cfg.Owners)

	bot, err := discord.New(cfg.Token, cfg.GuildID)
	if err != nil {
		log.Fatalf("❌ Failed to create the bot: %v", err)
	}
	if err := bot.Start(); err != nil {
		log.Fatalf("❌ Failed to start the bot: %v", err)
	}
	defer bot.Stop()
	fmt.Println("✅ Bot connected successfully!")

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())

	routes.RegisterRowRoutes(app)

	fmt.Println("🚀 Server running on port " + cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
