package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"orb-arena/internal/api"
	"orb-arena/internal/config"
	"orb-arena/internal/game"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 no .env file found, using environment variables only")
	}

	appConfig := config.Load()
	worldCfg := appConfig.World
	serverCfg := appConfig.Server

	log.Println("🎮 ================================")
	log.Println("🎮  ORB ARENA - GAME SERVER")
	log.Println("🎮 ================================")
	log.Printf("🗺️ Map %dx%d, %d TPS, %d orbs",
		int(worldCfg.Width), int(worldCfg.Height), worldCfg.TickRate, worldCfg.OrbCap)

	engine := game.NewEngine(game.EngineConfig{
		MapWidth:  worldCfg.Width,
		MapHeight: worldCfg.Height,
		TickRate:  worldCfg.TickRate,
		OrbCap:    worldCfg.OrbCap,
	})

	server := api.NewServer(engine)

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ debug server disabled: %v", err)
		}
	}

	engine.Start()

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready. Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	server.Stop()
	engine.Stop()
	log.Println("👋 Goodbye!")
}
