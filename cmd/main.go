// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	"github.com/smartbus-iot/sensor-hub/internal/config"
	"github.com/smartbus-iot/sensor-hub/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

// @title SmartBus Sensor Hub API
// @version 1.0
// @description Ingests temperature and humidity readings from bus sensors and relays them to ThingSpeak.
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting SmartBus Sensor Hub v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	nuts.L.Infof("[Main] Using %s reading store", cfg.Store.Driver)

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and moves the cursor home.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   _____                      __  ____            ",
		"  / ___/____ ___  ____ ______/ /_/ __ )__  _______",
		"  \\__ \\/ __ `__ \\/ __ `/ ___/ __/ __  / / / / ___/",
		" ___/ / / / / / / /_/ / /  / /_/ /_/ / /_/ (__  ) ",
		"/____/_/ /_/ /_/\\__,_/_/   \\__/_____/\\__,_/____/  ",
		"..................................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
