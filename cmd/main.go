// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/agrirobotics/datalake/internal/config"
	"github.com/agrirobotics/datalake/internal/server"
	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting AgriBot Data Lake API v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    ___           _ ____        __ ",
		"   /   | ____ ___(_) __ )____  / /_",
		"  / /| |/ __ `/ __/ / __  / __ \\/ __/",
		" / ___ / /_/ / / / / /_/ / /_/ / /_  ",
		"/_/  |_\\__, /_/ /_/_____/\\____/\\__/  ",
		"      /____/ data lake ............  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
