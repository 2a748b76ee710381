// Command demoserver serves the 99 CENTS Car Stereo Player page for trying
// out the checks.
// Usage: go run ./cmd/demoserver [port] [version]
// Default port: 8080. Version 2 serves a regressed page.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/raysh454/stereocheck/internal/demoserver"
	"github.com/raysh454/stereocheck/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}
	if len(os.Args) > 2 {
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("Invalid version: %s", os.Args[2])
		}
		cfg.InitialVersion = version
	}

	fmt.Println("===========================================")
	fmt.Println("   99 CENTS Car Stereo Player - Demo")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Serves the stereo page, its faceplate and placeholder")
	fmt.Println("tracks so the backend, frontend and report checks have")
	fmt.Println("something to run against.")
	fmt.Println()
	fmt.Println("Versions (switch with POST /demo/version version=N):")
	fmt.Println("  1 - complete page")
	fmt.Println("  2 - regressed page (no debug shortcut, track3 missing)")
	fmt.Println()

	server, err := demoserver.NewDemoServer(cfg, logging.NewStdoutLogger("demoserver"))
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
