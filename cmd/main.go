// Package main is the production entry point for GoPulse.
//
// GoPulse plays an audio file and draws three rings of points that ripple
// with the lows, mids and highs of the music.
//
// Build:
//
//	go build -o build/gopulse ./cmd
//
// Run:
//
//	./build/gopulse
//
// Set GOPULSE_MOCK_AUDIO=1 to run without a sound device; the rings are then
// driven by a simulated signal.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tejashwikalptaru/gopulse/internal/app"
)

func main() {
	// Create default configuration
	config := app.DefaultConfig()

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}
