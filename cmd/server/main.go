package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tyrowin/gosnake/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Starting snake server...")

	config := server.NewConfigFromEnv()

	srv := server.New(config)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received %s", sig)

	if err := srv.Shutdown(shutdownTimeout); err != nil {
		log.Printf("Shutdown did not complete cleanly: %v", err)
		os.Exit(1)
	}
}
