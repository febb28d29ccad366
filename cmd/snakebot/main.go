// Command snakebot is a headless client that joins a snake server and steers
// greedily towards the food until its snake dies.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tyrowin/gosnake/internal/client"
	"github.com/Tyrowin/gosnake/internal/protocol"
)

func main() {
	var (
		addr    string
		timeout time.Duration
	)
	flag.StringVar(&addr, "server", "localhost:14300", "snake server address")
	flag.DurationVar(&timeout, "dial-timeout", 5*time.Second, "connection timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	c, err := client.Dial(dialCtx, addr)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.WaitJoined(); err != nil {
		log.Fatalf("Failed to join: %v", err)
	}
	log.Printf("Joined as snake %d with %d snakes on the board", c.World.OwnID, len(c.World.Snakes))

	longest := 0
	for {
		p, err := c.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				log.Printf("Connection closed; longest length %d", longest)
				return
			}
			if errors.Is(err, protocol.ErrUnknownType) || errors.Is(err, protocol.ErrTruncated) {
				log.Printf("Warning: skipping bad frame: %v", err)
				continue
			}
			log.Fatalf("Read failed: %v", err)
		}

		if p.Type() != protocol.TypeHeadUpdate {
			continue
		}
		own, ok := c.World.Own()
		if !ok {
			log.Printf("Snake died; longest length %d", longest)
			return
		}
		if own.Len() > longest {
			longest = own.Len()
			log.Printf("Length %d", longest)
		}
		if _, err := c.Steer(c.World.NextMove(c.Direction())); err != nil {
			log.Fatalf("Steer failed: %v", err)
		}
	}
}
