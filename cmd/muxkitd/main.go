// muxkitd is the background daemon that owns every session and pane.
// Clients (muxkit) find or start it automatically via
// internal/server.EnsureRunning; running it by hand is only needed for
// debugging.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LatosProject/muxkit/internal/logx"
	"github.com/LatosProject/muxkit/internal/server"
	"github.com/LatosProject/muxkit/internal/sockpath"
)

func main() {
	sock := flag.String("sock", "", "socket path to listen on (default: resolved per-user path)")
	flag.Parse()

	socketPath := *sock
	if socketPath == "" {
		p, err := sockpath.Socket()
		if err != nil {
			log.Fatalf("muxkitd: %v", err)
		}
		socketPath = p
	}

	dir, err := sockpath.Dir()
	if err != nil {
		log.Fatalf("muxkitd: %v", err)
	}
	logger := logx.New("muxkitd", dir)

	s := server.New(logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("muxkitd: received %v, shutting down", sig)
		s.Stop()
		os.Remove(socketPath)
		os.Exit(0)
	}()

	if err := s.Run(socketPath); err != nil {
		logger.Errorf("muxkitd: run: %v", err)
		os.Exit(1)
	}
}
