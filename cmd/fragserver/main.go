// Command fragserver serves the sharded student/grade operations over HTTP.
//
// Configuration comes from the environment (and an optional .env file):
//
//	FRAGMENT_COUNT=3 FRAGMENT_DRIVER=postgres SERVER_ADDR=:8080 fragserver
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/gradeshard/internal/api"
	"github.com/dreamware/gradeshard/internal/config"
	"github.com/dreamware/gradeshard/internal/fragment"
	"github.com/dreamware/gradeshard/internal/health"
	"github.com/dreamware/gradeshard/internal/sharding"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

func main() {
	cfg, err := config.Load()
	if err != nil {
		logFatal("config: %v", err)
		return
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		logFatal("startup: %v", err)
		return
	}

	s := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("fragserver listening on %s with %d fragments", cfg.ServerAddr, cfg.FragmentCount)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logFatal("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	a.close()
	log.Println("fragserver stopped")
}

// app holds everything the server owns
type app struct {
	client  *sharding.Client
	monitor *health.Monitor
	server  *api.Server
}

// newApp connects to every fragment, optionally creates the schema, and
// starts the health monitor.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	set, err := fragment.OpenSet(ctx, cfg.FragmentConfigs())
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := set.Migrate(ctx); err != nil {
			_ = set.Close()
			return nil, err
		}
		log.Printf("schema migrated on %d fragments", set.Len())
	}

	client, err := sharding.New(set, sharding.WithTimeout(cfg.QueryTimeout))
	if err != nil {
		_ = set.Close()
		return nil, err
	}

	monitor := health.NewMonitor(set, cfg.HealthInterval)
	monitor.SetOnUnhealthy(func(id int) {
		log.Printf("fragment %d is unhealthy; operations for its students will fail until it recovers", id)
	})
	if err := monitor.Start(); err != nil {
		_ = set.Close()
		return nil, err
	}

	return &app{
		client:  client,
		monitor: monitor,
		server:  api.NewServer(client, monitor),
	}, nil
}

func (a *app) close() {
	a.monitor.Stop()
	if err := a.client.Close(); err != nil {
		log.Printf("close fragments: %v", err)
	}
}
