package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"topicpulse/internal/config"
	"topicpulse/internal/logging"
)

type fakeServer struct {
	listenErr   error
	shutdownErr error
	shutdowns   int
}

func (f *fakeServer) ListenAndServe() error { return f.listenErr }

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns++
	return f.shutdownErr
}

func serverConfig() config.ServerConfig {
	return config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}
}

func TestServeReturnsListenError(t *testing.T) {
	srv := &fakeServer{listenErr: errors.New("address already in use")}

	cleaned := false
	err := Serve(srv, serverConfig(), logging.Discard(), func(context.Context) error {
		cleaned = true
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "address already in use") {
		t.Fatalf("Serve() = %v, want listen error", err)
	}
	if cleaned || srv.shutdowns != 0 {
		t.Fatal("cleanup must not run when the server never started")
	}
}

func TestServeRunsCleanupInOrder(t *testing.T) {
	srv := &fakeServer{listenErr: http.ErrServerClosed}

	var order []string
	err := Serve(srv, serverConfig(), logging.Discard(),
		func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("cleanup ctx has no deadline")
			}
			order = append(order, "scheduler")
			return nil
		},
		func(context.Context) error {
			order = append(order, "publisher")
			return errors.New("flush failed")
		},
	)

	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Fatalf("Serve() = %v, want cleanup error", err)
	}
	if srv.shutdowns != 1 {
		t.Fatalf("shutdowns = %d, want 1", srv.shutdowns)
	}
	if strings.Join(order, ",") != "scheduler,publisher" {
		t.Fatalf("cleanup order = %v", order)
	}
}
