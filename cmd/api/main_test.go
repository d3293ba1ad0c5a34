package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitingboard/api/internal/config"
)

func TestShutdownDrainsInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ctxErr := make(chan error, 1)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		ctxErr <- r.Context().Err()
		w.WriteHeader(http.StatusCreated)
	})

	hookRan := make(chan struct{})
	srv := newHTTPServer(config.ServerConfig{}, handler, func() { close(hookRan) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)

	status := make(chan int, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/providers", "application/json", nil)
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()
	<-started

	shutdownErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	select {
	case <-hookRan:
	case <-time.After(time.Second):
		t.Fatal("shutdown hook did not run")
	}
	close(release)

	assert.NoError(t, <-ctxErr)
	assert.Equal(t, http.StatusCreated, <-status)
	assert.NoError(t, <-shutdownErr)

	err = srv.Serve(ln)
	assert.True(t, errors.Is(err, http.ErrServerClosed))
}
