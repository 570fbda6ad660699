package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"library-lending-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPServer(t *testing.T) {
	h := http.NewServeMux()
	srv := newHTTPServer(config.AppConfig{Port: "8088"}, h)

	assert.Equal(t, ":8088", srv.Addr)
	assert.Equal(t, 60*time.Second, srv.WriteTimeout)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.NotNil(t, srv.Handler)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRunServer(t *testing.T) {
	t.Run("stops cleanly when context is cancelled", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		srv := &http.Server{Addr: freeAddr(t), Handler: mux}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- runServer(ctx, srv, time.Second) }()

		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + srv.Addr + "/health")
			if err != nil {
				return false
			}
			resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 2*time.Second, 20*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("runServer did not return after cancel")
		}
	})

	t.Run("returns listener error instead of exiting", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer l.Close()

		srv := &http.Server{Addr: l.Addr().String(), Handler: http.NewServeMux()}
		err = runServer(context.Background(), srv, time.Second)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listen "+srv.Addr)
	})
}
