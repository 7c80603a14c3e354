package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/internal/service/chat"
)

func TestRunServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestOpenHistoryDefaultsToMemory(t *testing.T) {
	store, err := openHistory(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	assert.IsType(t, &chat.MemoryStore{}, store)
}
