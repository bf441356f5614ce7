package store_test

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"go-restaurant-sync/internal/handler"
	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/repository"
	"go-restaurant-sync/internal/router"
	"go-restaurant-sync/internal/service"
	"go-restaurant-sync/internal/store"
	"go-restaurant-sync/internal/ws"
	"go-restaurant-sync/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDocumentServer runs a document server on a loopback port backed by an
// in-memory database and returns its base URL.
func startDocumentServer(t *testing.T) string {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}))

	var docService service.DocumentService
	hub := ws.NewHub(func(key string) ([]byte, error) { return docService.Payload(key) })
	docService = service.NewDocumentService(repository.NewDocumentRepo(db), hub)
	go hub.Run()

	app := router.NewDocumentServer(handler.NewDocumentHandler(docService, hub))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)

	t.Cleanup(func() {
		_ = app.Shutdown()
		hub.Stop()
	})
	return "http://" + ln.Addr().String()
}

func next(t *testing.T, ch <-chan store.Document) store.Document {
	t.Helper()
	select {
	case doc, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return doc
	case <-time.After(3 * time.Second):
		t.Fatal("no document delivered")
		return store.Document{}
	}
}

func state(stamp int64) model.SystemState {
	s := model.SystemState{
		Tables:           []model.Table{{ID: 1, Status: model.TableAvailable}},
		LastGlobalUpdate: stamp,
	}
	s.Normalize()
	return s
}

func TestRemoteGetPut(t *testing.T) {
	ctx := context.Background()
	remote := store.NewRemote(startDocumentServer(t))

	doc, err := remote.Get(ctx, "restaurant_state")
	require.NoError(t, err)
	assert.False(t, doc.Exists)

	require.NoError(t, remote.Put(ctx, "restaurant_state", state(100)))

	doc, err = remote.Get(ctx, "restaurant_state")
	require.NoError(t, err)
	require.True(t, doc.Exists)
	assert.Equal(t, int64(100), doc.State.LastGlobalUpdate)
	require.Len(t, doc.State.Tables, 1)
}

func TestRemoteSubscribeSeesEveryWriter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	baseURL := startDocumentServer(t)
	reader := store.NewRemote(baseURL)
	writer := store.NewRemote(baseURL)

	ch, err := reader.Subscribe(ctx, "k")
	require.NoError(t, err)
	assert.False(t, next(t, ch).Exists)

	require.NoError(t, writer.Put(ctx, "k", state(1)))
	doc := next(t, ch)
	require.True(t, doc.Exists)
	assert.Equal(t, int64(1), doc.State.LastGlobalUpdate)

	// The writer's own subscription gets its write back too.
	own, err := writer.Subscribe(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next(t, own).State.LastGlobalUpdate)

	require.NoError(t, writer.Put(ctx, "k", state(2)))
	assert.Equal(t, int64(2), next(t, own).State.LastGlobalUpdate)
	assert.Equal(t, int64(2), next(t, ch).State.LastGlobalUpdate)
}

func TestRemoteSubscribeFailsWithoutServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = store.NewRemote("http://"+addr).Subscribe(ctx, "k")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, err := store.NewRedis(ctx, redisURL)
	require.NoError(t, err)
	defer r.Close()

	key := "test_" + time.Now().Format("150405.000000")
	ch, err := r.Subscribe(ctx, key)
	require.NoError(t, err)
	assert.False(t, next(t, ch).Exists)

	require.NoError(t, r.Put(ctx, key, state(7)))
	assert.Equal(t, int64(7), next(t, ch).State.LastGlobalUpdate)

	doc, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, doc.Exists)
}
