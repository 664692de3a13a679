package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"postboard/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServerGracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv, ln, discardLogger()) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/", ln.Addr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeOptionsApply(t *testing.T) {
	cmd := newServeCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9000", "--store", "mongo", "--mongo-uri", "mongodb://db"}))

	cfg := config.Config{Port: "5001", StoreDriver: "badger", CORSOrigin: "*"}
	var opts serveOptions
	opts.port, _ = cmd.Flags().GetString("port")
	opts.store, _ = cmd.Flags().GetString("store")
	opts.mongoURI, _ = cmd.Flags().GetString("mongo-uri")
	opts.apply(cmd, &cfg)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, config.StoreMongo, cfg.Store())
	assert.Equal(t, "mongodb://db", cfg.MongoURI)
	assert.Equal(t, "*", cfg.CORSOrigin)
}

func TestNewBlobStore(t *testing.T) {
	store, err := newBlobStore(config.Config{BlobDriver: config.BlobLocal, UploadsDir: t.TempDir(), Port: "5001"}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = newBlobStore(config.Config{BlobDriver: "s3"}, discardLogger())
	assert.Error(t, err)
}

func TestOpenStoresBadger(t *testing.T) {
	st, err := openStores(context.Background(), config.Config{StoreDriver: config.StoreBadger, DataDir: t.TempDir()}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, st.posts)
	assert.NotNil(t, st.users)
	assert.NoError(t, st.close(context.Background()))
}
