package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petstore-service/internal/service"
)

func newDiskImageStore(t *testing.T) *service.DiskImageStore {
	t.Helper()
	store, err := service.NewDiskImageStore(t.TempDir(), 0)
	require.NoError(t, err)
	return store
}

func TestDiskImageStore_Filename(t *testing.T) {
	store := newDiskImageStore(t)

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "jpg kept", url: "http://pics/rex.jpg", expected: "Rex-GoldenRetriever.jpg"},
		{name: "jpeg normalized", url: "http://pics/rex.jpeg", expected: "Rex-GoldenRetriever.jpg"},
		{name: "png kept", url: "http://pics/rex.png", expected: "Rex-GoldenRetriever.png"},
		{name: "gif forced to jpg", url: "http://pics/rex.gif", expected: "Rex-GoldenRetriever.jpg"},
		{name: "no extension", url: "http://pics/rex", expected: "Rex-GoldenRetriever.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, store.Filename("Rex", "Golden Retriever", tt.url))
		})
	}
}

func TestDiskImageStore_DownloadAndServe(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("picture-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	store, err := service.NewDiskImageStore(dir, 0)
	require.NoError(t, err)

	// Act
	err = store.Download(context.Background(), server.URL+"/rex.jpg", "Rex-Bulldog.jpg")

	// Assert
	assert.NoError(t, err)

	path, ok := store.Path("Rex-Bulldog.jpg")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "Rex-Bulldog.jpg"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "picture-bytes", string(content))
}

func TestDiskImageStore_DownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := newDiskImageStore(t)

	err := store.Download(context.Background(), server.URL+"/ghost.jpg", "ghost.jpg")

	assert.Error(t, err)
	_, ok := store.Path("ghost.jpg")
	assert.False(t, ok)
}

func TestDiskImageStore_RemoveMissingIsQuiet(t *testing.T) {
	store := newDiskImageStore(t)

	// No debe fallar ni loguear error fatal
	store.Remove("never-existed.jpg")
	store.Remove("")

	_, ok := store.Path("never-existed.jpg")
	assert.False(t, ok)
}

func TestDiskImageStore_RemoveDeletesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := service.NewDiskImageStore(dir, 0)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Rex-Bulldog.jpg"), []byte("x"), 0o644))

	store.Remove("Rex-Bulldog.jpg")

	_, ok := store.Path("Rex-Bulldog.jpg")
	assert.False(t, ok)
}
