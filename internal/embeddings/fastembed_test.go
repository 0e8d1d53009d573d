//go:build cgo

package embeddings

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFastEmbedProvider_UnsupportedModel(t *testing.T) {
	_, err := NewFastEmbedProvider(FastEmbedConfig{Model: "not-a-model"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLocateONNXRuntime(t *testing.T) {
	t.Setenv("ONNX_PATH", "")

	dir := t.TempDir()
	require.NoError(t, locateONNXRuntime(dir))
	assert.Empty(t, os.Getenv("ONNX_PATH"), "missing library must not set ONNX_PATH")

	name, ok := onnxLibraryNames[runtime.GOOS]
	if !ok {
		t.Skip("platform without a managed ONNX runtime")
	}
	lib := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(lib, []byte{}, 0o600))
	require.NoError(t, locateONNXRuntime(dir))
	assert.Equal(t, lib, os.Getenv("ONNX_PATH"))
}

// TestFastEmbedProvider_Embed downloads the model; run with FASTEMBED_TEST=1.
func TestFastEmbedProvider_Embed(t *testing.T) {
	if os.Getenv("FASTEMBED_TEST") == "" {
		t.Skip("set FASTEMBED_TEST=1 to run (downloads the model)")
	}
	p, err := NewFastEmbedProvider(FastEmbedConfig{CacheDir: t.TempDir()})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 384, p.Dimension())
	vec, err := p.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Len(t, vec, 384)
	assert.InDelta(t, 1.0, norm(vec), 1e-4)
}
