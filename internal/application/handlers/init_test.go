package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/domain/mocks"
	"github.com/ersonp/kin-core/internal/infrastructure/config"
)

func TestInitHandler_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()
	index := mocks.NewEdgeIndex()

	handler := NewInitHandler(mocks.NewRelationalDB(), index)

	result, err := handler.Handle(t.Context(), tmpDir, "Lee Family", "maternal side")

	require.NoError(t, err)
	assert.True(t, result.Initialized)
	assert.Equal(t, "kin_lee_family", result.Collection)
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Equal(t, 1, index.EnsureCollectionCallCount)
	assert.True(t, config.Exists(tmpDir))

	trees, err := config.LoadTrees(tmpDir)
	require.NoError(t, err)
	entry, err := trees.Get("Lee Family")
	require.NoError(t, err)
	assert.Equal(t, "maternal side", entry.Description)
}

func TestInitHandler_Handle_SecondTreeKeepsConfig(t *testing.T) {
	tmpDir := t.TempDir()
	handler := NewInitHandler(mocks.NewRelationalDB(), nil)

	_, err := handler.Handle(t.Context(), tmpDir, "first", "")
	require.NoError(t, err)

	result, err := handler.Handle(t.Context(), tmpDir, "second", "")
	require.NoError(t, err)
	assert.False(t, result.Initialized)

	trees, err := config.LoadTrees(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, trees.Names())
}

func TestInitHandler_Handle_AlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()
	handler := NewInitHandler(mocks.NewRelationalDB(), nil)

	_, err := handler.Handle(t.Context(), tmpDir, "lee", "")
	require.NoError(t, err)

	_, err = handler.Handle(t.Context(), tmpDir, "lee", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitHandler_Handle_BlankName(t *testing.T) {
	handler := NewInitHandler(mocks.NewRelationalDB(), nil)

	_, err := handler.Handle(t.Context(), t.TempDir(), "  ", "")
	require.Error(t, err)
}

func TestInitHandler_Handle_CollectionError(t *testing.T) {
	tmpDir := t.TempDir()
	index := mocks.NewEdgeIndex()
	index.Err = errors.New("connection failed")

	handler := NewInitHandler(mocks.NewRelationalDB(), index)

	_, err := handler.Handle(t.Context(), tmpDir, "lee", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating collection")
	assert.Contains(t, err.Error(), "connection failed")

	trees, err := config.LoadTrees(tmpDir)
	require.NoError(t, err)
	assert.False(t, trees.Exists("lee"))
}
