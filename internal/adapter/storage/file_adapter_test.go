package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/port"
)

func TestFileSlot_SetGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	slot := NewFileSlot(dir)
	ctx := context.Background()

	_, err := slot.Get(ctx, "cart")
	assert.ErrorIs(t, err, port.ErrSlotEmpty)

	require.NoError(t, slot.Set(ctx, "cart", []byte(`[1]`)))
	require.NoError(t, slot.Set(ctx, "cart", []byte(`[2]`)))

	got, err := slot.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "cart.json", entries[0].Name())
}

func TestFileSlot_RejectsPathKeys(t *testing.T) {
	slot := NewFileSlot(t.TempDir())

	for _, key := range []string{"", "../cart", "a/b", `a\b`, ".."} {
		assert.ErrorIs(t, slot.Set(context.Background(), key, []byte(`[]`)), ErrInvalidKey, key)
	}
}

func TestFileSlot_CanceledContext(t *testing.T) {
	slot := NewFileSlot(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, slot.Set(ctx, "cart", []byte(`[]`)), context.Canceled)
}

func TestCartStore_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, _ := newStore(NewFileSlot(dir))
	first.Save(ctx, sampleSnapshot())

	second, _ := newStore(NewFileSlot(dir))
	got := second.Load(ctx)

	require.Len(t, got, 3)
	assert.Equal(t, 4, got.ItemCount())
}
