package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("generation.provider", "gemini"))
	require.NoError(t, store.Set("generation.provider", "openai"))

	val, ok := store.Get("generation.provider")
	assert.True(t, ok)
	assert.Equal(t, "openai", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("name", "fixpath")
	_ = store.Set("number", 42)

	assert.Equal(t, "fixpath", store.GetString("name"))
	assert.Empty(t, store.GetString("number"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("int", 5)
	_ = store.Set("int64", int64(15))
	_ = store.Set("float", 20.0)
	_ = store.Set("string", "5")

	assert.Equal(t, 5, store.GetInt("int"))
	assert.Equal(t, 15, store.GetInt("int64"))
	assert.Equal(t, 20, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("string"))
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("float", 0.15)
	_ = store.Set("int", 2)
	_ = store.Set("int64", int64(3))
	_ = store.Set("string", "0.5")

	assert.InDelta(t, 0.15, store.GetFloat("float"), 1e-9)
	assert.InDelta(t, 2.0, store.GetFloat("int"), 1e-9)
	assert.InDelta(t, 3.0, store.GetFloat("int64"), 1e-9)
	assert.Zero(t, store.GetFloat("string"))
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("string", "10s")
	_ = store.Set("duration", 250*time.Millisecond)
	_ = store.Set("bad", "soon")
	_ = store.Set("int", 10)

	assert.Equal(t, 10*time.Second, store.GetDuration("string"))
	assert.Equal(t, 250*time.Millisecond, store.GetDuration("duration"))
	assert.Zero(t, store.GetDuration("bad"))
	assert.Zero(t, store.GetDuration("int"))
	assert.Zero(t, store.GetDuration("missing"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("on", true)
	_ = store.Set("string", "true")

	assert.True(t, store.GetBool("on"))
	assert.False(t, store.GetBool("string"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("typed", []string{"a", "b"})
	_ = store.Set("untyped", []any{"a", 1, "b"})
	_ = store.Set("scalar", "a")

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("typed"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("untyped"))
	assert.Nil(t, store.GetStringSlice("scalar"))
}

func TestConfigStore_SaveAndLoad_NoOp(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("key", "value")

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "value", store.GetString("key"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
