package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"chat.top_k": 7}, map[string]any{"index.path": "idx"})

	assert.Equal(t, 7, store.GetInt("chat.top_k"))
	assert.Equal(t, "idx", store.GetString("index.path"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key", "original"))
	require.NoError(t, store.Set("key", "updated"))

	val, ok := store.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"string":    "value",
		"int":       42,
		"int64":     int64(9),
		"float":     0.7,
		"float_int": 2,
		"bool":      true,
		"strings":   []string{"a", "b"},
		"anys":      []any{"x", 1, "y"},
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("string"), "value"},
		{"string wrong type", store.GetString("int"), ""},
		{"int", store.GetInt("int"), 42},
		{"int from int64", store.GetInt("int64"), 9},
		{"int from float", store.GetInt("float"), 0},
		{"int missing", store.GetInt("missing"), 0},
		{"float", store.GetFloat("float"), 0.7},
		{"float from int", store.GetFloat("float_int"), 2.0},
		{"float wrong type", store.GetFloat("string"), 0.0},
		{"bool", store.GetBool("bool"), true},
		{"bool missing", store.GetBool("missing"), false},
		{"string slice", store.GetStringSlice("strings"), []string{"a", "b"}},
		{"any slice keeps strings", store.GetStringSlice("anys"), []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Nil(t, store.GetStringSlice("bool"))
}

func TestConfigStore_SaveLoadAreNoops(t *testing.T) {
	store := NewConfigStore(map[string]any{"k": "v"})

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
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
