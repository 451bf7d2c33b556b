package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixTask)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"event", PrefixEvent},
		{"task", PrefixTask},
		{"address", PrefixAddress},
		{"subscriber", PrefixSubscriber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Generate(tt.prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, tt.prefix+"-"))
			// prefix + hyphen + 21 nanoid chars
			assert.Len(t, id, len(tt.prefix)+1+21)
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixEvent)
		assert.True(t, strings.HasPrefix(id, "evt-"))
	})
}

func TestSequence(t *testing.T) {
	gen := Sequence()

	assert.Equal(t, "task-1", gen(PrefixTask))
	assert.Equal(t, "task-2", gen(PrefixTask))
	assert.Equal(t, "evt-1", gen(PrefixEvent))
}
