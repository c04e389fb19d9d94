package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnowflakeIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewSnowflakeID()
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSnowflakeNode(t *testing.T) {
	assert.NotNil(t, snowflakeNode(""))
	assert.NotNil(t, snowflakeNode("7"))
	// node ids above 1023 are rejected by snowflake
	assert.Nil(t, snowflakeNode("5000"))
}

func TestNewKSUIDAndRequestID(t *testing.T) {
	assert.Len(t, NewKSUID(), 27)
	assert.NotEqual(t, NewKSUID(), NewKSUID())
	assert.Len(t, NewRequestID(), 36)
}
