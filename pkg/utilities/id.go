package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewRequestID returns a random UUID used to correlate a request across logs.
func NewRequestID() string {
	return uuid.NewString()
}

// NewSnowflakeID generates a snowflake ID string using a node ID from
// the environment variable SNOWFLAKE_NODE (default 1). The node is created
// once per process so IDs generated concurrently stay unique.
// If the node cannot be initialized it falls back to a KSUID string.
func NewSnowflakeID() string {
	nodeOnce.Do(func() {
		node = snowflakeNode(os.Getenv("SNOWFLAKE_NODE"))
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}

// snowflakeNode returns nil when nodeID is outside snowflake's range.
func snowflakeNode(nodeID string) *snowflake.Node {
	id := int64(1)
	if v, err := strconv.ParseInt(nodeID, 10, 64); err == nil {
		id = v
	}
	n, err := snowflake.NewNode(id)
	if err != nil {
		return nil
	}
	return n
}
