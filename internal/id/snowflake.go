package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the snowflake node. Only the first call has any effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a time-ordered int64 id. It falls back to node 1 when Init was
// never called, which is what tests and the CLI rely on.
func New() int64 {
	_ = Init(1)
	return node.Generate().Int64()
}

// Parse reads the string form produced by snowflake.ID.String.
func Parse(s string) (int64, error) {
	sid, err := snowflake.ParseString(s)
	if err != nil {
		return 0, err
	}
	return sid.Int64(), nil
}
