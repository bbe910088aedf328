package id

import (
	"github.com/bwmarrin/snowflake"
)

// Generator hands out time-ordered int64 ids. Safe for concurrent use.
type Generator struct {
	node *snowflake.Node
}

// New creates a generator for the given node id (0-1023).
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}
