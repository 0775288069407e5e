package idutil

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// NextID returns a time-ordered int64 id. Ids generated in the same
// millisecond are ordered by an internal sequence, so id order always
// follows creation order.
func NextID() int64 {
	return node.Generate().Int64()
}

func TimeOfID(id int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(id).Time())
}
