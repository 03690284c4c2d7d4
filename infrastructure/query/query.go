// Package query builds vector store filters from memory search parameters.
package query

import (
	"github.com/felixgeelhaar/agent-memory/domain/vector"
	"github.com/felixgeelhaar/agent-memory/infrastructure/mapper"
)

// Params are the filterable attributes of a memory query. Empty strings
// and nil pointers contribute no condition.
type Params struct {
	TableName string
	RoomID    string
	AgentID   string
	Unique    *bool

	// Start and End bound createdAt in epoch milliseconds, inclusive.
	Start *int64
	End   *int64
}

// BuildFilter returns a conjunction of the conditions implied by p, in
// the order type, roomId, agentId, unique, createdAt. It returns nil when
// p selects everything.
func BuildFilter(p Params) *vector.Filter {
	var must []vector.Condition

	if p.TableName != "" {
		must = append(must, vector.MatchKeyword(mapper.FieldType, p.TableName))
	}
	if p.RoomID != "" {
		must = append(must, vector.MatchKeyword(mapper.FieldRoomID, p.RoomID))
	}
	if p.AgentID != "" {
		must = append(must, vector.MatchKeyword(mapper.FieldAgentID, p.AgentID))
	}
	if p.Unique != nil {
		must = append(must, vector.MatchBool(mapper.FieldUnique, *p.Unique))
	}
	if p.Start != nil || p.End != nil {
		must = append(must, vector.RangeCondition(mapper.FieldCreatedAt, toFloat(p.Start), toFloat(p.End)))
	}

	if len(must) == 0 {
		return nil
	}
	return &vector.Filter{Must: must}
}

func toFloat(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
