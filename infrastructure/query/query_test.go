package query

import (
	"reflect"
	"testing"

	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

func ptr[T any](v T) *T { return &v }

func TestBuildFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Params
		want   *vector.Filter
	}{
		{
			name:   "empty",
			params: Params{},
			want:   nil,
		},
		{
			name: "table room unique range",
			params: Params{
				TableName: "facts",
				RoomID:    "r1",
				Unique:    ptr(true),
				Start:     ptr(int64(100)),
				End:       ptr(int64(200)),
			},
			want: &vector.Filter{Must: []vector.Condition{
				{Key: "type", Match: &vector.Match{Keyword: "facts"}},
				{Key: "roomId", Match: &vector.Match{Keyword: "r1"}},
				{Key: "unique", Match: &vector.Match{Keyword: "true"}},
				{Key: "createdAt", Range: &vector.Range{Gte: ptr(100.0), Lte: ptr(200.0)}},
			}},
		},
		{
			name:   "agent and unique false",
			params: Params{AgentID: "a1", Unique: ptr(false)},
			want: &vector.Filter{Must: []vector.Condition{
				{Key: "agentId", Match: &vector.Match{Keyword: "a1"}},
				{Key: "unique", Match: &vector.Match{Keyword: "false"}},
			}},
		},
		{
			name:   "open ended range",
			params: Params{Start: ptr(int64(5))},
			want: &vector.Filter{Must: []vector.Condition{
				{Key: "createdAt", Range: &vector.Range{Gte: ptr(5.0)}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := BuildFilter(tt.params)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
