package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Collection adds the vector collection name.
func Collection(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("collection", name)
	}
}

// AgentID adds the owning agent.
func AgentID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("agent_id", id)
	}
}

// RoomID adds the owning room.
func RoomID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("room_id", id)
	}
}

// Table adds the memory table tag.
func Table(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("table", name)
	}
}

// PointID adds a normalized point identifier.
func PointID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("point_id", id)
	}
}

// Operation adds the adapter operation name.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Backend adds a storage backend name.
func Backend(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("backend", name)
	}
}

// Count adds a result count.
func Count(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("count", n)
	}
}

// Unique adds the resolved uniqueness flag of a memory.
func Unique(u bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("unique", u)
	}
}

// Cached reports whether a result came from the cache.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field. A nil error adds nothing.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
