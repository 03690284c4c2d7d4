package vector

import "strconv"

// Filter is a conjunction: every condition in Must has to hold.
type Filter struct {
	Must []Condition
}

// IsEmpty reports whether the filter has no conditions.
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.Must) == 0
}

// Condition is one predicate. Exactly one of Match, Range or HasID is set.
type Condition struct {
	Key   string
	Match *Match
	Range *Range
	HasID []string
}

// Match is an exact keyword equality.
type Match struct {
	Keyword string
}

// Range bounds a numeric payload field. Nil bounds are open.
type Range struct {
	Gte *float64
	Lte *float64
}

// MatchKeyword builds an equality condition on key.
func MatchKeyword(key, value string) Condition {
	return Condition{Key: key, Match: &Match{Keyword: value}}
}

// MatchBool builds an equality condition comparing the string form of b.
func MatchBool(key string, b bool) Condition {
	return MatchKeyword(key, strconv.FormatBool(b))
}

// RangeCondition builds a range condition on key.
func RangeCondition(key string, gte, lte *float64) Condition {
	return Condition{Key: key, Range: &Range{Gte: gte, Lte: lte}}
}

// HasIDCondition restricts results to the given point ids.
func HasIDCondition(ids ...string) Condition {
	return Condition{HasID: ids}
}
