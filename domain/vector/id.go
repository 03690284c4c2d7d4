package vector

import "github.com/google/uuid"

// PointNamespace is the fixed namespace for name-based point ids.
var PointNamespace = uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962")

// NormalizeID maps an external identifier to a version 5 UUID in
// PointNamespace. The same input always yields the same id.
func NormalizeID(externalID string) string {
	return uuid.NewSHA1(PointNamespace, []byte(externalID)).String()
}

// NormalizeIDs applies NormalizeID to each id.
func NormalizeIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = NormalizeID(id)
	}
	return out
}

// NewPointID returns a random identifier for records that arrive without one.
func NewPointID() string {
	return uuid.NewString()
}
