package application

import (
	"context"

	"github.com/felixgeelhaar/agent-memory/domain/memory"
)

// Unsupported is the entity surface a vector store does not provide.
// Every method fails with memory.ErrUnsupported so integration gaps are
// visible to callers instead of reading as empty results.
type Unsupported struct{}

var _ memory.EntityStore = Unsupported{}

func (Unsupported) GetAccountByID(context.Context, string) (*memory.Account, error) {
	return nil, memory.ErrUnsupported
}

func (Unsupported) CreateAccount(context.Context, memory.Account) (bool, error) {
	return false, memory.ErrUnsupported
}

func (Unsupported) GetGoals(context.Context, string, bool, int) ([]memory.Goal, error) {
	return nil, memory.ErrUnsupported
}

func (Unsupported) CreateGoal(context.Context, memory.Goal) error { return memory.ErrUnsupported }
func (Unsupported) UpdateGoal(context.Context, memory.Goal) error { return memory.ErrUnsupported }
func (Unsupported) RemoveGoal(context.Context, string) error      { return memory.ErrUnsupported }
func (Unsupported) RemoveAllGoals(context.Context, string) error  { return memory.ErrUnsupported }

func (Unsupported) CreateRoom(context.Context, string) (string, error) {
	return "", memory.ErrUnsupported
}

func (Unsupported) RemoveRoom(context.Context, string) error { return memory.ErrUnsupported }

func (Unsupported) GetRoom(context.Context, string) (string, error) {
	return "", memory.ErrUnsupported
}

func (Unsupported) GetRoomsForParticipant(context.Context, string) ([]string, error) {
	return nil, memory.ErrUnsupported
}

func (Unsupported) AddParticipant(context.Context, string, string) (bool, error) {
	return false, memory.ErrUnsupported
}

func (Unsupported) RemoveParticipant(context.Context, string, string) (bool, error) {
	return false, memory.ErrUnsupported
}

func (Unsupported) GetParticipantsForAccount(context.Context, string) ([]memory.Participant, error) {
	return nil, memory.ErrUnsupported
}

func (Unsupported) GetParticipantsForRoom(context.Context, string) ([]string, error) {
	return nil, memory.ErrUnsupported
}

func (Unsupported) GetParticipantUserState(context.Context, string, string) (string, error) {
	return "", memory.ErrUnsupported
}

func (Unsupported) SetParticipantUserState(context.Context, string, string, string) error {
	return memory.ErrUnsupported
}

func (Unsupported) CreateRelationship(context.Context, string, string) (bool, error) {
	return false, memory.ErrUnsupported
}

func (Unsupported) GetRelationship(context.Context, string, string) (*memory.Relationship, error) {
	return nil, memory.ErrUnsupported
}

func (Unsupported) GetRelationships(context.Context, string) ([]memory.Relationship, error) {
	return nil, memory.ErrUnsupported
}

func (Unsupported) RemoveMemory(context.Context, string, string) error {
	return memory.ErrUnsupported
}

func (Unsupported) RemoveAllMemories(context.Context, string, string) error {
	return memory.ErrUnsupported
}

func (Unsupported) CountMemories(context.Context, string, bool, string) (int, error) {
	return 0, memory.ErrUnsupported
}
