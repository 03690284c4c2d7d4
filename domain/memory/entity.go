package memory

import "context"

// Account is a user or agent identity.
type Account struct {
	ID       string
	Name     string
	Username string
	Email    string
	Details  map[string]any
}

// Goal tracks an objective pursued inside a room.
type Goal struct {
	ID          string
	RoomID      string
	UserID      string
	Name        string
	Status      string
	Objectives  []string
	Description string
}

// Participant links a user to a room.
type Participant struct {
	ID        string
	UserID    string
	RoomID    string
	UserState string
}

// Relationship links two users.
type Relationship struct {
	ID     string
	UserA  string
	UserB  string
	UserID string
	RoomID string
	Status string
}

// EntityStore is the relational surface of the runtime's database
// contract. The vector adapter carries no logic for it; its
// implementation returns ErrUnsupported from every method.
type EntityStore interface {
	GetAccountByID(ctx context.Context, userID string) (*Account, error)
	CreateAccount(ctx context.Context, a Account) (bool, error)

	GetGoals(ctx context.Context, roomID string, onlyInProgress bool, count int) ([]Goal, error)
	CreateGoal(ctx context.Context, g Goal) error
	UpdateGoal(ctx context.Context, g Goal) error
	RemoveGoal(ctx context.Context, goalID string) error
	RemoveAllGoals(ctx context.Context, roomID string) error

	CreateRoom(ctx context.Context, roomID string) (string, error)
	RemoveRoom(ctx context.Context, roomID string) error
	GetRoom(ctx context.Context, roomID string) (string, error)
	GetRoomsForParticipant(ctx context.Context, userID string) ([]string, error)

	AddParticipant(ctx context.Context, userID, roomID string) (bool, error)
	RemoveParticipant(ctx context.Context, userID, roomID string) (bool, error)
	GetParticipantsForAccount(ctx context.Context, userID string) ([]Participant, error)
	GetParticipantsForRoom(ctx context.Context, roomID string) ([]string, error)
	GetParticipantUserState(ctx context.Context, roomID, userID string) (string, error)
	SetParticipantUserState(ctx context.Context, roomID, userID, state string) error

	CreateRelationship(ctx context.Context, userA, userB string) (bool, error)
	GetRelationship(ctx context.Context, userA, userB string) (*Relationship, error)
	GetRelationships(ctx context.Context, userID string) ([]Relationship, error)

	RemoveMemory(ctx context.Context, memoryID, tableName string) error
	RemoveAllMemories(ctx context.Context, roomID, tableName string) error
	CountMemories(ctx context.Context, roomID string, unique bool, tableName string) (int, error)
}
