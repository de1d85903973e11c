// Package character provides the interface for character persistence
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/KirkDiggler/rpg-charforge/internal/repositories/character Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create stores a new character under its id
	// Returns errors.InvalidArgument for a nil character or an empty id
	// Returns errors.AlreadyExists if a character with the same id exists
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by id
	// Returns errors.InvalidArgument for an empty id
	// Returns errors.NotFound if the character doesn't exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Mutate runs an atomic read-modify-write on one character
	// Returns errors.NotFound if the character doesn't exist
	// Returns the error of Fn unchanged when Fn aborts
	Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error)

	// Delete removes a character and its index entry
	// Returns errors.InvalidArgument for an empty id
	// Returns errors.NotFound if the character doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns every stored character in creation order
	// Returns errors.Internal for storage failures
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *dnd5e.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *dnd5e.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *dnd5e.Character
}

// MutateFunc computes the next character from the stored one. It may run
// more than once against Redis and must not have side effects.
type MutateFunc func(current *dnd5e.Character) (*dnd5e.Character, error)

// MutateInput defines the input for mutating a character
type MutateInput struct {
	ID string
	Fn MutateFunc
}

// MutateOutput defines the output for mutating a character
type MutateOutput struct {
	Character *dnd5e.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct {
	// Empty for now, can be extended later
}

// ListInput defines the input for listing characters
type ListInput struct{}

// ListOutput defines the output for listing characters
type ListOutput struct {
	Characters []*dnd5e.Character
}
