// Package character defines the interface for character operations
package character

//go:generate mockgen -destination=mock/mock_service.go -package=charactermock github.com/KirkDiggler/rpg-charforge/internal/services/character Service

import (
	"context"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

// Domain events published after a successful write. The event source is the
// character.
const (
	EventCharacterCreated    = "character.created"
	EventCharacterUpdated    = "character.updated"
	EventCharacterDeleted    = "character.deleted"
	EventPortraitGenerated   = "character.portrait_generated"
	EventContextCharacterID  = "character_id"
	EventContextPortraitSize = "portrait_bytes"
)

// Service defines the interface for character operations
type Service interface {
	// Gallery
	ListCharacters(ctx context.Context, input *ListCharactersInput) (*ListCharactersOutput, error)
	GetCharacter(ctx context.Context, input *GetCharacterInput) (*GetCharacterOutput, error)

	// Persistence
	CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*CreateCharacterOutput, error)
	UpdateCharacter(ctx context.Context, input *UpdateCharacterInput) (*UpdateCharacterOutput, error)
	DeleteCharacter(ctx context.Context, input *DeleteCharacterInput) (*DeleteCharacterOutput, error)

	// SaveCharacter is the finalize boundary of the creation wizard: it
	// creates when the id is empty and replaces the stored record otherwise.
	SaveCharacter(ctx context.Context, input *SaveCharacterInput) (*SaveCharacterOutput, error)

	// Portraits. Generation and attachment are separate steps; either can be
	// retried on its own.
	GeneratePortrait(ctx context.Context, input *GeneratePortraitInput) (*GeneratePortraitOutput, error)
	AttachPortrait(ctx context.Context, input *AttachPortraitInput) (*AttachPortraitOutput, error)
	RegeneratePortrait(ctx context.Context, input *RegeneratePortraitInput) (*RegeneratePortraitOutput, error)
}

// ListCharactersInput defines the request for listing characters
type ListCharactersInput struct{}

// ListCharactersOutput defines the response for listing characters
type ListCharactersOutput struct {
	Characters []*dnd5e.Character
}

// GetCharacterInput defines the request for getting a character
type GetCharacterInput struct {
	CharacterID string
}

// GetCharacterOutput defines the response for getting a character
type GetCharacterOutput struct {
	Character *dnd5e.Character
}

// CreateCharacterInput defines the request for creating a character. Any id
// on the character is ignored; a fresh one is assigned.
type CreateCharacterInput struct {
	Character *dnd5e.Character
}

// CreateCharacterOutput defines the response for creating a character
type CreateCharacterOutput struct {
	Character *dnd5e.Character
}

// UpdateCharacterInput defines the request for patching a character
type UpdateCharacterInput struct {
	CharacterID string
	Patch       *dnd5e.CharacterPatch
}

// UpdateCharacterOutput defines the response for patching a character
type UpdateCharacterOutput struct {
	Character *dnd5e.Character
}

// DeleteCharacterInput defines the request for deleting a character
type DeleteCharacterInput struct {
	CharacterID string
}

// DeleteCharacterOutput defines the response for deleting a character
type DeleteCharacterOutput struct {
	CharacterID string
}

// SaveCharacterInput defines the request for saving a finished draft
type SaveCharacterInput struct {
	Character *dnd5e.Character
}

// SaveCharacterOutput defines the response for saving a finished draft
type SaveCharacterOutput struct {
	Character *dnd5e.Character
	Created   bool
}

// GeneratePortraitInput defines the request for generating a portrait
type GeneratePortraitInput struct {
	RaceName  string
	ClassName string
	// Detail is optional free text appended to the prompt.
	Detail string
}

// GeneratePortraitOutput defines the response for generating a portrait
type GeneratePortraitOutput struct {
	RequestID   string
	Prompt      string
	Image       []byte
	ContentType string
}

// ImageURL returns the image as a data URL suitable for AttachPortrait.
func (o *GeneratePortraitOutput) ImageURL() string {
	return dnd5e.ImageDataURL(o.ContentType, o.Image)
}

// AttachPortraitInput defines the request for attaching a portrait
type AttachPortraitInput struct {
	CharacterID string
	ImageURL    string
}

// AttachPortraitOutput defines the response for attaching a portrait
type AttachPortraitOutput struct {
	Character *dnd5e.Character
}

// RegeneratePortraitInput defines the request for repainting a stored
// character
type RegeneratePortraitInput struct {
	CharacterID string
	Detail      string
}

// RegeneratePortraitOutput defines the response for repainting a stored
// character. Portrait is set whenever generation succeeded, even if
// attaching it failed.
type RegeneratePortraitOutput struct {
	Portrait  *GeneratePortraitOutput
	Character *dnd5e.Character
}
