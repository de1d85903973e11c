// Package character implements the character orchestrator
package character

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/rpg-charforge/internal/clients/portrait"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-charforge/internal/pkg/idgen"
	characterrepo "github.com/KirkDiggler/rpg-charforge/internal/repositories/character"
	"github.com/KirkDiggler/rpg-charforge/internal/services/character"
)

const tracerName = "github.com/KirkDiggler/rpg-charforge/internal/orchestrators/character"

// Config holds the dependencies for the character orchestrator
type Config struct {
	CharacterRepo  characterrepo.Repository
	PortraitClient portrait.Client

	// Optional. Defaults: UUIDs for characters, ULIDs for portrait
	// requests, the wall clock and the global tracer provider. A nil
	// EventBus disables domain events.
	IDGenerator idgen.Generator
	RequestIDs  idgen.Generator
	Clock       clock.Clock
	EventBus    events.EventBus
	Tracer      trace.Tracer
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.PortraitClient == nil {
		vb.RequiredField("PortraitClient")
	}

	return vb.Build()
}

// Orchestrator implements the character.Service interface
type Orchestrator struct {
	characterRepo  characterrepo.Repository
	portraitClient portrait.Client
	idGenerator    idgen.Generator
	requestIDs     idgen.Generator
	clock          clock.Clock
	eventBus       events.EventBus
	tracer         trace.Tracer
}

// New creates a new character orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &Orchestrator{
		characterRepo:  cfg.CharacterRepo,
		portraitClient: cfg.PortraitClient,
		idGenerator:    cfg.IDGenerator,
		requestIDs:     cfg.RequestIDs,
		clock:          cfg.Clock,
		eventBus:       cfg.EventBus,
		tracer:         cfg.Tracer,
	}
	if o.idGenerator == nil {
		o.idGenerator = idgen.NewUUID("")
	}
	if o.requestIDs == nil {
		o.requestIDs = idgen.NewULID()
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o, nil
}

// Ensure Orchestrator implements the Service interface
var _ character.Service = (*Orchestrator)(nil)

// ListCharacters returns every stored character in creation order
func (o *Orchestrator) ListCharacters(
	ctx context.Context,
	input *character.ListCharactersInput,
) (*character.ListCharactersOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	result, err := o.characterRepo.List(ctx, characterrepo.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}

	return &character.ListCharactersOutput{
		Characters: result.Characters,
	}, nil
}

// GetCharacter retrieves a character by id
func (o *Orchestrator) GetCharacter(
	ctx context.Context,
	input *character.GetCharacterInput,
) (*character.GetCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	result, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get character")
	}

	return &character.GetCharacterOutput{
		Character: result.Character,
	}, nil
}

// CreateCharacter validates a complete character and stores it under a
// fresh id
func (o *Orchestrator) CreateCharacter(
	ctx context.Context,
	input *character.CreateCharacterInput,
) (*character.CreateCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Character == nil {
		return nil, errors.InvalidArgument("character is required")
	}

	char := input.Character.Clone()
	if err := char.Validate(); err != nil {
		return nil, err
	}

	now := o.clock.Now().UnixMilli()
	char.ID = o.idGenerator.Generate()
	char.CreatedAt = now
	char.UpdatedAt = now

	result, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: char})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}

	slog.InfoContext(ctx, "character created",
		"character_id", result.Character.ID,
		"name", result.Character.Name)
	o.publish(ctx, character.EventCharacterCreated, result.Character, nil)

	return &character.CreateCharacterOutput{
		Character: result.Character,
	}, nil
}

// UpdateCharacter merges a patch over the stored character. The merged
// record must still be complete.
func (o *Orchestrator) UpdateCharacter(
	ctx context.Context,
	input *character.UpdateCharacterInput,
) (*character.UpdateCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("characterId", input.CharacterID, vb)
	if input.Patch == nil {
		vb.RequiredField("patch")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	patch := input.Patch
	now := o.clock.Now().UnixMilli()

	result, err := o.characterRepo.Mutate(ctx, characterrepo.MutateInput{
		ID: input.CharacterID,
		Fn: func(current *dnd5e.Character) (*dnd5e.Character, error) {
			next := patch.Apply(current)
			next.ID = current.ID
			next.CreatedAt = current.CreatedAt
			next.UpdatedAt = now
			if err := next.Validate(); err != nil {
				return nil, err
			}
			return next, nil
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update character")
	}

	slog.InfoContext(ctx, "character updated", "character_id", result.Character.ID)
	o.publish(ctx, character.EventCharacterUpdated, result.Character, nil)

	return &character.UpdateCharacterOutput{
		Character: result.Character,
	}, nil
}

// DeleteCharacter removes a character
func (o *Orchestrator) DeleteCharacter(
	ctx context.Context,
	input *character.DeleteCharacterInput,
) (*character.DeleteCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	if _, err := o.characterRepo.Delete(ctx, characterrepo.DeleteInput{ID: input.CharacterID}); err != nil {
		return nil, errors.Wrap(err, "failed to delete character")
	}

	o.publish(ctx, character.EventCharacterDeleted, &dnd5e.Character{ID: input.CharacterID}, nil)

	return &character.DeleteCharacterOutput{
		CharacterID: input.CharacterID,
	}, nil
}

// SaveCharacter creates a draft without an id and replaces the stored
// record of a draft that has one
func (o *Orchestrator) SaveCharacter(
	ctx context.Context,
	input *character.SaveCharacterInput,
) (*character.SaveCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Character == nil {
		return nil, errors.InvalidArgument("character is required")
	}

	if input.Character.ID == "" {
		created, err := o.CreateCharacter(ctx, &character.CreateCharacterInput{
			Character: input.Character,
		})
		if err != nil {
			return nil, err
		}
		return &character.SaveCharacterOutput{Character: created.Character, Created: true}, nil
	}

	updated, err := o.UpdateCharacter(ctx, &character.UpdateCharacterInput{
		CharacterID: input.Character.ID,
		Patch:       dnd5e.ReplaceWith(input.Character),
	})
	if err != nil {
		return nil, err
	}
	return &character.SaveCharacterOutput{Character: updated.Character}, nil
}

// publish emits a domain event for char. Delivery failures are logged and
// never fail the write that already happened.
func (o *Orchestrator) publish(ctx context.Context, eventType string, char *dnd5e.Character, extra map[string]any) {
	if o.eventBus == nil {
		return
	}

	event := events.NewGameEvent(eventType, char, nil)
	event.Context().Set(character.EventContextCharacterID, char.ID)
	for k, v := range extra {
		event.Context().Set(k, v)
	}

	if err := o.eventBus.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish character event",
			"event_type", eventType,
			"character_id", char.ID,
			"error", err.Error())
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
