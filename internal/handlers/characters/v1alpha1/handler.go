package v1alpha1

import (
	"context"
	"log/slog"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/services/character"
)

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	CharacterService character.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c == nil || c.CharacterService == nil {
		return errors.InvalidArgument("character service is required")
	}
	return nil
}

// Handler implements CharacterServiceServer on top of the character service
type Handler struct {
	characterService character.Service
}

var _ CharacterServiceServer = (*Handler)(nil)

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Handler{
		characterService: cfg.CharacterService,
	}, nil
}

// ListCharacters returns the gallery
func (h *Handler) ListCharacters(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	output, err := h.characterService.ListCharacters(ctx, &character.ListCharactersInput{})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	items := output.Characters
	if items == nil {
		items = []*dnd5e.Character{}
	}
	resp, err := toStruct(map[string]any{FieldItems: items})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return resp, nil
}

// GetCharacter returns one character
func (h *Handler) GetCharacter(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	output, err := h.characterService.GetCharacter(ctx, &character.GetCharacterInput{
		CharacterID: req.GetValue(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return h.character(output.Character)
}

// CreateCharacter stores a complete character under a new id
func (h *Handler) CreateCharacter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	char, err := CharacterFromStruct(req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.characterService.CreateCharacter(ctx, &character.CreateCharacterInput{
		Character: char,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return h.character(output.Character)
}

// UpdateCharacter merges a patch over a stored character
func (h *Handler) UpdateCharacter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var body UpdateRequest
	if err := fromStruct(req, &body); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.characterService.UpdateCharacter(ctx, &character.UpdateCharacterInput{
		CharacterID: body.ID,
		Patch:       body.Patch,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return h.character(output.Character)
}

// DeleteCharacter removes a character and echoes its id
func (h *Handler) DeleteCharacter(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	output, err := h.characterService.DeleteCharacter(ctx, &character.DeleteCharacterInput{
		CharacterID: req.GetValue(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return wrapperspb.String(output.CharacterID), nil
}

// GeneratePortrait paints a portrait without storing it
func (h *Handler) GeneratePortrait(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var body GeneratePortraitRequest
	if err := fromStruct(req, &body); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.characterService.GeneratePortrait(ctx, &character.GeneratePortraitInput{
		RaceName:  body.RaceName,
		ClassName: body.ClassName,
		Detail:    body.Detail,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	resp, err := toStruct(portraitFromOutput(output))
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return resp, nil
}

// AttachPortrait stores an image reference on a character
func (h *Handler) AttachPortrait(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var body AttachPortraitRequest
	if err := fromStruct(req, &body); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.characterService.AttachPortrait(ctx, &character.AttachPortraitInput{
		CharacterID: body.ID,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return h.character(output.Character)
}

// RegeneratePortrait repaints a stored character. A failed attach is
// reported as an error; the generated image is only logged then.
func (h *Handler) RegeneratePortrait(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var body RegeneratePortraitRequest
	if err := fromStruct(req, &body); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.characterService.RegeneratePortrait(ctx, &character.RegeneratePortraitInput{
		CharacterID: body.ID,
		Detail:      body.Detail,
	})
	if err != nil {
		if output != nil && output.Portrait != nil {
			slog.WarnContext(ctx, "discarding generated portrait after failed attach",
				"character_id", body.ID,
				"request_id", output.Portrait.RequestID)
		}
		return nil, errors.ToGRPCError(err)
	}

	resp, err := toStruct(&RegeneratedPortrait{
		Portrait:  portraitFromOutput(output.Portrait),
		Character: output.Character,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return resp, nil
}

func (h *Handler) character(c *dnd5e.Character) (*structpb.Struct, error) {
	resp, err := CharacterToStruct(c)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return resp, nil
}
