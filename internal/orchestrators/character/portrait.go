package character

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/KirkDiggler/rpg-charforge/internal/clients/portrait"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/services/character"
)

const promptSuffix = "Dungeons and Dragons character art, epic, stunning, cinematic lighting."

// Prompt composes the text-to-image prompt for a race and class. A non-blank
// detail is appended after a single space.
func Prompt(raceName, className, detail string) string {
	var b strings.Builder
	b.WriteString("A high-quality, detailed, photorealistic fantasy portrait of a ")
	b.WriteString(strings.TrimSpace(raceName))
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(className))
	b.WriteString(". ")
	b.WriteString(promptSuffix)
	if !blank(detail) {
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(detail))
	}
	return b.String()
}

// GeneratePortrait paints a portrait for a race and class. Nothing is
// stored; pass the result to AttachPortrait.
func (o *Orchestrator) GeneratePortrait(
	ctx context.Context,
	input *character.GeneratePortraitInput,
) (*character.GeneratePortraitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if blank(input.RaceName) {
		vb.RequiredField("raceName")
	}
	if blank(input.ClassName) {
		vb.RequiredField("className")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	requestID := o.requestIDs.Generate()
	ctx, span := o.tracer.Start(ctx, "character.GeneratePortrait")
	defer span.End()
	span.SetAttributes(
		attribute.String("portrait.request_id", requestID),
		attribute.String("portrait.race", input.RaceName),
		attribute.String("portrait.class", input.ClassName),
	)

	prompt := Prompt(input.RaceName, input.ClassName, input.Detail)
	result, err := o.portraitClient.Generate(ctx, &portrait.GenerateInput{Prompt: prompt})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, errors.GetMessage(err))
		slog.WarnContext(ctx, "portrait generation failed",
			"request_id", requestID,
			"code", errors.GetCode(err).String(),
			"error", err.Error())
		return nil, errors.Wrap(err, "failed to generate portrait")
	}

	span.SetAttributes(attribute.Int("portrait.bytes", len(result.Image)))
	slog.InfoContext(ctx, "portrait generated",
		"request_id", requestID,
		"bytes", len(result.Image),
		"content_type", result.ContentType)

	return &character.GeneratePortraitOutput{
		RequestID:   requestID,
		Prompt:      prompt,
		Image:       result.Image,
		ContentType: result.ContentType,
	}, nil
}

// AttachPortrait stores an image reference on a character
func (o *Orchestrator) AttachPortrait(
	ctx context.Context,
	input *character.AttachPortraitInput,
) (*character.AttachPortraitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("characterId", input.CharacterID, vb)
	errors.ValidateRequired("imageUrl", input.ImageURL, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	url := input.ImageURL
	updated, err := o.UpdateCharacter(ctx, &character.UpdateCharacterInput{
		CharacterID: input.CharacterID,
		Patch:       &dnd5e.CharacterPatch{GeneratedImageURL: &url},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to attach portrait")
	}

	return &character.AttachPortraitOutput{
		Character: updated.Character,
	}, nil
}

// RegeneratePortrait paints a stored character and attaches the result. When
// attaching fails the generated portrait is still returned with the error.
func (o *Orchestrator) RegeneratePortrait(
	ctx context.Context,
	input *character.RegeneratePortraitInput,
) (*character.RegeneratePortraitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	got, err := o.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	char := got.Character

	genInput := &character.GeneratePortraitInput{Detail: input.Detail}
	if char.Race != nil {
		genInput.RaceName = char.Race.Name
	}
	if char.Class != nil {
		genInput.ClassName = char.Class.Name
	}

	generated, err := o.GeneratePortrait(ctx, genInput)
	if err != nil {
		return nil, err
	}
	attached, err := o.AttachPortrait(ctx, &character.AttachPortraitInput{
		CharacterID: char.ID,
		ImageURL:    generated.ImageURL(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "generated portrait could not be attached",
			"character_id", char.ID,
			"request_id", generated.RequestID,
			"error", err.Error())
		return &character.RegeneratePortraitOutput{Portrait: generated}, err
	}
	o.publish(ctx, character.EventPortraitGenerated, attached.Character, map[string]any{
		character.EventContextPortraitSize: len(generated.Image),
	})

	return &character.RegeneratePortraitOutput{
		Portrait:  generated,
		Character: attached.Character,
	}, nil
}
