package v1alpha1

import (
	"bytes"
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/services/character"
)

// Field names of the request and response envelopes.
const (
	FieldItems       = "items"
	FieldID          = "id"
	FieldPatch       = "patch"
	FieldRaceName    = "raceName"
	FieldClassName   = "className"
	FieldDetail      = "detail"
	FieldImageURL    = "imageUrl"
	FieldRequestID   = "requestId"
	FieldPrompt      = "prompt"
	FieldContentType = "contentType"
	FieldPortrait    = "portrait"
	FieldCharacter   = "character"
)

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	return out, nil
}

// fromStruct decodes s into v, rejecting fields v does not know.
//
// Struct numbers are float64; they go back through encoding/json rather
// than protojson so large integers such as millisecond timestamps keep a
// plain integer form.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return errors.InvalidArgument("request body is required")
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed request")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.WrapWithCodef(err, errors.CodeInvalidArgument, "malformed request: %v", err)
	}
	return nil
}

// CharacterToStruct is the wire form of a character.
func CharacterToStruct(c *dnd5e.Character) (*structpb.Struct, error) {
	if c == nil {
		return nil, errors.Internal("no character to encode")
	}
	return toStruct(c)
}

// CharacterFromStruct is the inverse of CharacterToStruct.
func CharacterFromStruct(s *structpb.Struct) (*dnd5e.Character, error) {
	c := &dnd5e.Character{}
	if err := fromStruct(s, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CharactersFromStruct decodes a list response.
func CharactersFromStruct(s *structpb.Struct) ([]*dnd5e.Character, error) {
	var body struct {
		Items []*dnd5e.Character `json:"items"`
	}
	if err := fromStruct(s, &body); err != nil {
		return nil, err
	}
	if body.Items == nil {
		body.Items = []*dnd5e.Character{}
	}
	return body.Items, nil
}

// UpdateRequest is the body of UpdateCharacter.
type UpdateRequest struct {
	ID    string                `json:"id"`
	Patch *dnd5e.CharacterPatch `json:"patch"`
}

// GeneratePortraitRequest is the body of GeneratePortrait.
type GeneratePortraitRequest struct {
	RaceName  string `json:"raceName"`
	ClassName string `json:"className"`
	Detail    string `json:"detail,omitempty"`
}

// AttachPortraitRequest is the body of AttachPortrait.
type AttachPortraitRequest struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// RegeneratePortraitRequest is the body of RegeneratePortrait.
type RegeneratePortraitRequest struct {
	ID     string `json:"id"`
	Detail string `json:"detail,omitempty"`
}

// Portrait is the wire form of a generated image.
type Portrait struct {
	RequestID   string `json:"requestId"`
	Prompt      string `json:"prompt"`
	ContentType string `json:"contentType"`
	ImageURL    string `json:"imageUrl"`
}

// RegeneratedPortrait is the response of RegeneratePortrait.
type RegeneratedPortrait struct {
	Portrait  *Portrait        `json:"portrait"`
	Character *dnd5e.Character `json:"character"`
}

// RequestToStruct encodes any request envelope of this package.
func RequestToStruct(req any) (*structpb.Struct, error) {
	return toStruct(req)
}

// DecodeStruct decodes any envelope of this package.
func DecodeStruct(s *structpb.Struct, v any) error {
	return fromStruct(s, v)
}

func portraitFromOutput(out *character.GeneratePortraitOutput) *Portrait {
	return &Portrait{
		RequestID:   out.RequestID,
		Prompt:      out.Prompt,
		ContentType: out.ContentType,
		ImageURL:    out.ImageURL(),
	}
}
