package dnd5e

import (
	"encoding/base64"
	"strings"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

const dataURLPrefix = "data:"

// ImageDataURL encodes an image as a base64 data URL, the form stored in
// Character.GeneratedImageURL.
func ImageDataURL(contentType string, image []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return dataURLPrefix + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// ParseImageDataURL decodes a URL built by ImageDataURL.
func ParseImageDataURL(url string) (contentType string, image []byte, err error) {
	rest, ok := strings.CutPrefix(url, dataURLPrefix)
	if !ok {
		return "", nil, errors.InvalidArgument("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.InvalidArgument("data URL has no payload")
	}
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errors.InvalidArgument("data URL is not base64 encoded")
	}
	image, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid base64 in data URL")
	}
	return contentType, image, nil
}
