// Package portrait talks to the text-to-image endpoint that paints character
// portraits.
package portrait

//go:generate mockgen -destination=mock/mock_client.go -package=portraitmock github.com/KirkDiggler/rpg-charforge/internal/clients/portrait Client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

const (
	// DefaultModel is the text-to-image model used when none is configured.
	DefaultModel = "@cf/stabilityai/stable-diffusion-xl-base-1.0"

	// DefaultContentType is assumed when the endpoint does not name one.
	DefaultContentType = "image/png"

	defaultTimeout  = 60 * time.Second
	maxErrorExcerpt = 512
	maxImageBytes   = 16 << 20
	metaStatus      = "status"
	metaBodyExcerpt = "body"
)

// Client generates one image per prompt.
type Client interface {
	// Generate renders the prompt into an image.
	// Returns errors.Unavailable if no endpoint is configured or it cannot be reached
	// Returns errors.GenerationFailed if the endpoint answers with an error or no image
	// Returns errors.Canceled or errors.DeadlineExceeded when ctx ends first
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)
}

// GenerateInput is the prompt to render.
type GenerateInput struct {
	Prompt string
}

// GenerateOutput holds the raw image bytes.
type GenerateOutput struct {
	Image       []byte
	ContentType string
}

// Config configures the HTTP client.
type Config struct {
	// Endpoint is the base URL; the model is appended as the final path
	// segments. An empty endpoint yields a client that always reports
	// errors.Unavailable.
	Endpoint   string
	Token      string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type client struct {
	endpoint string
	token    string
	model    string
	http     *http.Client
}

// New creates a portrait client. It never fails: a missing endpoint is
// reported per call so the server can still start without one.
func New(cfg *Config) Client {
	if cfg == nil {
		cfg = &Config{}
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &client{
		endpoint: strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		token:    cfg.Token,
		model:    strings.TrimLeft(model, "/"),
		http:     httpClient,
	}
}

func (c *client) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	if input == nil || strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.InvalidArgument("prompt is required")
	}
	if c.endpoint == "" {
		return nil, errors.Unavailable("portrait generation is not configured")
	}

	body, err := json.Marshal(map[string]string{"prompt": input.Prompt})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode portrait request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+c.model, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to build portrait request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := errors.FromContext(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		slog.WarnContext(ctx, "portrait endpoint unreachable",
			"model", c.model,
			"error", err.Error())
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "portrait endpoint unreachable")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorExcerpt))
		slog.WarnContext(ctx, "portrait generation rejected",
			"model", c.model,
			"status", res.StatusCode)
		return nil, errors.GenerationFailedf("portrait endpoint returned %d", res.StatusCode).
			WithMeta(metaStatus, res.StatusCode).
			WithMeta(metaBodyExcerpt, strings.TrimSpace(string(excerpt)))
	}

	image, err := io.ReadAll(io.LimitReader(res.Body, maxImageBytes))
	if err != nil {
		if ctxErr := errors.FromContext(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.WrapWithCode(err, errors.CodeGenerationFailed, "failed to read portrait")
	}
	if len(image) == 0 {
		return nil, errors.GenerationFailed("portrait endpoint returned no image")
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = DefaultContentType
	}

	slog.DebugContext(ctx, "portrait generated",
		"model", c.model,
		"bytes", len(image),
		"content_type", contentType,
		"duration_ms", time.Since(start).Milliseconds())
	return &GenerateOutput{Image: image, ContentType: contentType}, nil
}
