// Package genimg wraps the Gemini image model behind a byte-oriented
// generation call. It owns response inspection and decoding; it performs no
// filesystem or storage I/O.
package genimg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var (
	// ErrUpstreamUnavailable covers network, timeout and quota failures on
	// the model call itself.
	ErrUpstreamUnavailable = errors.New("image service unavailable")
	// ErrMalformedResponse means the call succeeded but no decodable inline
	// image payload came back.
	ErrMalformedResponse = errors.New("malformed image response")
)

const (
	DefaultModel       = "gemini-3-pro-image-preview"
	DefaultAspectRatio = "16:9"

	// Generation parameters follow the upstream image-preview defaults.
	maxOutputTokens = 32768
	temperature     = float32(1)
	topP            = float32(0.95)
	imageSize       = "1K"
)

// Image is a decoded generation result ready for staging.
type Image struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// contentGenerator is the slice of *genai.Models the client needs; tests
// substitute a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config controls client construction.
type Config struct {
	APIKey string
	Model  string
	// RateEvery spaces outbound model calls; zero disables limiting.
	RateEvery time.Duration
}

// Client issues text-to-image calls against the Gemini API.
type Client struct {
	models  contentGenerator
	model   string
	limiter *rate.Limiter
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	var limiter *rate.Limiter
	if cfg.RateEvery > 0 {
		// Burst of 2 lets a pair of concurrent requests start immediately.
		limiter = rate.NewLimiter(rate.Every(cfg.RateEvery), 2)
	}

	return &Client{models: gc.Models, model: model, limiter: limiter}, nil
}

// Generate asks the model for one image and returns the decoded payload.
// aspectRatio defaults to 16:9 when empty.
func (c *Client) Generate(ctx context.Context, prompt, aspectRatio string) (*Image, error) {
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens:    maxOutputTokens,
		Temperature:        genai.Ptr(temperature),
		TopP:               genai.Ptr(topP),
		ResponseModalities: []string{"IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: aspectRatio,
			ImageSize:   imageSize,
		},
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	data, mimeType, ok := lastInlineImage(resp)
	if !ok {
		return nil, fmt.Errorf("%w: response carries no inline image part", ErrMalformedResponse)
	}

	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode inline image: %v", ErrMalformedResponse, err)
	}

	bounds := decoded.Bounds()
	return &Image{
		Data:     data,
		MIMEType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// lastInlineImage picks the LAST inline image part in the response. Image
// models may interleave progress renders with the final image; the final
// part is the completed render. Tested in client_test.go so the policy
// cannot regress silently.
func lastInlineImage(resp *genai.GenerateContentResponse) ([]byte, string, bool) {
	var data []byte
	var mimeType string

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				data = part.InlineData.Data
				mimeType = part.InlineData.MIMEType
			}
		}
	}

	return data, mimeType, data != nil
}
