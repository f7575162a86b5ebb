package genimg

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	gotModel  string
	gotConfig *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotConfig = config
	return f.resp, f.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func inlineResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestGenerateReturnsDecodedImage(t *testing.T) {
	data := pngBytes(t, 160, 90)
	fake := &fakeModels{resp: inlineResponse(
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
	)}
	c := &Client{models: fake, model: DefaultModel}

	img, err := c.Generate(context.Background(), "a prompt", "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if img.Width != 160 || img.Height != 90 {
		t.Fatalf("unexpected dimensions: %dx%d", img.Width, img.Height)
	}
	if img.MIMEType != "image/png" {
		t.Fatalf("unexpected mime type: %s", img.MIMEType)
	}

	if fake.gotModel != DefaultModel {
		t.Fatalf("unexpected model: %s", fake.gotModel)
	}
	if fake.gotConfig.ImageConfig.AspectRatio != DefaultAspectRatio {
		t.Fatalf("empty aspect ratio should default to %s, got %s", DefaultAspectRatio, fake.gotConfig.ImageConfig.AspectRatio)
	}
}

func TestGenerateSelectsLastInlinePart(t *testing.T) {
	first := pngBytes(t, 10, 10)
	last := pngBytes(t, 320, 180)
	fake := &fakeModels{resp: inlineResponse(
		&genai.Part{Text: "rendering..."},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: first}},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: last}},
	)}
	c := &Client{models: fake, model: DefaultModel}

	img, err := c.Generate(context.Background(), "a prompt", "16:9")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if img.Width != 320 || img.Height != 180 {
		t.Fatalf("expected the last inline part (320x180), got %dx%d", img.Width, img.Height)
	}
}

func TestGenerateNoInlineImage(t *testing.T) {
	fake := &fakeModels{resp: inlineResponse(&genai.Part{Text: "no image for you"})}
	c := &Client{models: fake, model: DefaultModel}

	_, err := c.Generate(context.Background(), "a prompt", "16:9")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{}}
	c := &Client{models: fake, model: DefaultModel}

	_, err := c.Generate(context.Background(), "a prompt", "16:9")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerateUndecodablePayload(t *testing.T) {
	fake := &fakeModels{resp: inlineResponse(
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("not a png")}},
	)}
	c := &Client{models: fake, model: DefaultModel}

	_, err := c.Generate(context.Background(), "a prompt", "16:9")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	fake := &fakeModels{err: errors.New("connection refused")}
	c := &Client{models: fake, model: DefaultModel}

	_, err := c.Generate(context.Background(), "a prompt", "16:9")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestGeneratePassesAspectRatio(t *testing.T) {
	fake := &fakeModels{resp: inlineResponse(
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: pngBytes(t, 90, 160)}},
	)}
	c := &Client{models: fake, model: DefaultModel}

	if _, err := c.Generate(context.Background(), "a prompt", "9:16"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if fake.gotConfig.ImageConfig.AspectRatio != "9:16" {
		t.Fatalf("aspect ratio not passed through: %s", fake.gotConfig.ImageConfig.AspectRatio)
	}
}
