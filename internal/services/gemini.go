package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const RoleUser = "user"

// Part is either inline file data or plain text.
type Part struct {
	InlineData *InlinePart
	Text       string
}

type GenerationRequest struct {
	Role             string
	Parts            []Part
	ResponseMIMEType string
}

// ContentGenerator sends one generation request and returns the reply text.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, req *GenerationRequest) (string, error)
}

// GeneratorFactory yields a ContentGenerator bound to an API key.
type GeneratorFactory interface {
	NewGenerator(ctx context.Context, apiKey string) (ContentGenerator, error)
}

type geminiGenerator struct {
	client    *genai.Client
	modelName string
}

// GenerateContent implements ContentGenerator.
func (g *geminiGenerator) GenerateContent(ctx context.Context, req *GenerationRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.InlineData != nil {
			data, err := p.InlineData.Bytes()
			if err != nil {
				return "", errors.Wrap(err, "failed to decode inline part")
			}
			parts = append(parts, genai.NewPartFromBytes(data, p.InlineData.MIMEType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.Role(req.Role))}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: req.ResponseMIMEType,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate content")
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	return resp.Text(), nil
}

type geminiGeneratorFactory struct {
	modelName   string
	httpOptions genai.HTTPOptions
	clients     *cache.Cache
}

// NewGeminiGeneratorFactory builds Gemini API generators for modelName.
// Clients are reused per API key for clientTTL.
func NewGeminiGeneratorFactory(modelName string, clientTTL time.Duration) GeneratorFactory {
	return &geminiGeneratorFactory{
		modelName: modelName,
		clients:   cache.New(clientTTL, 2*clientTTL),
	}
}

// NewGenerator implements GeneratorFactory.
func (f *geminiGeneratorFactory) NewGenerator(ctx context.Context, apiKey string) (ContentGenerator, error) {
	key := clientCacheKey(apiKey)
	if cached, ok := f.clients.Get(key); ok {
		return cached.(*geminiGenerator), nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: f.httpOptions,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	generator := &geminiGenerator{
		client:    client,
		modelName: f.modelName,
	}
	f.clients.Set(key, generator, cache.DefaultExpiration)

	return generator, nil
}

func clientCacheKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return "gemini-client:" + hex.EncodeToString(sum[:])
}
