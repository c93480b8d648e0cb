// Package image dispatches short derived prompts to an image-generation
// provider. Image generation is an independent failure domain: callers treat
// an error here as degraded output, never as a failed request.
package image

import "context"

// Request is a normalized image-generation request.
type Request struct {
	Prompt    string
	RequestID string
}

// Asset is a generated image returned inline.
type Asset struct {
	Base64 string
	MIME   string
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Asset, error)
}
