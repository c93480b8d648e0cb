package image

import "context"

// staticPNG is a 1x1 transparent PNG, enough for the client to render a
// placeholder when no image provider is configured.
const staticPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// StaticGenerator returns a fixed placeholder image. Wired when
// GEMINI_API_KEY is absent so development environments still exercise the
// image branch of the pipeline.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (s *StaticGenerator) Generate(context.Context, Request) (*Asset, error) {
	return &Asset{Base64: staticPNG, MIME: "image/png"}, nil
}

var _ Generator = (*StaticGenerator)(nil)
