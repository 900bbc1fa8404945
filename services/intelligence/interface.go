package intelligence

import (
	"context"
	"errors"
	"fmt"
)

// TryOnPrompt is sent with the model photo and the garment photo, in that order.
const TryOnPrompt = `Create a high-quality, photorealistic image of the person from the first image wearing the clothing item from the second image.

Requirements:
- The person should be wearing the garment naturally and it should fit properly
- Maintain the person's pose, facial features, and body proportions from the original image
- The clothing should look realistic and well-fitted
- Preserve the style, color, and texture of the garment from the second image
- Ensure professional lighting and composition
- The background should be clean and neutral
- Show the complete outfit in a natural, appealing way

Make the final result look like a professional fashion photograph with the person naturally wearing the new clothing.`

var (
	// ErrNoImage means the response carried no inline image in its first candidate.
	ErrNoImage = errors.New("generation response contained no image")
	// ErrBlocked means the provider refused the prompt or the output.
	ErrBlocked = errors.New("generation was blocked by the provider")
	// ErrUnknownMethod is returned for a method with no configured generator.
	ErrUnknownMethod = errors.New("unknown generation method")
)

// Image is raw image bytes with their MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator produces a try-on image from a model photo and a garment photo.
type Generator interface {
	Generate(ctx context.Context, model, garment Image) (Image, error)
}

// Generators maps a method tag to its generator.
type Generators map[string]Generator

// Lookup returns the generator for method.
func (g Generators) Lookup(method string) (Generator, error) {
	gen, ok := g[method]
	if !ok || gen == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return gen, nil
}
