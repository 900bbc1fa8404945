package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFirstInlineImagePicksFirstCandidateImage(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "Here is the outfit"},
				{InlineData: &genai.Blob{Data: []byte("first"), MIMEType: "image/jpeg"}},
				{InlineData: &genai.Blob{Data: []byte("second"), MIMEType: "image/png"}},
			}}},
			{Content: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{Data: []byte("other"), MIMEType: "image/png"}},
			}}},
		},
	}

	img, err := firstInlineImage(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestFirstInlineImageRejectsOtherShapes(t *testing.T) {
	textOnly := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "no image"}}}}},
	}
	_, err := firstInlineImage(textOnly)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = firstInlineImage(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrNoImage)

	// An image in a later candidate is not accepted.
	later := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "no image"}}}},
			{Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{Data: []byte("x")}}}}},
		},
	}
	_, err = firstInlineImage(later)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestFirstInlineImageReportsBlocks(t *testing.T) {
	blocked := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	_, err := firstInlineImage(blocked)
	assert.ErrorIs(t, err, ErrBlocked)

	prompt := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}
	_, err = firstInlineImage(prompt)
	assert.ErrorIs(t, err, ErrBlocked)
}

type fixedGenerator struct{}

func (fixedGenerator) Generate(context.Context, Image, Image) (Image, error) {
	return Image{Data: []byte("out"), MIMEType: "image/png"}, nil
}

func TestGeneratorsLookup(t *testing.T) {
	gens := Generators{"vertex-ai": fixedGenerator{}}

	g, err := gens.Lookup("vertex-ai")
	require.NoError(t, err)
	assert.NotNil(t, g)

	_, err = gens.Lookup("dall-e")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestTryOnContentsOrder(t *testing.T) {
	contents := tryOnContents(Image{Data: []byte("m"), MIMEType: "image/jpeg"}, Image{Data: []byte("g"), MIMEType: "image/png"})
	require.Len(t, contents, 1)
	parts := contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, TryOnPrompt, parts[0].Text)
	assert.Equal(t, []byte("m"), parts[1].InlineData.Data)
	assert.Equal(t, []byte("g"), parts[2].InlineData.Data)
	assert.Equal(t, "user", contents[0].Role)
}
