package classifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
)

type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestGeminiClassifier_Classify(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("ReturnsTrimmedText", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", ctx, "gemini-2.0-flash", mock.MatchedBy(func(c []*genai.Content) bool {
			return len(c) == 1 && strings.Contains(c[0].Parts[0].Text, "ACCEPT, I'm on it")
		}), mock.Anything).Return(textResponse("  The professional accepts the job.\n"), nil).Once()

		c := NewGeminiClassifier(gen, "gemini-2.0-flash", logger)
		intent, err := c.Classify(ctx, "ACCEPT, I'm on it")
		require.NoError(t, err)
		assert.Equal(t, "The professional accepts the job.", intent)
		gen.AssertExpectations(t)
	})

	t.Run("APIErrorIsReturned", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", ctx, "m", mock.Anything, mock.Anything).
			Return(nil, &genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}).Once()

		_, err := NewGeminiClassifier(gen, "m", logger).Classify(ctx, "hi")
		assert.Error(t, err)
	})

	t.Run("EmptyTextIsAnError", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", ctx, "m", mock.Anything, mock.Anything).Return(textResponse("   "), nil).Once()

		_, err := NewGeminiClassifier(gen, "m", logger).Classify(ctx, "hi")
		assert.Error(t, err)
	})

	t.Run("TransportError", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", ctx, "m", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: timeout")).Once()

		_, err := NewGeminiClassifier(gen, "m", logger).Classify(ctx, "hi")
		assert.Error(t, err)
	})
}

func TestDisabledAndStatic(t *testing.T) {
	_, err := Disabled{}.Classify(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrClassifierUnavailable)

	intent, err := Static("wants work").Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "wants work", intent)
}
