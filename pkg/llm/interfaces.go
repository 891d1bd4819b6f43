package llm

import (
	"context"

	"github.com/nexusmarket/matcher-core/pkg/models"
)

// ChatClient sends a single system+user exchange to a chat model and returns
// the raw response text. Both OpenAIClient and AnthropicClient implement it.
type ChatClient interface {
	ChatCompletion(ctx context.Context, systemMessage, prompt string, temperature float64) (string, error)
}

// EmbeddingClient generates dense vector embeddings for text.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string, model string) ([]float32, error)
	CreateEmbeddings(ctx context.Context, inputs []string, model string) ([][]float32, error)
}

// Gateway is the single entry point the rest of the system uses to talk to
// the external chat and embedding models. It is the only component aware
// that these calls cross a process boundary and require retry, circuit
// breaking, and JSON-extraction tolerance.
type Gateway interface {
	// TranslateToEnglish returns text translated to English, or the input
	// unchanged if it is already English. Idempotent.
	TranslateToEnglish(ctx context.Context, text string) (string, error)

	// ExtractRequirements parses a buyer turn (optionally with prior
	// accumulated state as context, so the model does not re-ask for
	// things already known) into a structured delta.
	ExtractRequirements(ctx context.Context, turnText string, prior *models.Accumulated) (*models.RequirementDelta, error)

	// GetEmbedding returns a 1536-dimension embedding vector for text.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateCardFields produces a title (<=10 words) and a one-paragraph
	// English description from a backlog prompt.
	GenerateCardFields(ctx context.Context, promptText string) (title, description string, err error)

	// GenerateQuestion produces a single English clarifying question for the
	// given missing dimension ("labels", "tags", or "integrations"),
	// mentioning the given example values.
	GenerateQuestion(ctx context.Context, dimension string, needed int, examples []string) (string, error)
}

var (
	_ ChatClient      = (*OpenAIClient)(nil)
	_ EmbeddingClient = (*OpenAIClient)(nil)
	_ ChatClient      = (*AnthropicClient)(nil)
	_ Gateway         = (*DefaultGateway)(nil)
)
