package generator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/logging"
)

const defaultModel = "gpt-4o-mini"

// draftSystemPrompt frames every generation call. The JSON shape it asks
// for matches what ParseDraft expects.
const draftSystemPrompt = `You are a product decomposition assistant. Decompose the given roadmap item into independently deliverable work units.

Respond with JSON only, in this shape:
{
  "units": [
    {
      "id": "unit-1",
      "title": "...",
      "body": "...",
      "user_story": {"role": "...", "goal": "...", "benefit": "..."},
      "acceptance_criteria": ["..."],
      "depends_on": [],
      "size_class": "S"
    }
  ],
  "rationale": "..."
}

Each unit must deliver user-visible value on its own. size_class is one of XS, S, M, L, XL. depends_on lists ids of units that must ship first.`

// OpenAIConfig configures the OpenAI-backed generator.
type OpenAIConfig struct {
	// APIKey authenticates against the API. Falls back to the
	// OPENAI_API_KEY environment variable when empty.
	APIKey string `mapstructure:"api_key"`

	// Model names the chat model. Defaults to gpt-4o-mini.
	Model string `mapstructure:"model"`

	// BaseURL overrides the API endpoint, for proxies and compatible
	// local servers.
	BaseURL string `mapstructure:"base_url"`

	// Temperature enables output variation across consistency samples.
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIGenerator produces drafts through the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	temp   float32
	log    *logging.Logger
}

// NewOpenAIGenerator builds a generator from config. Returns an error
// when no API key is available.
func NewOpenAIGenerator(cfg OpenAIConfig, log *logging.Logger) (*OpenAIGenerator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.NewValidationError("no API key configured").WithField("api_key")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = 0.8
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		temp:   temp,
		log:    log.WithComponent("generator"),
	}, nil
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Draft, error) {
	prompt := buildPrompt(req)
	g.log.Debug("requesting draft", "model", g.model, "strategy", req.Strategy)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: draftSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewTimeoutError("draft generation", 0).WithCause(err)
		}
		return nil, errors.NewGeneratorError("chat completion failed", errors.ErrGeneratorUnavailable).
			WithRetryable(true)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewGeneratorError("no choices returned", errors.ErrInvalidDraftFormat)
	}

	draft, err := ParseDraft([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		g.log.Warn("unparsable draft", "error", err)
		return nil, err
	}
	g.log.Debug("draft received", "units", len(draft.Units))
	return draft, nil
}

// buildPrompt renders the roadmap item, constraints, strategy guidance,
// and any regeneration feedback into the user message.
func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Roadmap item (%s): %s\n\n%s\n", req.Item.Type, req.Item.Title, req.Item.Description)

	c := req.Item.Constraints
	if c.MinUnits > 0 || c.MaxUnits > 0 {
		fmt.Fprintf(&b, "\nProduce between %d and %d units.\n", c.MinUnits, c.MaxUnits)
	}
	if len(c.MustInclude) > 0 {
		fmt.Fprintf(&b, "The decomposition must cover: %s.\n", strings.Join(c.MustInclude, ", "))
	}
	if len(c.MustExclude) > 0 {
		fmt.Fprintf(&b, "The decomposition must not cover: %s.\n", strings.Join(c.MustExclude, ", "))
	}

	if req.StrategyPrompt != "" {
		fmt.Fprintf(&b, "\nDecomposition strategy (%s): %s\n", req.Strategy, req.StrategyPrompt)
	}
	if req.Guidance != "" {
		fmt.Fprintf(&b, "\nFeedback on the previous attempt:\n%s\n", req.Guidance)
	}
	return b.String()
}
