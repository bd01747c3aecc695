package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrCitationLeak is returned when a narrative cites a URL outside the allowlist
var ErrCitationLeak = errors.New("narrative cited a URL outside the evidence allowlist")

const systemMessage = "You summarize automated marketing-claim checks and cite only the evidence you are given."

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible APIs
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (llm.api_key or TAGLINE_LLM_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable lists models as a lightweight reachability and key check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Listing models needs a valid key but costs no tokens
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Summarize generates a narrative with the Chat Completions API
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	// Build prompt if not provided
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.EvidenceURLs)
	}

	// Determine model
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	// Determine max tokens
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 600
	}

	// Create timeout context
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Make API call
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	// Extract URLs from the summary
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	cited := extractURLs(summary)

	// Strict evidence mode rejects any citation outside the allowlist
	if p.config.StrictEvidence {
		if leaked := disallowed(cited, req.EvidenceURLs); len(leaked) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrCitationLeak, strings.Join(leaked, ", "))
		}
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedURLs:  cited,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"]+`)

// extractURLs returns distinct http(s) URLs in order of appearance
func extractURLs(text string) []string {
	var unique []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		// Clean up trailing punctuation
		u = strings.TrimRight(u, ".,;:!?")
		if !slices.Contains(unique, u) {
			unique = append(unique, u)
		}
	}
	return unique
}

// disallowed returns the cited URLs missing from the allowlist
func disallowed(cited, allowed []string) []string {
	var out []string
	for _, u := range cited {
		if !slices.Contains(allowed, u) {
			out = append(out, u)
		}
	}
	return out
}
