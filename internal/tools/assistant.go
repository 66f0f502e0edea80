package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second

	// maxToolRounds bounds the tool-call loop so a misbehaving model cannot
	// spin forever.
	maxToolRounds = 4

	systemPrompt = "You are a crypto arbitrage analyst. Use the provided tools " +
		"to inspect live cross-exchange opportunities and answer precisely. " +
		"Quote net profit percentages after fees, never gross spreads."
)

// AssistantConfig holds settings for the OpenAI-compatible chat client.
type AssistantConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Assistant answers natural-language questions about the scanner by letting
// a chat model call the arbitrage tools.
type Assistant struct {
	api        *openai.Client
	dispatcher *Dispatcher
	model      string
	timeout    time.Duration
}

// NewAssistant creates an Assistant from config.
func NewAssistant(cfg AssistantConfig, dispatcher *Dispatcher) (*Assistant, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("tools: API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		openaiCfg.BaseURL = baseURL
	}

	return &Assistant{
		api:        openai.NewClientWithConfig(openaiCfg),
		dispatcher: dispatcher,
		model:      model,
		timeout:    timeout,
	}, nil
}

// Ask sends the question to the model and resolves any tool calls it makes,
// returning the model's final text answer.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("tools: question must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    Definitions(),
		})
		if err != nil {
			return "", fmt.Errorf("tools: chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("tools: empty response")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return strings.TrimSpace(msg.Content), nil
		}

		messages = append(messages, msg)
		for _, tc := range msg.ToolCalls {
			result, err := a.dispatcher.Dispatch(ctx, tc)
			if err != nil {
				// Feed the error back so the model can recover or rephrase.
				result = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: tc.ID,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("tools: no final answer after %d tool rounds", maxToolRounds)
}
