// Package assistant sends the assembled prompt to a remote completion service.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	loggerpkg "github.com/minhyannv/coding-agent-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrEmptyResponse reports a completion without any choice.
var ErrEmptyResponse = errors.New("empty completion choices")

// Request is one completion call: a system instruction and a single user message.
type Request struct {
	Model        string
	Instructions string
	Input        string
}

// Response is the text returned by the service.
type Response struct {
	Text     string
	Model    string
	Streamed bool
	// PromptTokens and CompletionTokens are zero when the service reports no usage.
	PromptTokens     int64
	CompletionTokens int64
}

// Completer performs a single blocking completion call.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Options configures the OpenAI-backed completer.
type Options struct {
	APIKey  string
	BaseURL string
	// Stream writes deltas to StreamWriter as they arrive.
	Stream       bool
	StreamWriter io.Writer
	Logger       loggerpkg.Logger
	Verbose      bool
}

// OpenAIClient implements Completer with the chat completions API.
type OpenAIClient struct {
	client       openai.Client
	stream       bool
	streamWriter io.Writer
	logger       loggerpkg.Logger
	verbose      bool
}

var _ Completer = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client. Failed requests are not retried.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("APIKey is not set (export OPENAI_API_KEY or add it to .env)")
	}
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	if opts.StreamWriter == nil {
		opts.StreamWriter = io.Discard
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client:       openai.NewClient(requestOpts...),
		stream:       opts.Stream,
		streamWriter: opts.StreamWriter,
		logger:       opts.Logger,
		verbose:      opts.Verbose,
	}, nil
}

// Complete sends req and returns the first choice's text.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Model) == "" {
		return Response{}, errors.New("model is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	params := newChatParams(req)
	c.debugf("[verbose] completion: model=%s input_bytes=%d stream=%v", req.Model, len(req.Input), c.stream)

	if !c.stream {
		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return Response{}, fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return Response{}, ErrEmptyResponse
		}
		c.debugf("[verbose] completion: finish_reason=%s", completion.Choices[0].FinishReason)
		return Response{
			Text:             completion.Choices[0].Message.Content,
			Model:            completion.Model,
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
		}, nil
	}

	streamResp := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer streamResp.Close()

	acc := openai.ChatCompletionAccumulator{}
	streamed := false
	chunkCount := 0
	for streamResp.Next() {
		chunk := streamResp.Current()
		chunkCount++
		if !acc.AddChunk(chunk) {
			return Response{}, errors.New("failed to accumulate stream")
		}
		if len(chunk.Choices) > 0 {
			delta := chunk.Choices[0].Delta
			if delta.Content != "" {
				_, _ = io.WriteString(c.streamWriter, delta.Content)
				streamed = true
			}
		}
	}
	if err := streamResp.Err(); err != nil {
		return Response{}, fmt.Errorf("chat completion stream: %w", err)
	}
	if len(acc.Choices) == 0 {
		return Response{}, ErrEmptyResponse
	}
	c.debugf("[verbose] completion: streamed %d chunk(s)", chunkCount)
	return Response{
		Text:             acc.Choices[0].Message.Content,
		Model:            acc.Model,
		Streamed:         streamed,
		PromptTokens:     acc.Usage.PromptTokens,
		CompletionTokens: acc.Usage.CompletionTokens,
	}, nil
}

// newChatParams builds a system message (omitted when blank) and one user message.
func newChatParams(req Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.Instructions) != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	messages = append(messages, openai.UserMessage(req.Input))
	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
}

func (c *OpenAIClient) debugf(format string, args ...any) {
	loggerpkg.Debugf(c.verbose, c.logger, format, args...)
}
