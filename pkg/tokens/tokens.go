// Package tokens estimates how many model tokens a prompt occupies.
package tokens

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncodingName = "cl100k_base"

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	Count(input string) (int, error)
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (c tiktokenCounter) Name() string {
	return c.name
}

func (c tiktokenCounter) Count(input string) (int, error) {
	if c.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(c.encoding.Encode(input, nil, nil)), nil
}

// NewCounter returns the tiktoken encoding registered for model, falling
// back to cl100k_base for models tiktoken does not know.
func NewCounter(model string) (Counter, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	if model != "" {
		if encoding, err := tiktoken.EncodingForModel(model); err == nil && encoding != nil {
			return tiktokenCounter{encoding: encoding, name: model}, nil
		}
	}
	encoding, err := tiktoken.GetEncoding(defaultEncodingName)
	if err != nil {
		return nil, fmt.Errorf("initialize %s tokenizer: %w", defaultEncodingName, err)
	}
	return tiktokenCounter{encoding: encoding, name: defaultEncodingName}, nil
}

// HeuristicCounter approximates tokens as len(text)/4. It needs no
// encoding files and serves as the fallback when tiktoken is unavailable.
type HeuristicCounter struct{}

func (HeuristicCounter) Name() string {
	return "heuristic"
}

func (HeuristicCounter) Count(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}
	n := len(input) / 4
	if n < 1 {
		n = 1
	}
	return n, nil
}

// NewCounterOrHeuristic returns NewCounter's result, or HeuristicCounter and
// the initialization error when the encoding cannot be loaded.
func NewCounterOrHeuristic(model string) (Counter, error) {
	counter, err := NewCounter(model)
	if err != nil {
		return HeuristicCounter{}, err
	}
	return counter, nil
}
