// Package identifier turns album cover photographs into structured
// identification results using an LLM backend.
package identifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/averageanalysis/vinyl-recorder/internal/domain"
	"github.com/averageanalysis/vinyl-recorder/internal/llm"
	"github.com/averageanalysis/vinyl-recorder/internal/logger"
)

// Identifier recognizes album covers from image bytes.
type Identifier struct {
	llm llm.Client
	log *logger.Logger
}

func New(client llm.Client, log *logger.Logger) *Identifier {
	return &Identifier{
		llm: client,
		log: log.WithComponent("identifier"),
	}
}

// Identify sends the image to the model and parses the structured reply.
func (i *Identifier) Identify(ctx context.Context, image []byte) (domain.Identification, error) {
	var empty domain.Identification
	if len(image) == 0 {
		return empty, fmt.Errorf("identify: empty image")
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	messages := []llm.Message{
		llm.TextMessage("system", identifyPrompt),
		{Role: "user", Parts: []llm.Part{
			{Text: "What album is this? Identify the artist, title, and year."},
			{ImageBase64: encoded},
		}},
	}

	content, err := i.llm.CompleteJSON(ctx, messages)
	if err != nil {
		return empty, fmt.Errorf("identify: %w", err)
	}

	var result domain.Identification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return empty, fmt.Errorf("identify: parse reply: %w", err)
	}

	result.Confidence = domain.Confidence(strings.ToLower(string(result.Confidence)))
	if result.Success && !result.Confidence.Valid() {
		i.log.Warn("model returned unknown confidence, treating as low",
			"confidence", result.Confidence)
		result.Confidence = domain.ConfidenceLow
	}
	if !result.Success {
		// A failed identification carries no usable fields.
		return domain.Identification{}, nil
	}
	return result, nil
}

// IdentifyFile loads an image from disk and identifies it.
func (i *Identifier) IdentifyFile(ctx context.Context, path string) (domain.Identification, error) {
	i.log.Info("identifying image", "path", path)

	image, err := os.ReadFile(path)
	if err != nil {
		return domain.Identification{}, fmt.Errorf("identify: read %s: %w", path, err)
	}
	return i.Identify(ctx, image)
}
