// Package recommend suggests new albums based on the recorded collection.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/averageanalysis/vinyl-recorder/internal/constants"
	"github.com/averageanalysis/vinyl-recorder/internal/ledger"
	"github.com/averageanalysis/vinyl-recorder/internal/llm"
	"github.com/averageanalysis/vinyl-recorder/internal/logger"
)

// Suggestion is one recommended album.
type Suggestion struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Recommender asks the model for albums near or far from the owner's
// taste, anchored on what the ledger already holds.
type Recommender struct {
	llm   llm.Client
	store ledger.Store
	log   *logger.Logger
}

func New(client llm.Client, store ledger.Store, log *logger.Logger) *Recommender {
	return &Recommender{
		llm:   client,
		store: store,
		log:   log.WithComponent("recommend"),
	}
}

// Recommend returns n suggestions at the given taste distance. Distance 1
// means "more of the same", 10 means "as far from the collection as it
// gets".
func (r *Recommender) Recommend(ctx context.Context, tasteDistance, n int) ([]Suggestion, error) {
	if tasteDistance < constants.MinTasteDistance || tasteDistance > constants.MaxTasteDistance {
		return nil, fmt.Errorf("taste distance %d out of range %d..%d",
			tasteDistance, constants.MinTasteDistance, constants.MaxTasteDistance)
	}
	if n < constants.MinSuggestions || n > constants.MaxSuggestions {
		return nil, fmt.Errorf("suggestion count %d out of range %d..%d",
			n, constants.MinSuggestions, constants.MaxSuggestions)
	}

	entries, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommend: load ledger: %w", err)
	}

	var collection []string
	for _, e := range entries {
		switch {
		case e.DiscogsTitle != "":
			collection = append(collection, e.DiscogsTitle)
		case e.Artist != "" || e.AlbumTitle != "":
			collection = append(collection, strings.TrimSpace(e.Artist+" - "+e.AlbumTitle))
		}
	}
	if len(collection) == 0 {
		return nil, fmt.Errorf("recommend: collection is empty")
	}

	r.log.Info("requesting recommendations",
		"collection_size", len(collection), "taste_distance", tasteDistance, "count", n)

	messages := []llm.Message{
		llm.TextMessage("system", recommendPrompt),
		llm.TextMessage("user", fmt.Sprintf(
			"My collection:\n%s\n\nSuggest %d albums at taste distance %d.",
			strings.Join(collection, "\n"), n, tasteDistance)),
	}

	content, err := r.llm.CompleteJSON(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	var reply struct {
		Albums []Suggestion `json:"albums"`
	}
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("recommend: parse reply: %w", err)
	}
	if len(reply.Albums) == 0 {
		return nil, fmt.Errorf("recommend: model returned no albums")
	}
	if len(reply.Albums) > n {
		reply.Albums = reply.Albums[:n]
	}
	return reply.Albums, nil
}

// Format renders suggestions as a numbered list for chat output.
func Format(suggestions []Suggestion) string {
	var b strings.Builder
	for i, s := range suggestions {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, s.Artist, s.Album)
	}
	return strings.TrimRight(b.String(), "\n")
}
