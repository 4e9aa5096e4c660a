// Package web serves a read-only view of the record collection.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/averageanalysis/vinyl-recorder/internal/ledger"
	"github.com/averageanalysis/vinyl-recorder/internal/logger"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Album is the view model for one collection row.
type Album struct {
	Artist       string   `json:"artist"`
	AlbumTitle   string   `json:"album_title"`
	AlbumYear    string   `json:"album_year,omitempty"`
	DiscogsTitle string   `json:"discogs_title,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Tracks       []string `json:"tracks,omitempty"`
	Source       string   `json:"source,omitempty"`
	ProcessDate  string   `json:"process_date,omitempty"`
}

type Handler struct {
	store ledger.Store
	log   *logger.Logger
	tmpl  *template.Template
}

func NewHandler(store ledger.Store, log *logger.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.WithComponent("web"),
		tmpl:  template.Must(template.ParseFS(templateFiles, "templates/*.html")),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.IndexPage)
	r.Get("/api/albums", h.AlbumsJSON)
	r.Get("/health", h.Health)
}

func (h *Handler) IndexPage(w http.ResponseWriter, r *http.Request) {
	albums, err := h.loadAlbums(r.Context())
	if err != nil {
		h.log.Error("failed to load collection", "error", err)
		http.Error(w, "collection unavailable", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Albums": albums,
		"Total":  len(albums),
	}
	if err := h.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		h.log.Error("template render failed", "error", err)
	}
}

func (h *Handler) AlbumsJSON(w http.ResponseWriter, r *http.Request) {
	albums, err := h.loadAlbums(r.Context())
	if err != nil {
		h.log.Error("failed to load collection", "error", err)
		http.Error(w, "collection unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"total":  len(albums),
		"albums": albums,
	}); err != nil {
		h.log.Error("encode albums failed", "error", err)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// loadAlbums reads the ledger and shapes it for display, sorted by
// artist then album, case-insensitively.
func (h *Handler) loadAlbums(ctx context.Context) ([]Album, error) {
	entries, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	albums := make([]Album, 0, len(entries))
	for _, e := range entries {
		if e.Artist == "" && e.AlbumTitle == "" {
			continue
		}
		albums = append(albums, Album{
			Artist:       e.Artist,
			AlbumTitle:   e.AlbumTitle,
			AlbumYear:    e.AlbumYear,
			DiscogsTitle: e.DiscogsTitle,
			ImageURL:     e.ImageURL,
			Tracks:       e.ParsedTracklist(),
			Source:       e.Source,
			ProcessDate:  e.ProcessDate,
		})
	}

	sort.SliceStable(albums, func(i, j int) bool {
		ai, aj := strings.ToLower(albums[i].Artist), strings.ToLower(albums[j].Artist)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(albums[i].AlbumTitle) < strings.ToLower(albums[j].AlbumTitle)
	})
	return albums, nil
}
