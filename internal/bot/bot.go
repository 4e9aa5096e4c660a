// Package bot runs the Telegram front end: photo-to-collection flow,
// recommendations and collection links.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/averageanalysis/vinyl-recorder/internal/config"
	"github.com/averageanalysis/vinyl-recorder/internal/constants"
	"github.com/averageanalysis/vinyl-recorder/internal/domain"
	"github.com/averageanalysis/vinyl-recorder/internal/logger"
	"github.com/averageanalysis/vinyl-recorder/internal/pipeline"
	"github.com/averageanalysis/vinyl-recorder/internal/recommend"
)

const (
	callbackConfirmAdd    = "confirm_add"
	callbackConfirmCancel = "confirm_cancel"
	distancePrefix        = "distance:"

	recommendCount = 3
)

// pendingPhoto is an identified cover waiting for the user's confirmation.
type pendingPhoto struct {
	imageName  string
	ident      domain.Identification
	enrichment *domain.Enrichment
	duplicate  bool
}

// Bot handles one Telegram bot session.
type Bot struct {
	api         *tgbotapi.BotAPI
	pipe        *pipeline.Pipeline
	recognizer  pipeline.Recognizer
	recommender *recommend.Recommender
	cfg         *config.Config
	log         *logger.Logger
	httpClient  *http.Client

	mu      sync.Mutex
	pending map[int64]*pendingPhoto
}

func New(cfg *config.Config, pipe *pipeline.Pipeline, recognizer pipeline.Recognizer, recommender *recommend.Recommender, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken())
	if err != nil {
		return nil, fmt.Errorf("bot: connect: %w", err)
	}
	return &Bot{
		api:         api,
		pipe:        pipe,
		recognizer:  recognizer,
		recommender: recommender,
		cfg:         cfg,
		log:         log.WithComponent("bot"),
		httpClient:  &http.Client{Timeout: constants.DefaultHTTPTimeout},
		pending:     make(map[int64]*pendingPhoto),
	}, nil
}

// Run polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot started", "username", b.api.Self.UserName)

	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "What this bot does"},
		tgbotapi.BotCommand{Command: "recommend", Description: "Suggest albums to buy next"},
		tgbotapi.BotCommand{Command: "list_links", Description: "Links to the collection"},
	)
	if _, err := b.api.Request(commands); err != nil {
		b.log.Warn("failed to register commands", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		// Edits, channel posts and the like are ignored.
	case len(update.Message.Photo) > 0:
		b.handlePhoto(ctx, update.Message)
	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	default:
		b.reply(update.Message.Chat.ID,
			"Send me a photo of an album cover, or use /recommend for suggestions.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID,
			"Hi! Send me a photo of a vinyl cover and I'll identify it and add it to your collection.\n\n"+
				"/recommend - album suggestions based on what you own\n"+
				"/list_links - links to the collection")
	case "recommend":
		b.sendWithMarkup(msg.Chat.ID, "How adventurous should the picks be?", distanceKeyboard())
	case "list_links":
		b.reply(msg.Chat.ID, linksMessage(b.cfg.WebAppLink, b.cfg.SheetLink))
	default:
		b.reply(msg.Chat.ID, "I don't know that command. Try /start.")
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log := b.log.With("chat_id", chatID)

	// Telegram orders sizes ascending; take the largest.
	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		log.Error("photo download failed", "error", err)
		b.reply(chatID, "I couldn't download that photo, please try again.")
		return
	}

	b.reply(chatID, "Looking at the cover...")

	ident, err := b.recognizer.Identify(ctx, data)
	if err != nil {
		log.Error("identification failed", "error", err)
		b.reply(chatID, "Something went wrong while identifying the album. Please try again.")
		return
	}
	if !ident.Success {
		b.reply(chatID, "I couldn't identify this album. Try a clearer photo of the front cover.")
		return
	}

	duplicate := false
	if b.cfg.DuplicateCheckInteractive {
		duplicate, err = b.pipe.IsDuplicate(ctx, ident.Artist, ident.AlbumTitle)
		if err != nil {
			log.Error("duplicate check failed", "error", err)
			b.reply(chatID, "The collection is unreachable right now. Please try again later.")
			return
		}
	}

	// Enrichment is best effort here; the batch sweep can fill it later.
	enrichment, err := b.pipe.Enrich(ctx, ident.Artist, ident.AlbumTitle)
	if err != nil {
		log.Warn("enrichment lookup failed", "error", err)
		enrichment = nil
	}

	p := &pendingPhoto{
		imageName:  telegramImageName(),
		ident:      ident,
		enrichment: enrichment,
		duplicate:  duplicate,
	}
	b.mu.Lock()
	b.pending[chatID] = p
	b.mu.Unlock()

	b.sendWithMarkup(chatID, resultMessage(ident, enrichment, duplicate), confirmKeyboard(duplicate))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack failed", "error", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == callbackConfirmAdd:
		b.confirmAdd(ctx, chatID)
	case cb.Data == callbackConfirmCancel:
		b.mu.Lock()
		delete(b.pending, chatID)
		b.mu.Unlock()
		b.reply(chatID, "Okay, not added.")
	case strings.HasPrefix(cb.Data, distancePrefix):
		b.sendRecommendations(ctx, chatID, cb.Data)
	default:
		b.log.Warn("unknown callback", "data", cb.Data)
	}
}

func (b *Bot) confirmAdd(ctx context.Context, chatID int64) {
	b.mu.Lock()
	p := b.pending[chatID]
	delete(b.pending, chatID)
	b.mu.Unlock()

	if p == nil {
		b.reply(chatID, "Nothing waiting to be added. Send a photo first.")
		return
	}

	err := b.pipe.Commit(ctx, p.imageName, constants.SourceTelegram, p.ident, p.enrichment)
	if err != nil {
		b.log.Error("commit failed", "image_name", p.imageName, "error", err)
		b.reply(chatID, "Saving failed, the record was not added. Please try again.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Added %s - %s to the collection.", p.ident.Artist, p.ident.AlbumTitle))
}

func (b *Bot) sendRecommendations(ctx context.Context, chatID int64, data string) {
	distance, err := parseDistanceCallback(data)
	if err != nil {
		b.log.Warn("bad distance callback", "data", data, "error", err)
		return
	}

	b.reply(chatID, "Digging through the crates...")
	suggestions, err := b.recommender.Recommend(ctx, distance, recommendCount)
	if err != nil {
		b.log.Error("recommendation failed", "error", err)
		b.reply(chatID, "I couldn't come up with recommendations right now.")
		return
	}
	b.reply(chatID, "You might enjoy:\n"+recommend.Format(suggestions))
}

func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

// telegramImageName makes a unique ledger key for a photo that never
// touches disk.
func telegramImageName() string {
	return fmt.Sprintf("telegram_%d_%s.jpg", time.Now().Unix(), uuid.NewString()[:8])
}

func parseDistanceCallback(data string) (int, error) {
	raw := strings.TrimPrefix(data, distancePrefix)
	distance, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse distance %q: %w", raw, err)
	}
	return distance, nil
}

func resultMessage(ident domain.Identification, enr *domain.Enrichment, duplicate bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Looks like %s - %s", ident.Artist, ident.AlbumTitle)
	if ident.AlbumYear != "" {
		fmt.Fprintf(&sb, " (%s)", ident.AlbumYear)
	}
	fmt.Fprintf(&sb, "\nConfidence: %s", ident.Confidence)

	if enr != nil {
		fmt.Fprintf(&sb, "\nDiscogs: %s", enr.DiscogsTitle)
		if len(enr.Tracklist) > 0 {
			fmt.Fprintf(&sb, "\n\nTracklist:\n%s", strings.Join(enr.Tracklist, "\n"))
		}
	}
	if duplicate {
		sb.WriteString("\n\nYou already have this one in the collection.")
	}
	return sb.String()
}

func linksMessage(webLink, sheetLink string) string {
	var lines []string
	if webLink != "" {
		lines = append(lines, "Collection: "+webLink)
	}
	if sheetLink != "" {
		lines = append(lines, "Spreadsheet: "+sheetLink)
	}
	if len(lines) == 0 {
		return "No links configured."
	}
	return strings.Join(lines, "\n")
}

func confirmKeyboard(duplicate bool) tgbotapi.InlineKeyboardMarkup {
	addLabel := "Add to collection"
	if duplicate {
		addLabel = "Add anyway"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(addLabel, callbackConfirmAdd),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackConfirmCancel),
		),
	)
}

func distanceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Safe", distancePrefix+"2"),
			tgbotapi.NewInlineKeyboardButtonData("Close", distancePrefix+"4"),
			tgbotapi.NewInlineKeyboardButtonData("Stretch", distancePrefix+"6"),
			tgbotapi.NewInlineKeyboardButtonData("Wild", distancePrefix+"8"),
		),
	)
}
