package tracker

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lmoretti/waxshelf/src/collection"
)

// TelegramHandler handles Telegram commands for the tracker feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the tracker feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes collection-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "stats":
		return h.handleStats(bot, chatID)
	case "search":
		return h.handleSearch(bot, chatID, args)
	case "random":
		return h.handleRandom(bot, chatID)
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown collection command. Use /stats, /search <text> or /random"))
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"stats":  "Show collection statistics",
		"search": "Search the collection (/search <text>)",
		"random": "Pick a random album from the collection",
	}
}

// HandleCallback handles callback queries for this feature (tracker has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

// handleStats shows collection statistics
func (h *TelegramHandler) handleStats(bot *tgbotapi.BotAPI, chatID int64) error {
	stats := h.service.Stats()

	message := fmt.Sprintf("📊 *Collection Statistics*\n\n"+
		"💿 Total: `%d`\n---\n"+
		"✅ Owned: `%d`\n---\n"+
		"⭐ Wanted: `%d`\n---\n"+
		"👤 Artists: `%d`\n---\n"+
		"🎼 Genres: `%d`\n---\n"+
		"📈 Completion: `%.1f%%`",
		stats.Total, stats.Owned, stats.Wanted,
		stats.UniqueArtists, stats.UniqueGenres, stats.Completion)
	if stats.TopArtist != "" {
		message += fmt.Sprintf("\n---\n🏆 Top artist: `%s`", stats.TopArtist)
	}

	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

// handleSearch searches the collection by text
func (h *TelegramHandler) handleSearch(bot *tgbotapi.BotAPI, chatID int64, args string) error {
	query := strings.TrimSpace(args)
	if query == "" {
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Usage: /search <text>"))
		return nil
	}

	view := h.service.View(collection.Criteria{TextQuery: query, SortKey: collection.SortByName})
	if len(view) == 0 {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("🔍 No albums matching `%s`", query)))
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 *%d album(s) matching* `%s`\n\n", len(view), query))
	limit := len(view)
	if limit > 15 {
		limit = 15
	}
	for _, rec := range view[:limit] {
		state := "✅"
		if rec.Wanted {
			state = "⭐"
		}
		sb.WriteString(fmt.Sprintf("%s *%s* by %s\n", state, rec.AlbumName, strings.Join(rec.AlbumArtists, ", ")))
	}
	if len(view) > limit {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(view)-limit))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

// handleRandom picks one random album
func (h *TelegramHandler) handleRandom(bot *tgbotapi.BotAPI, chatID int64) error {
	rec, ok := h.service.Random(collection.Criteria{SortKey: collection.SortCustom})
	if !ok {
		bot.Send(tgbotapi.NewMessage(chatID, "🎲 The collection is empty"))
		return nil
	}

	message := fmt.Sprintf("🎲 *%s*\n👤 %s", rec.AlbumName, strings.Join(rec.AlbumArtists, ", "))
	if year := rec.ReleaseYear(); year != 0 {
		message += fmt.Sprintf("\n📅 %d", year)
	}
	if formats := rec.Types.Labels(); len(formats) > 0 {
		message += fmt.Sprintf("\n💿 %s", strings.Join(formats, ", "))
	}

	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}
