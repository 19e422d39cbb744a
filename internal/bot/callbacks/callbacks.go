package callbacks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github-topic-bot/internal/bot"
	"github-topic-bot/internal/cache"
	"github-topic-bot/internal/markup"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

// pendingTTL bounds how long an add-repo prompt stays armed. An
// abandoned flow simply expires.
const pendingTTL = 10 * time.Minute

type CallbackHandler struct {
	Store   bot.Store
	Gateway bot.Gateway
	Pending *cache.Cache[int64, bool]
	Log     *slog.Logger
}

func NewCallbackHandler(store bot.Store, gateway bot.Gateway, pending *cache.Cache[int64, bool], log *slog.Logger) *CallbackHandler {
	return &CallbackHandler{
		Store:   store,
		Gateway: gateway,
		Pending: pending,
		Log:     log,
	}
}

func (h *CallbackHandler) HandleMenu(b *gotgbot.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	if cq.Message == nil {
		return nil
	}
	return h.handleCallback(cq.Id, cq.Data, cq.From.Id, cq.Message.GetChat().Id, cq.Message.GetMessageId())
}

func (h *CallbackHandler) handleCallback(callbackID, data string, userID, chatID, messageID int64) error {
	// Acknowledge first so the client never shows a stuck spinner,
	// whatever the data turns out to be.
	if err := h.Gateway.AnswerCallback(callbackID); err != nil {
		h.Log.Error("failed to answer callback", "err", err)
	}

	menu := bot.MainMenu()

	switch data {
	case bot.CallbackAddRepo:
		h.Pending.Set(userID, true, pendingTTL)
		h.edit(chatID, messageID, "Send the repo name in `owner/repo` format:", nil)

	case bot.CallbackListRepos:
		mappings, err := h.Store.ListAll(context.Background())
		if err != nil {
			return fmt.Errorf("listing mappings: %w", err)
		}
		h.edit(chatID, messageID, bot.FormatMappingList(mappings), &menu)

	case bot.CallbackRemoveRepo:
		mappings, err := h.Store.ListAll(context.Background())
		if err != nil {
			return fmt.Errorf("listing mappings: %w", err)
		}
		if len(mappings) == 0 {
			h.edit(chatID, messageID, "No repositories to remove\\.", &menu)
			return nil
		}
		removeMenu := bot.RemoveMenu(mappings)
		h.edit(chatID, messageID, "Select a repo to remove:", &removeMenu)

	case bot.CallbackCancel:
		h.edit(chatID, messageID, "Cancelled\\.", &menu)

	case bot.CallbackMainMenu:
		h.edit(chatID, messageID, bot.MainMenuText, &menu)

	default:
		if name, ok := strings.CutPrefix(data, bot.RemovePrefix); ok {
			confirm := bot.ConfirmRemoveMenu(name)
			h.edit(chatID, messageID, fmt.Sprintf("Remove %s?", markup.Bold(name)), &confirm)
			return nil
		}
		if name, ok := strings.CutPrefix(data, bot.ConfirmRemovePrefix); ok {
			return h.confirmRemove(name, chatID, messageID)
		}
		// Unknown data, ignore.
	}
	return nil
}

func (h *CallbackHandler) confirmRemove(repoFullName string, chatID, messageID int64) error {
	menu := bot.MainMenu()

	mapping, err := h.Store.FindByRepo(context.Background(), repoFullName)
	if err != nil {
		return fmt.Errorf("looking up mapping for %s: %w", repoFullName, err)
	}
	if mapping == nil {
		h.edit(chatID, messageID, fmt.Sprintf("Repository %s not found\\.", markup.Bold(repoFullName)), &menu)
		return nil
	}

	if err := h.Store.DeleteByRepo(context.Background(), repoFullName); err != nil {
		return fmt.Errorf("deleting mapping for %s: %w", repoFullName, err)
	}
	if err := h.Gateway.DeleteTopic(mapping.TopicID); err != nil {
		h.Log.Warn("failed to delete forum topic", "repo", repoFullName, "topic", mapping.TopicID, "err", err)
	}

	h.Log.Info("removed repo mapping", "repo", repoFullName)
	h.edit(chatID, messageID, fmt.Sprintf("✅ %s removed\\.", markup.Bold(repoFullName)), &menu)
	return nil
}

func (h *CallbackHandler) edit(chatID, messageID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) {
	if err := h.Gateway.EditMessage(chatID, messageID, text, keyboard); err != nil {
		h.Log.Error("failed to edit message", "chat", chatID, "message_id", messageID, "err", err)
	}
}
