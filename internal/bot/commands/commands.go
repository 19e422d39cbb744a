package commands

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github-topic-bot/internal/bot"
	"github-topic-bot/internal/cache"
	"github-topic-bot/internal/markup"
	"github-topic-bot/internal/models"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

var repoNamePattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

type CommandHandler struct {
	Store   bot.Store
	Gateway bot.Gateway
	Pending *cache.Cache[int64, bool]
	Log     *slog.Logger
}

func NewCommandHandler(store bot.Store, gateway bot.Gateway, pending *cache.Cache[int64, bool], log *slog.Logger) *CommandHandler {
	return &CommandHandler{
		Store:   store,
		Gateway: gateway,
		Pending: pending,
		Log:     log,
	}
}

func (h *CommandHandler) Start(b *gotgbot.Bot, ctx *ext.Context) error {
	menu := bot.MainMenu()
	h.reply(chatOf(ctx), topicOf(ctx), bot.MainMenuText, &menu)
	return nil
}

func (h *CommandHandler) AddRepo(b *gotgbot.Bot, ctx *ext.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		h.reply(chatOf(ctx), topicOf(ctx), "Usage: /addrepo owner/repo", nil)
		return nil
	}
	return h.addRepo(args[1], chatOf(ctx), topicOf(ctx))
}

func (h *CommandHandler) Repos(b *gotgbot.Bot, ctx *ext.Context) error {
	mappings, err := h.Store.ListAll(context.Background())
	if err != nil {
		return fmt.Errorf("listing mappings: %w", err)
	}
	h.reply(chatOf(ctx), topicOf(ctx), bot.FormatMappingList(mappings), nil)
	return nil
}

func (h *CommandHandler) RemoveRepo(b *gotgbot.Bot, ctx *ext.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		h.reply(chatOf(ctx), topicOf(ctx), "Usage: /removerepo owner/repo", nil)
		return nil
	}
	return h.removeRepo(args[1], chatOf(ctx), topicOf(ctx))
}

func (h *CommandHandler) Help(b *gotgbot.Bot, ctx *ext.Context) error {
	help := "*Admin Bot Commands:*\n\n" +
		"/start \\- Show the main menu\n" +
		"/addrepo owner/repo \\- Add a repo and create its forum topic\n" +
		"/repos \\- List configured repos\n" +
		"/removerepo owner/repo \\- Remove a repo and delete its topic\n" +
		"/help \\- Show this help message"
	h.reply(chatOf(ctx), topicOf(ctx), help, nil)
	return nil
}

// HandleText picks up non-command text. It only acts when the sending
// user has a pending "awaiting repo name" flag; the flag is consumed
// atomically so a second message cannot trigger another add.
func (h *CommandHandler) HandleText(b *gotgbot.Bot, ctx *ext.Context) error {
	return h.handleText(ctx.EffectiveUser.Id, ctx.EffectiveMessage.GetText(), chatOf(ctx), topicOf(ctx))
}

func (h *CommandHandler) handleText(userID int64, text string, chatID, topicID int64) error {
	if _, ok := h.Pending.Pop(userID); !ok {
		return nil
	}

	if err := h.addRepo(strings.TrimSpace(text), chatID, topicID); err != nil {
		return err
	}

	menu := bot.MainMenu()
	h.reply(chatID, topicID, bot.MainMenuText, &menu)
	return nil
}

func (h *CommandHandler) addRepo(repoFullName string, chatID, topicID int64) error {
	if !repoNamePattern.MatchString(repoFullName) {
		h.reply(chatID, topicID, "Invalid format\\. Send the repo name as `owner/repo`\\.", nil)
		return nil
	}

	exists, err := h.Store.ExistsByRepo(context.Background(), repoFullName)
	if err != nil {
		return fmt.Errorf("checking mapping for %s: %w", repoFullName, err)
	}
	if exists {
		h.reply(chatID, topicID, fmt.Sprintf("Repository %s is already configured\\.", markup.Bold(repoFullName)), nil)
		return nil
	}

	_, shortName, _ := strings.Cut(repoFullName, "/")
	newTopicID, err := h.Gateway.CreateTopic(shortName)
	if err != nil {
		h.Log.Error("failed to create forum topic", "repo", repoFullName, "err", err)
		h.reply(chatID, topicID, fmt.Sprintf("⚠️ Failed to create forum topic: %s", markup.Escape(err.Error())), nil)
		return nil
	}

	mapping := &models.RepoTopicMapping{
		RepoFullName: repoFullName,
		TopicID:      newTopicID,
	}
	if err := h.Store.Save(context.Background(), mapping); err != nil {
		// The topic was created but the mapping did not stick; clean up
		// so the forum is not left with an orphan topic.
		if delErr := h.Gateway.DeleteTopic(newTopicID); delErr != nil {
			h.Log.Warn("failed to delete orphan topic", "topic", newTopicID, "err", delErr)
		}
		return fmt.Errorf("saving mapping for %s: %w", repoFullName, err)
	}

	h.Log.Info("added repo mapping", "repo", repoFullName, "topic", newTopicID)
	h.reply(chatID, topicID, fmt.Sprintf("✅ %s added \\(topic ID: %d\\)", markup.Bold(repoFullName), newTopicID), nil)
	return nil
}

func (h *CommandHandler) removeRepo(repoFullName string, chatID, topicID int64) error {
	mapping, err := h.Store.FindByRepo(context.Background(), repoFullName)
	if err != nil {
		return fmt.Errorf("looking up mapping for %s: %w", repoFullName, err)
	}
	if mapping == nil {
		h.reply(chatID, topicID, fmt.Sprintf("Repository %s not found\\.", markup.Bold(repoFullName)), nil)
		return nil
	}

	// Local state is authoritative: drop the mapping first, then delete
	// the remote topic best-effort.
	if err := h.Store.DeleteByRepo(context.Background(), repoFullName); err != nil {
		return fmt.Errorf("deleting mapping for %s: %w", repoFullName, err)
	}
	if err := h.Gateway.DeleteTopic(mapping.TopicID); err != nil {
		h.Log.Warn("failed to delete forum topic", "repo", repoFullName, "topic", mapping.TopicID, "err", err)
	}

	h.Log.Info("removed repo mapping", "repo", repoFullName)
	h.reply(chatID, topicID, fmt.Sprintf("✅ %s removed\\.", markup.Bold(repoFullName)), nil)
	return nil
}

func (h *CommandHandler) reply(chatID, topicID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) {
	if err := h.Gateway.SendMessage(chatID, topicID, text, keyboard); err != nil {
		h.Log.Error("failed to send reply", "chat", chatID, "topic", topicID, "err", err)
	}
}

func chatOf(ctx *ext.Context) int64 {
	if ctx.EffectiveChat == nil {
		return 0
	}
	return ctx.EffectiveChat.Id
}

func topicOf(ctx *ext.Context) int64 {
	if ctx.EffectiveMessage == nil {
		return 0
	}
	return ctx.EffectiveMessage.MessageThreadId
}
