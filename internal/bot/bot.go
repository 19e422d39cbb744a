// Package bot holds the pieces shared by the admin command and callback
// handlers: the store and gateway contracts they are driven against, the
// callback data vocabulary, and the inline keyboards.
package bot

import (
	"context"
	"fmt"

	"github-topic-bot/internal/markup"
	"github-topic-bot/internal/models"

	"github.com/PaulSonOfLars/gotgbot/v2"
)

// Store is the mapping persistence consumed by the admin engine.
// *db.DB satisfies it.
type Store interface {
	FindByRepo(ctx context.Context, repoFullName string) (*models.RepoTopicMapping, error)
	ExistsByRepo(ctx context.Context, repoFullName string) (bool, error)
	Save(ctx context.Context, mapping *models.RepoTopicMapping) error
	DeleteByRepo(ctx context.Context, repoFullName string) error
	ListAll(ctx context.Context) ([]models.RepoTopicMapping, error)
}

// Gateway is the remote chat surface consumed by the admin engine.
// Sends and edits are addressed to the chat the triggering update came
// from; topic lifecycle always targets the notification forum chat.
// *telegram.Gateway satisfies it.
type Gateway interface {
	SendMessage(chatID, topicID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) error
	EditMessage(chatID, messageID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) error
	AnswerCallback(callbackQueryID string) error
	CreateTopic(name string) (int64, error)
	DeleteTopic(topicID int64) error
}

// Callback data values driving the admin state machine.
const (
	CallbackAddRepo    = "add_repo"
	CallbackListRepos  = "list_repos"
	CallbackRemoveRepo = "remove_repo"
	CallbackMainMenu   = "main_menu"
	CallbackCancel     = "cancel_remove"

	RemovePrefix        = "remove:"
	ConfirmRemovePrefix = "confirm_remove:"
)

// MainMenuText is the prompt shown above the main menu keyboard.
const MainMenuText = "Choose a command:"

func MainMenu() gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{
		InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
			{{Text: "📁 Add Repo", CallbackData: CallbackAddRepo}},
			{{Text: "📋 List Repos", CallbackData: CallbackListRepos}},
			{{Text: "🗑 Remove Repo", CallbackData: CallbackRemoveRepo}},
		},
	}
}

// RemoveMenu lists one button per managed repository plus a back button.
func RemoveMenu(mappings []models.RepoTopicMapping) gotgbot.InlineKeyboardMarkup {
	var kb [][]gotgbot.InlineKeyboardButton
	for _, m := range mappings {
		kb = append(kb, []gotgbot.InlineKeyboardButton{
			{Text: m.RepoFullName, CallbackData: RemovePrefix + m.RepoFullName},
		})
	}
	kb = append(kb, []gotgbot.InlineKeyboardButton{
		{Text: "◀️ Back", CallbackData: CallbackMainMenu},
	})
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: kb}
}

func ConfirmRemoveMenu(repoFullName string) gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{
		InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
			{
				{Text: "✅ Yes", CallbackData: ConfirmRemovePrefix + repoFullName},
				{Text: "❌ No", CallbackData: CallbackCancel},
			},
		},
	}
}

// FormatMappingList renders the configured repositories as MarkdownV2,
// one line per mapping.
func FormatMappingList(mappings []models.RepoTopicMapping) string {
	if len(mappings) == 0 {
		return "No repositories configured\\."
	}

	msg := "*Configured repositories:*\n\n"
	for _, m := range mappings {
		msg += fmt.Sprintf("\\- %s \\(topic %d\\)\n", markup.Code(m.RepoFullName), m.TopicID)
	}
	return msg
}
