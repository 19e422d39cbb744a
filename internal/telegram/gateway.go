// Package telegram wraps the Bot API calls the rest of the application
// needs: notification sends into the forum chat, replies and edits in
// whatever chat the admin update arrived in, callback acknowledgement,
// and forum topic lifecycle.
package telegram

import (
	"github.com/PaulSonOfLars/gotgbot/v2"
)

type Gateway struct {
	Bot *gotgbot.Bot
	// ChatID is the forum chat that holds the per-repository topics.
	// Notifications and topic lifecycle calls always target it; admin
	// replies and edits target the chat their update came from instead.
	ChatID int64
}

func NewGateway(bot *gotgbot.Bot, chatID int64) *Gateway {
	return &Gateway{
		Bot:    bot,
		ChatID: chatID,
	}
}

// Notify posts MarkdownV2 text into a forum topic of the notification
// chat. A topicID of 0 posts to the general topic.
func (g *Gateway) Notify(topicID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) error {
	return g.SendMessage(g.ChatID, topicID, text, keyboard)
}

// SendMessage posts MarkdownV2 text into a thread of the given chat.
func (g *Gateway) SendMessage(chatID, topicID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) error {
	opts := &gotgbot.SendMessageOpts{
		MessageThreadId: topicID,
		ParseMode:       "MarkdownV2",
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{
			IsDisabled: true,
		},
	}
	if keyboard != nil {
		opts.ReplyMarkup = *keyboard
	}

	_, err := g.Bot.SendMessage(chatID, text, opts)
	return err
}

// EditMessage replaces the text (and keyboard, if given) of a message
// previously sent to the given chat.
func (g *Gateway) EditMessage(chatID, messageID int64, text string, keyboard *gotgbot.InlineKeyboardMarkup) error {
	opts := &gotgbot.EditMessageTextOpts{
		ChatId:    chatID,
		MessageId: messageID,
		ParseMode: "MarkdownV2",
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{
			IsDisabled: true,
		},
	}
	if keyboard != nil {
		opts.ReplyMarkup = *keyboard
	}

	_, _, err := g.Bot.EditMessageText(text, opts)
	return err
}

// AnswerCallback acknowledges a callback query so the client stops
// showing a progress spinner.
func (g *Gateway) AnswerCallback(callbackQueryID string) error {
	_, err := g.Bot.AnswerCallbackQuery(callbackQueryID, nil)
	return err
}

// CreateTopic creates a forum topic in the notification chat and
// returns its message thread id.
func (g *Gateway) CreateTopic(name string) (int64, error) {
	topic, err := g.Bot.CreateForumTopic(g.ChatID, name, nil)
	if err != nil {
		return 0, err
	}
	return topic.MessageThreadId, nil
}

// DeleteTopic removes a forum topic from the notification chat.
func (g *Gateway) DeleteTopic(topicID int64) error {
	_, err := g.Bot.DeleteForumTopic(g.ChatID, topicID, nil)
	return err
}
