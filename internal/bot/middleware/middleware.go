package middleware

import (
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

// RequireChat drops any update that did not originate in the authorized
// admin chat. Registered in a negative handler group so it runs before
// every command and callback handler.
func RequireChat(adminChatID int64) func(b *gotgbot.Bot, ctx *ext.Context) error {
	return func(b *gotgbot.Bot, ctx *ext.Context) error {
		if ctx.EffectiveChat == nil || ctx.EffectiveChat.Id != adminChatID {
			return ext.EndGroups
		}
		return nil
	}
}
