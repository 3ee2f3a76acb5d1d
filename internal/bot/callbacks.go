package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbot/internal/selector"
)

// handleCallback routes an inline button press to its menu. Malformed data
// and picks the user does not own are dropped without a reply.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("answer callback %s: %v", cb.ID, err)
	}

	tok, err := selector.ParseToken(cb.Data)
	if err != nil {
		log.Printf("[info] callback ignored user=%d data=%q: %v", cb.From.ID, cb.Data, err)
		return nil
	}
	m, ok := b.menus[tok.Action]
	if !ok {
		return nil
	}

	chatID := cb.Message.Chat.ID
	res, err := m.handler.Handle(ctx, cb.From.ID, tok)
	if err != nil {
		return b.failure(chatID, textSomethingWentWrong, err)
	}

	switch res.Kind {
	case selector.ResultPage:
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, m.prompt, inlineKeyboard(res.Page))
		if _, err := b.api.Request(edit); err != nil {
			return err
		}
	case selector.ResultApplied:
		return b.sendText(chatID, res.Message)
	default:
		log.Printf("[info] callback %q of user %d had no effect", cb.Data, cb.From.ID)
	}
	return nil
}
