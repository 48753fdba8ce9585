// Package bot turns Telegram chat events into login handshake transitions and
// replies with the matching chat notices.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	accountdomain "sportbuddy/backend/internal/account/domain"
	loginservice "sportbuddy/backend/internal/login/service"
	"sportbuddy/backend/internal/telegram"
)

var (
	startRe   = regexp.MustCompile(`^/start token_([0-9a-f]{32})$`)
	confirmRe = regexp.MustCompile(`^confirm_([0-9a-f]{32})$`)
)

// Messenger is the outbound half of the Telegram client the bot needs.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

// LoginFlow is the slice of the login service the bot drives.
type LoginFlow interface {
	HandleInitiation(ctx context.Context, token string, telegramID int64, username string) error
	HandleConfirmation(ctx context.Context, token string, telegramID int64) (*accountdomain.Account, error)
}

// Bot handles getUpdates payloads. Anything that is not a well-formed
// initiation message or confirmation button press is dropped without a reply.
type Bot struct {
	login     LoginFlow
	messenger Messenger
}

func New(login LoginFlow, messenger Messenger) *Bot {
	return &Bot{login: login, messenger: messenger}
}

// HandleUpdate implements telegram.Handler.
func (b *Bot) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *telegram.Message) {
	if m.From == nil || m.From.IsBot {
		return
	}
	match := startRe.FindStringSubmatch(m.Text)
	if match == nil {
		return
	}
	token := match[1]

	err := b.login.HandleInitiation(ctx, token, m.From.ID, m.From.Username)
	switch {
	case err == nil:
		keyboard := &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{{{
				Text: "Confirm login",
				Data: "confirm_" + token,
			}}},
		}
		b.reply(ctx, m.Chat.ID, "Almost there! Press the button below to confirm your login.", keyboard)
	case errors.Is(err, loginservice.ErrTokenNotFound):
		b.reply(ctx, m.Chat.ID, "This login link has expired. Please start again from the app.", nil)
	case errors.Is(err, loginservice.ErrInvalidTransition):
		b.reply(ctx, m.Chat.ID, "This login link was already used. Please start again from the app.", nil)
	default:
		log.Printf("bot: initiation failed for chat %d: %v", m.Chat.ID, err)
		b.reply(ctx, m.Chat.ID, "Something went wrong. Please try again.", nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	match := confirmRe.FindStringSubmatch(cb.Data)
	if match == nil {
		b.ack(ctx, cb.ID, "")
		return
	}
	token := match[1]

	account, err := b.login.HandleConfirmation(ctx, token, cb.From.ID)
	chatID := cb.From.ID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}

	switch {
	case err == nil, errors.Is(err, loginservice.ErrAlreadyConfirmed):
		b.ack(ctx, cb.ID, "Login confirmed")
		b.reply(ctx, chatID, fmt.Sprintf("You're logged in as %s. You can return to the app.", account.Name), nil)
	case errors.Is(err, loginservice.ErrTokenNotFound):
		b.ack(ctx, cb.ID, "")
		b.reply(ctx, chatID, "This login link has expired. Please start again from the app.", nil)
	case errors.Is(err, loginservice.ErrIdentityMismatch):
		b.ack(ctx, cb.ID, "")
		b.reply(ctx, chatID, "This login was started from a different Telegram account.", nil)
	case errors.Is(err, loginservice.ErrInvalidTransition):
		b.ack(ctx, cb.ID, "")
		b.reply(ctx, chatID, "This login link was already used. Please start again from the app.", nil)
	default:
		log.Printf("bot: confirmation failed for chat %d: %v", chatID, err)
		b.ack(ctx, cb.ID, "")
		b.reply(ctx, chatID, "Something went wrong. Please try again.", nil)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) {
	if err := b.messenger.SendMessage(ctx, chatID, text, keyboard); err != nil {
		log.Printf("bot: send to chat %d failed: %v", chatID, err)
	}
}

func (b *Bot) ack(ctx context.Context, callbackID, text string) {
	if err := b.messenger.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		log.Printf("bot: answer callback %s failed: %v", callbackID, err)
	}
}
