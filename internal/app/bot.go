package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/progress-bot/internal/conversation"
	"github.com/agalitsyn/progress-bot/internal/server"
	"github.com/agalitsyn/progress-bot/version"
)

type BotConfig struct {
	UpdateTimeout int
}

// Bot adapts Telegram updates to conversation events and sends the replies
// back. Updates for one chat arrive one at a time, so the core needs no
// locking beyond the session store's own.
type Bot struct {
	api *tgbotapi.BotAPI

	cfg     BotConfig
	conv    *conversation.Manager
	metrics *server.Metrics
}

func NewBot(
	cfg BotConfig,
	token string,
	logger tgbotapi.BotLogger,
	conv *conversation.Manager,
	metrics *server.Metrics,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	tgbotapi.SetLogger(logger)
	return &Bot{
		api:     bot,
		cfg:     cfg,
		conv:    conv,
		metrics: metrics,
	}, nil
}

// UpdatesChan starts long polling.
func (b *Bot) UpdatesChan() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	return b.api.GetUpdatesChan(u)
}

// SetWebhook registers url with Telegram so updates arrive over HTTP
// instead of long polling.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("could not build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("could not register webhook: %w", err)
	}
	return nil
}

// Run consumes updates until the context is canceled. The channel may be fed
// by long polling or by the webhook server, the handling is the same.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case update := <-updates:
			b.metrics.UpdatesProcessed.Inc()

			if update.CallbackQuery != nil {
				if err := b.handleCallbackQuery(ctx, update); err != nil {
					b.metrics.HandlerErrors.Inc()
					log.Printf("[ERROR] handling callback query: %s", err)
				}
				continue
			}

			if update.Message == nil { // ignore any non-Message updates
				continue
			}

			if !update.Message.IsCommand() {
				if command, ok := parseCommand(update.Message.Text, b.api.Self.UserName); ok {
					// Rewrite the "@botname /cmd" form into a plain command.
					cmdUpdate := update
					cmdUpdate.Message.Text = "/" + command
					cmdUpdate.Message.Entities = []tgbotapi.MessageEntity{
						{
							Type:   "bot_command",
							Offset: 0,
							Length: len(command) + 1,
						},
					}
					if err := b.handleCommand(ctx, cmdUpdate); err != nil {
						b.metrics.HandlerErrors.Inc()
						log.Printf("[ERROR] handling command: %s", err)
					}
					continue
				}

				if err := b.handleText(ctx, update); err != nil {
					b.metrics.HandlerErrors.Inc()
					log.Printf("[ERROR] handling message: %s", err)
				}
				continue
			}

			if err := b.handleCommand(ctx, update); err != nil {
				b.metrics.HandlerErrors.Inc()
				log.Printf("[ERROR] handling command: %s", err)
			}

		case <-ctx.Done():
			log.Printf("[DEBUG] stopped: %s", ctx.Err())
			return
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) error {
	command := update.Message.Command()
	chatID := update.Message.Chat.ID
	b.metrics.CommandsHandled.WithLabelValues(command).Inc()

	// Liveness check stays in the transport layer: it needs the build info,
	// not the conversation state.
	if command == "status" {
		statusText := fmt.Sprintf("🤖 *Bot status*\n\n✅ Running\n📊 Version: %s", version.String())
		msg := tgbotapi.NewMessage(chatID, statusText)
		msg.ParseMode = "Markdown"
		_, err := b.api.Send(msg)
		return err
	}

	reply, err := b.conv.Handle(ctx, conversation.Event{
		ChatID:  chatID,
		Kind:    conversation.EventCommand,
		Command: command,
	})
	if err != nil {
		log.Printf("[ERROR] command /%s: %s", command, err)
		b.metrics.HandlerErrors.Inc()
	}
	return b.sendNew(chatID, reply)
}

func (b *Bot) handleText(ctx context.Context, update tgbotapi.Update) error {
	reply, err := b.conv.Handle(ctx, conversation.Event{
		ChatID: update.Message.Chat.ID,
		Kind:   conversation.EventText,
		Text:   update.Message.Text,
	})
	if err != nil {
		log.Printf("[ERROR] text message: %s", err)
		b.metrics.HandlerErrors.Inc()
	}
	return b.sendNew(update.Message.Chat.ID, reply)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) error {
	callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		log.Printf("[ERROR] answering callback query: %s", err)
	}

	if update.CallbackQuery.Message == nil {
		return nil
	}
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID

	reply, err := b.conv.Handle(ctx, conversation.Event{
		ChatID: chatID,
		Kind:   conversation.EventCallback,
		Data:   update.CallbackQuery.Data,
	})
	if err != nil {
		// Failure replies go out as fresh messages, the menu stays intact.
		log.Printf("[ERROR] callback %q: %s", update.CallbackQuery.Data, err)
		b.metrics.HandlerErrors.Inc()
		return b.sendNew(chatID, reply)
	}
	return b.sendEdit(chatID, messageID, reply)
}

func (b *Bot) sendNew(chatID int64, reply conversation.Reply) error {
	if reply.Text == "" {
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if markup := keyboardMarkup(reply.Keyboard); markup != nil {
		msg.ReplyMarkup = *markup
	}
	if reply.HTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	msg.DisableWebPagePreview = reply.DisablePreview

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendEdit(chatID int64, messageID int, reply conversation.Reply) error {
	if reply.Text == "" {
		return nil
	}

	msg := tgbotapi.NewEditMessageText(chatID, messageID, reply.Text)
	if markup := keyboardMarkup(reply.Keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	if reply.HTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	msg.DisableWebPagePreview = reply.DisablePreview

	_, err := b.api.Send(msg)
	return err
}

func keyboardMarkup(keyboard [][]conversation.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func (b *Bot) SetDebug(debug bool) {
	b.api.Debug = debug
}

func (b *Bot) GetSelf() tgbotapi.User {
	return b.api.Self
}

func parseCommand(text string, botUsername string) (string, bool) {
	prefix := "@" + botUsername + " /"
	if strings.HasPrefix(text, prefix) {
		return strings.TrimPrefix(text, prefix), true
	}
	return "", false
}
