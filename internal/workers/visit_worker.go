package workers

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nwatteau/linktrap/internal/bot"
	"github.com/nwatteau/linktrap/internal/models"
)

// StartVisitWorkers launches a pool of worker goroutines that turn visit
// events into operator notifications. The pool drains the shared channel so a
// slow Telegram exchange never blocks a visitor's page render.
func StartVisitWorkers(workerCount int, visitEvents <-chan models.VisitEvent, sender bot.Sender) {
	log.Printf("Starting %d visit notification worker(s)...", workerCount)

	for i := 0; i < workerCount; i++ {
		go visitWorker(visitEvents, sender)
	}
}

// visitWorker runs until the channel is closed. Delivery is best-effort:
// failures are logged and the event is dropped, never retried.
func visitWorker(visitEvents <-chan models.VisitEvent, sender bot.Sender) {
	for event := range visitEvents {
		msg := tgbotapi.NewMessage(event.OperatorID, fmt.Sprintf(
			"👀 *Tracking link visited*\n\n🌐 IP: `%s`\n🖥 User-Agent: `%s`\n📄 Page: %s\n⏰ Time: %s",
			event.IP, event.UserAgent, event.Variant, event.Timestamp.Format("2006-01-02 15:04:05"),
		))
		msg.ParseMode = tgbotapi.ModeMarkdown

		if _, err := sender.Send(msg); err != nil {
			log.Printf("ERROR: failed to notify operator %d of visit from %s: %v",
				event.OperatorID, event.IP, err)
		}
	}
}
