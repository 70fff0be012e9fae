package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Min interval between two messages to the same chat, under Telegram's
// per-chat limit
const telegramSendInterval = 2 * time.Second

const telegramQueueSize = 100

// sender is the part of the bot API the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts ledger events to a Telegram chat. Messages are
// queued and sent by one background worker at a limited rate.
type TelegramNotifier struct {
	bot     sender
	chatID  int64
	limiter *rate.Limiter
	queue   chan string
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *logrus.Entry
}

// NewTelegramNotifier connects to the bot API and starts the send worker
func NewTelegramNotifier(token string, chatID int64, logger *logrus.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, telegramSendInterval, logger), nil
}

func newTelegramNotifier(bot sender, chatID int64, interval time.Duration, logger *logrus.Logger) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		queue:   make(chan string, telegramQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.WithField("component", "telegram"),
	}

	n.wg.Add(1)
	go n.run()
	return n
}

// Publish queues a message for events worth a chat notification. It never
// blocks; a full queue drops the message.
func (n *TelegramNotifier) Publish(event Event) {
	text, ok := formatEvent(event)
	if !ok {
		return
	}

	select {
	case <-n.ctx.Done():
	case n.queue <- text:
	default:
		n.logger.WithField("type", event.Type).Warn("Telegram queue full, dropping message")
	}
}

// QueueLen returns the number of messages waiting to be sent
func (n *TelegramNotifier) QueueLen() int {
	return len(n.queue)
}

// Stop drops unsent messages and waits for the worker to exit
func (n *TelegramNotifier) Stop() {
	n.cancel()
	n.wg.Wait()
}

func (n *TelegramNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.ctx.Done():
			return
		case text := <-n.queue:
			if err := n.limiter.Wait(n.ctx); err != nil {
				return
			}
			msg := tgbotapi.NewMessage(n.chatID, text)
			msg.ParseMode = tgbotapi.ModeMarkdown
			if _, err := n.bot.Send(msg); err != nil {
				n.logger.WithError(err).Error("Telegram send failed")
				continue
			}
			n.logger.WithField("queue_length", len(n.queue)).Debug("Telegram message sent")
		}
	}
}

func formatEvent(event Event) (string, bool) {
	switch p := event.Payload.(type) {
	case ReportImported:
		var b strings.Builder
		fmt.Fprintf(&b, "*Report imported:* %s\n", escapeMarkdown(p.Label))
		fmt.Fprintf(&b, "Bets graded: %d\n", p.Updated)
		if len(p.Unmatched) > 0 {
			fmt.Fprintf(&b, "Unmatched: %d\n", len(p.Unmatched))
			for _, title := range p.Unmatched {
				fmt.Fprintf(&b, "- %s\n", escapeMarkdown(title))
			}
		}
		return b.String(), true
	case BetsUpdated:
		return fmt.Sprintf("*Pending bets updated:* %d created, %d updated", p.Created, p.Updated), true
	default:
		return "", false
	}
}

// escapeMarkdown escapes the characters legacy Markdown treats as markup
func escapeMarkdown(text string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`").Replace(text)
}
