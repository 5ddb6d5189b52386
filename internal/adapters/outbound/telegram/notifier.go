package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/charleschow/footy-advisor/internal/core/notify"
	"github.com/charleschow/footy-advisor/internal/telemetry"
)

// Telegram allows roughly 30 messages per minute per chat; one message
// every two seconds stays comfortably under the 429 limit.
const sendInterval = 2 * time.Second

const queueSize = 100

// Sink queues advisory messages and sends them to a Telegram chat in the
// background, rate limited per chat.
type Sink struct {
	bot         *tgbotapi.BotAPI
	chatID      int64
	minSeverity notify.Severity
	limiter     *rate.Limiter

	queue  chan notify.Message
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewSink(token string, chatID int64, minSeverity notify.Severity) (*Sink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sink{
		bot:         bot,
		chatID:      chatID,
		minSeverity: minSeverity,
		limiter:     rate.NewLimiter(rate.Every(sendInterval), 1),
		queue:       make(chan notify.Message, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	s.wg.Add(1)
	go s.sender()

	telemetry.Infof("telegram sink started  chat_id=%d", chatID)
	return s, nil
}

func (s *Sink) Name() string                 { return "telegram" }
func (s *Sink) MinSeverity() notify.Severity { return s.minSeverity }

// Send queues the message without blocking. A full queue drops the
// message and reports the drop to the caller.
func (s *Sink) Send(ctx context.Context, msg notify.Message) error {
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("telegram sink stopped")
	case <-ctx.Done():
		return ctx.Err()
	case s.queue <- msg:
		return nil
	default:
		telemetry.Warnf("telegram: queue full, dropping message  kind=%s fixture=%s", msg.Kind, msg.FixtureID)
		return fmt.Errorf("telegram queue full")
	}
}

// QueueLen returns the number of messages waiting to be sent.
func (s *Sink) QueueLen() int { return len(s.queue) }

// Stop drains the queue, sending what remains, then shuts the sender
// down.
func (s *Sink) Stop() {
	if s == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Sink) sender() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			for {
				select {
				case msg := <-s.queue:
					s.deliver(msg)
				default:
					return
				}
			}
		case msg := <-s.queue:
			s.deliver(msg)
		}
	}
}

func (s *Sink) deliver(msg notify.Message) {
	// Drain path runs after cancel, so the limiter wait cannot use s.ctx.
	r := s.limiter.Reserve()
	if d := r.Delay(); d > 0 {
		time.Sleep(d)
	}

	tgMsg := tgbotapi.NewMessage(s.chatID, format(msg))
	tgMsg.ParseMode = tgbotapi.ModeMarkdown

	start := time.Now()
	_, err := s.bot.Send(tgMsg)
	telemetry.Metrics.SinkLatency.Record(time.Since(start))
	if err != nil {
		telemetry.Errorf("telegram send failed: %v  kind=%s fixture=%s", err, msg.Kind, msg.FixtureID)
		return
	}
	telemetry.Debugf("telegram sent  kind=%s fixture=%s queue_len=%d", msg.Kind, msg.FixtureID, len(s.queue))
}

func format(msg notify.Message) string {
	var b strings.Builder

	switch msg.Kind {
	case notify.KindPrediction:
		b.WriteString("*Betting Advisory*\n\n")
	case notify.KindError:
		b.WriteString("*Advisory Error*\n\n")
	case notify.KindStatus:
		b.WriteString("*Advisory Status*\n\n")
	case notify.KindPerformance:
		b.WriteString("*Advisory Performance*\n\n")
	case notify.KindDailyReport:
		b.WriteString("*Daily Advisory Report*\n\n")
	default:
		b.WriteString(fmt.Sprintf("*Advisory: %s*\n\n", msg.Kind))
	}

	if msg.HomeTeam != "" && msg.AwayTeam != "" {
		b.WriteString(fmt.Sprintf("*%s vs %s*\n", escapeMarkdown(msg.HomeTeam), escapeMarkdown(msg.AwayTeam)))
	} else if msg.FixtureID != "" {
		b.WriteString(fmt.Sprintf("Fixture: %s\n", escapeMarkdown(msg.FixtureID)))
	}
	if msg.Discriminator != "" {
		b.WriteString(fmt.Sprintf("Selection: %s\n", escapeMarkdown(msg.Discriminator)))
	}
	if c := msg.Criteria; c != nil {
		b.WriteString(fmt.Sprintf("EV: %+.2f | Confidence: %.0f%%\n", c.ExpectedValue, c.Confidence*100))
	}
	if text, ok := msg.Payload.(string); ok && text != "" {
		b.WriteString("\n")
		b.WriteString(escapeMarkdown(text))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n_%s_", msg.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")))
	return b.String()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
