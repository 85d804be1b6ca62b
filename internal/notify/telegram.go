// Package notify pushes human-readable alerts to a caretaker. Delivery is
// best-effort: failures are logged and reported as false, never as errors.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assistive.app/buttons/internal/metrics"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTitle = "Assistive Buttons Alert"

// Notifier is implemented by Telegram and Noop.
type Notifier interface {
	Send(ctx context.Context, msg Message) bool
}

// Message is one alert. Details render as a labelled block under the body.
type Message struct {
	Title            string
	Body             string
	Details          *ButtonDetails
	IncludeTimestamp bool
}

type ButtonDetails struct {
	Button     string
	Text       string
	Language   string
	UserID     string
	DeviceID   string
	DeviceName string
	Source     string
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Telegram sends alerts through a bot's sendMessage method.
type Telegram struct {
	httpClient *resty.Client
	token      string
	chatID     string
	logger     *zap.Logger
	now        func() time.Time
}

func NewTelegram(apiURL, token, chatID string, logger *zap.Logger) *Telegram {
	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetTimeout(5*time.Second).
		SetHeader("Content-Type", "application/json")

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telegram{
		httpClient: client,
		token:      token,
		chatID:     chatID,
		logger:     logger,
		now:        time.Now,
	}
}

func (t *Telegram) Send(ctx context.Context, msg Message) bool {
	req := sendMessageRequest{
		ChatID:    t.chatID,
		Text:      t.format(msg),
		ParseMode: "HTML",
	}

	resp, err := t.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.token))
	if err != nil {
		t.logger.Error("Error sending Telegram notification", zap.Error(err))
		metrics.RecordNotification(false)
		return false
	}
	if resp.StatusCode() != 200 {
		t.logger.Error("Telegram notification failed",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		metrics.RecordNotification(false)
		return false
	}

	metrics.RecordNotification(true)
	return true
}

func (t *Telegram) format(msg Message) string {
	title := msg.Title
	if title == "" {
		title = defaultTitle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n%s\n", title, msg.Body)

	if d := msg.Details; d != nil {
		b.WriteString("\n<b>Details:</b>\n")
		if d.Button != "" {
			fmt.Fprintf(&b, "Button: %s\n", d.Button)
		}
		if d.Text != "" {
			fmt.Fprintf(&b, "Action: %s\n", d.Text)
		}
		if d.Language != "" {
			fmt.Fprintf(&b, "Language: %s\n", d.Language)
		}
		if d.UserID != "" && d.UserID != "default" {
			fmt.Fprintf(&b, "User: %s\n", d.UserID)
		}
		if d.DeviceID != "" && d.DeviceID != "unknown" {
			fmt.Fprintf(&b, "Device: %s\n", d.DeviceID)
		}
		if d.DeviceName != "" {
			fmt.Fprintf(&b, "Device Name: %s\n", d.DeviceName)
		}
		if d.Source != "" {
			fmt.Fprintf(&b, "Source: %s\n", d.Source)
		}
	}

	if msg.IncludeTimestamp {
		fmt.Fprintf(&b, "\n<i>Time: %s</i>", t.now().Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// Noop drops every message. Used when no bot token is configured.
type Noop struct{}

func (Noop) Send(context.Context, Message) bool { return false }
