package buttonbox

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type triggerRequest struct {
	Button   string `json:"button"`
	Language string `json:"language"`
	DeviceID string `json:"device_id"`
	UserID   string `json:"user_id"`
}

// Client posts presses to the server's /trigger endpoint. It never retries.
type Client struct {
	httpClient *resty.Client
	deviceID   string
	userID     string
	language   string
	logger     *zap.Logger
}

func NewClient(serverURL, deviceID, userID, language string, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(serverURL).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: client,
		deviceID:   deviceID,
		userID:     userID,
		language:   language,
		logger:     logger,
	}
}

func (c *Client) Send(ctx context.Context, button string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(triggerRequest{
			Button:   button,
			Language: c.language,
			DeviceID: c.deviceID,
			UserID:   c.userID,
		}).
		Post("/trigger")
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", button, err)
	}
	if resp.IsError() {
		return fmt.Errorf("server rejected %s: status %d", button, resp.StatusCode())
	}

	c.logger.Info("Sent", zap.String("button", button), zap.Int("status_code", resp.StatusCode()))
	return nil
}

// HandlePress adapts Send to a PressFunc, logging failures.
func (c *Client) HandlePress(ctx context.Context, buttonID string) {
	if err := c.Send(ctx, buttonID); err != nil {
		c.logger.Error("Server error", zap.String("button", buttonID), zap.Error(err))
	}
}
