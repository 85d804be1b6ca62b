package buttonbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultDebounce     = 400 * time.Millisecond
)

// PressFunc handles one detected press.
type PressFunc func(ctx context.Context, buttonID string)

type Poller struct {
	buttons  []Button
	onPress  PressFunc
	interval time.Duration
	debounce time.Duration
	logger   *zap.Logger
}

func NewPoller(buttons []Button, onPress PressFunc, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		buttons:  buttons,
		onPress:  onPress,
		interval: DefaultPollInterval,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// Run polls until ctx is done. A press is a 1 -> 0 transition; after each
// press the whole loop stays quiet for the debounce period. Read errors are
// logged and the pin keeps its previous state.
func (p *Poller) Run(ctx context.Context) error {
	last := make(map[string]int, len(p.buttons))
	for _, b := range p.buttons {
		last[b.ID] = 1
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		for _, b := range p.buttons {
			val, err := b.Pin.Read()
			if err != nil {
				p.logger.Warn("Failed to read pin", zap.String("button", b.ID), zap.Error(err))
				continue
			}

			if val == 0 && last[b.ID] == 1 {
				p.logger.Info("Button pressed", zap.String("button", b.ID))
				p.onPress(ctx, b.ID)
				if !sleep(ctx, p.debounce) {
					return ctx.Err()
				}
			}
			last[b.ID] = val
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
