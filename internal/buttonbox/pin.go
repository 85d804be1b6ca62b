// Package buttonbox is the remote trigger client: it watches push buttons
// wired to GPIO inputs and posts each press to the server.
package buttonbox

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Pin reads one digital input. Buttons are wired active-low with pull-ups,
// so 1 is idle and 0 is pressed.
type Pin interface {
	Read() (int, error)
}

// Button binds a button id to its input.
type Button struct {
	ID  string
	Pin Pin
}

// DefaultPinMap is the wiring of the reference board.
var DefaultPinMap = []struct {
	ID   string
	GPIO int
}{
	{"BTN1", 14},
	{"BTN2", 27},
	{"BTN3", 26},
	{"BTN4", 25},
	{"BTN5", 33},
	{"BTN6", 32},
}

// SysfsPin reads <root>/gpio<N>/value.
type SysfsPin struct {
	path string
}

func NewSysfsPin(root string, gpio int) *SysfsPin {
	return &SysfsPin{path: filepath.Join(root, fmt.Sprintf("gpio%d", gpio), "value")}
}

func (p *SysfsPin) Read() (int, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", p.path, err)
	}
	v, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		return 0, fmt.Errorf("unexpected value in %s: %w", p.path, err)
	}
	if v != 0 {
		v = 1
	}
	return v, nil
}

// SysfsButtons builds the default button set under root.
func SysfsButtons(root string) []Button {
	buttons := make([]Button, 0, len(DefaultPinMap))
	for _, m := range DefaultPinMap {
		buttons = append(buttons, Button{ID: m.ID, Pin: NewSysfsPin(root, m.GPIO)})
	}
	return buttons
}
