// Package catalog holds the button table: display labels and the spoken
// text of every button in each supported language.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Placeholder is spoken for button ids the catalog does not know.
const Placeholder = "Button pressed"

// DefaultLanguage is the fallback language of every button.
const DefaultLanguage = "en"

var (
	ErrUnknownButton       = errors.New("unknown button")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ButtonIDs lists the fixed set of buttons in display order.
var ButtonIDs = []string{"BTN1", "BTN2", "BTN3", "BTN4", "BTN5", "BTN6"}

// Languages lists the language codes the catalog can be edited in.
var Languages = []string{"en", "hi", "es", "fr", "de", "it"}

const (
	ButtonHelp      = "BTN1"
	ButtonMedicine  = "BTN2"
	ButtonWater     = "BTN3"
	ButtonRest      = "BTN4"
	ButtonCall      = "BTN5"
	ButtonEmergency = "BTN6"
)

type Button struct {
	Label string            `json:"label" yaml:"label"`
	Texts map[string]string `json:"texts" yaml:"texts"`
}

// Catalog is safe for concurrent use. Edits are applied in place and, when a
// file path is configured, rewritten to that YAML file.
type Catalog struct {
	mu      sync.RWMutex
	buttons map[string]*Button
	path    string
	logger  *zap.Logger
}

// New returns a catalog seeded with the built-in texts.
func New(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{buttons: defaults(), logger: logger}
}

// Open seeds the catalog with the built-in texts and overlays the YAML file at
// path. A missing or unreadable file leaves the defaults in place.
func Open(path string, logger *zap.Logger) *Catalog {
	c := New(logger)
	c.path = path
	if path == "" {
		return c
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("Catalog file unreadable, using defaults", zap.String("path", path), zap.Error(err))
		}
		return c
	}

	var overlay map[string]Button
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		c.logger.Warn("Catalog file corrupt, using defaults", zap.String("path", path), zap.Error(err))
		return c
	}

	for id, b := range overlay {
		id, ok := canonicalButton(id)
		if !ok {
			c.logger.Warn("Ignoring unknown button in catalog file", zap.String("button", id))
			continue
		}
		dst := c.buttons[id]
		if b.Label != "" {
			dst.Label = b.Label
		}
		for lang, text := range b.Texts {
			if lang, ok := canonicalLanguage(lang); ok && text != "" {
				dst.Texts[lang] = text
			}
		}
	}
	return c
}

// Resolve returns the text to speak for a button press. A non-empty override
// wins; unknown buttons yield Placeholder; unknown languages fall back to
// English.
func (c *Catalog) Resolve(buttonID, language, override string) string {
	if override != "" {
		return override
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.buttons[buttonID]
	if !ok {
		return Placeholder
	}
	if text, ok := b.Texts[language]; ok {
		return text
	}
	if text, ok := b.Texts[DefaultLanguage]; ok {
		return text
	}
	return Placeholder
}

// Label returns the display label of a button, or the id itself.
func (c *Catalog) Label(buttonID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if b, ok := c.buttons[buttonID]; ok {
		return b.Label
	}
	return buttonID
}

func (c *Catalog) SetLabel(buttonID, label string) error {
	id, ok := canonicalButton(buttonID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownButton, buttonID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.buttons[id].Label = label
	return c.saveLocked()
}

func (c *Catalog) SetText(buttonID, language, text string) error {
	id, ok := canonicalButton(buttonID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownButton, buttonID)
	}
	lang, ok := canonicalLanguage(language)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.buttons[id].Texts[lang] = text
	return c.saveLocked()
}

// Snapshot returns a deep copy of the table.
func (c *Catalog) Snapshot() map[string]Button {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Button, len(c.buttons))
	for id, b := range c.buttons {
		texts := make(map[string]string, len(b.Texts))
		for lang, text := range b.Texts {
			texts[lang] = text
		}
		out[id] = Button{Label: b.Label, Texts: texts}
	}
	return out
}

// saveLocked rewrites the whole YAML file. The in-memory edit stays applied
// even if the write fails.
func (c *Catalog) saveLocked() error {
	if c.path == "" {
		return nil
	}

	snapshot := make(map[string]*Button, len(c.buttons))
	for id, b := range c.buttons {
		snapshot[id] = b
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create catalog dir: %w", err)
		}
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

func canonicalButton(id string) (string, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, known := range ButtonIDs {
		if id == known {
			return id, true
		}
	}
	return id, false
}

func canonicalLanguage(lang string) (string, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, known := range Languages {
		if lang == known {
			return lang, true
		}
	}
	return lang, false
}
