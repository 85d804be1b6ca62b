package store

import "time"

const (
	AccountPrimary   = "primary"
	AccountCaretaker = "caretaker"
)

const (
	SourceUI     = "UI"
	SourceDevice = "DEVICE"
)

type User struct {
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	SecurityQuestion   string     `json:"security_question"`
	SecurityAnswerHash string     `json:"security_answer_hash"`
	PasswordHash       string     `json:"password_hash"`
	AccountType        string     `json:"account_type"`
	CreatedAt          *time.Time `json:"created_at"`
	Caretakers         []string   `json:"caretakers"`
	Medicines          []Medicine `json:"medicines"`
	Theme              string     `json:"theme"`
}

type Medicine struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Icon   string `json:"icon"`
}

type Device struct {
	DeviceID     string     `json:"device_id"`
	DeviceName   string     `json:"device_name"`
	DeviceType   string     `json:"device_type,omitempty"`
	RegisteredAt *time.Time `json:"registered_at"`
}

// Event is the record of one trigger. Audio never belongs to an Event; the
// pipeline hands it to the immediate caller only.
type Event struct {
	ID        string `json:"id,omitempty"`
	Button    string `json:"button"`
	Language  string `json:"language"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	DeviceID  string `json:"device_id"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}
