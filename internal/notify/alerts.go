package notify

import (
	"context"
	"fmt"
	"strings"
)

var buttonLabels = map[string]string{
	"BTN1": "🆘 Help",
	"BTN2": "💊 Medicine",
	"BTN3": "💧 Water",
	"BTN4": "🛏️ Rest",
	"BTN5": "📞 Call Someone",
	"BTN6": "🚨 Emergency",
}

// ButtonPress is the alert sent for every trigger.
type ButtonPress struct {
	Button     string
	Text       string
	Language   string
	UserID     string
	DeviceID   string
	DeviceName string
	Source     string
}

func NotifyButtonPress(ctx context.Context, n Notifier, p ButtonPress) bool {
	label, ok := buttonLabels[p.Button]
	if !ok {
		label = p.Button
	}

	body := "🔔 Button pressed on your Assistive Device\n\n" +
		fmt.Sprintf("Action: %s\n", label) +
		fmt.Sprintf("Message: %s\n", p.Text)

	return n.Send(ctx, Message{
		Title: "📱 Button Press Alert",
		Body:  body,
		Details: &ButtonDetails{
			Button:     label,
			Text:       p.Text,
			Language:   p.Language,
			UserID:     p.UserID,
			DeviceID:   p.DeviceID,
			DeviceName: p.DeviceName,
			Source:     p.Source,
		},
		IncludeTimestamp: true,
	})
}

func NotifySecurityReset(ctx context.Context, n Notifier, email string) bool {
	return n.Send(ctx, Message{
		Title:            "🔒 Security Alert",
		Body:             fmt.Sprintf("🔐 Password reset initiated for account: %s", email),
		IncludeTimestamp: true,
	})
}

func NotifyAccountSignup(ctx context.Context, n Notifier, email, accountType string) bool {
	label := "👨‍⚕️ Caretaker"
	if accountType == "primary" {
		label = "👴 Primary (Disabled/Elderly)"
	}
	return n.Send(ctx, Message{
		Title:            "👤 New User Registration",
		Body:             fmt.Sprintf("✅ New account created\n\nEmail: %s\nType: %s", email, label),
		IncludeTimestamp: true,
	})
}

func NotifyHelpRequest(ctx context.Context, n Notifier, userID, helpText, deviceID string) bool {
	var b strings.Builder
	b.WriteString("🚨 <b>HELP REQUEST</b>\n\n")
	fmt.Fprintf(&b, "Message: %s\n", helpText)
	fmt.Fprintf(&b, "User: %s\n", userID)
	if deviceID != "" {
		fmt.Fprintf(&b, "Device: %s\n", deviceID)
	}
	return n.Send(ctx, Message{
		Title:            "🆘 URGENT - Help Request",
		Body:             b.String(),
		IncludeTimestamp: true,
	})
}

func NotifyEmergency(ctx context.Context, n Notifier, userID, deviceID string) bool {
	var b strings.Builder
	b.WriteString("🚨 <b>EMERGENCY ALERT</b>\n\n")
	fmt.Fprintf(&b, "User: %s\n", userID)
	if deviceID != "" {
		fmt.Fprintf(&b, "Device: %s\n", deviceID)
	}
	b.WriteString("\n⚠️ IMMEDIATE ACTION REQUIRED")
	return n.Send(ctx, Message{
		Title:            "🚨 CRITICAL - EMERGENCY",
		Body:             b.String(),
		IncludeTimestamp: true,
	})
}
