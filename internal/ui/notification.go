package ui

import (
	"fmt"
	"os"
	"os/exec"
)

// For a list of possible icons, see: https://specifications.freedesktop.org/icon-naming-spec/icon-naming-spec-latest.html
const (
	IconDialogError = "dialog-error"
	IconDialogInfo  = "dialog-information"
	IconDialogWarn  = "dialog-warning"

	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyCritical = "critical"
)

var notificationsEnabled = false

// SetNotificationsEnabled toggles desktop notifications, they are disabled by default
func SetNotificationsEnabled(enabled bool) {
	notificationsEnabled = enabled
}

func NotifyInfo(title, text string) {
	NotifySend(UrgencyLow, title, text, IconDialogInfo)
}

func NotifyWarn(title, text string) {
	NotifySend(UrgencyNormal, title, text, IconDialogWarn)
}

func NotifyError(title, text string) {
	NotifySend(UrgencyCritical, title, text, IconDialogError)
}

// InfoAndNotify logs the given message and sends it as a desktop notification
func InfoAndNotify(title, format string, a ...interface{}) {
	text := fmt.Sprintf(format, a...)
	Info("%s: %s", title, text)
	NotifyInfo(title, text)
}

// ErrorAndNotify logs the given message and sends it as a desktop notification
func ErrorAndNotify(title, format string, a ...interface{}) {
	text := fmt.Sprintf(format, a...)
	Error("%s: %s", title, text)
	NotifyError(title, text)
}

func NotifySend(urgency, title, text, icon string) {
	if !notificationsEnabled {
		return
	}

	if _, exists := os.LookupEnv("DISPLAY"); !exists {
		Warning("Cannot send notification, missing env variable 'DISPLAY'!")
		return
	}

	cmd := exec.Command("notify-send",
		"-a", "twiddle",
		"-u", urgency,
		"-i", icon,
		title, text,
	)
	if err := cmd.Run(); err != nil {
		Error("Error sending notification: %v", err)
	}
}
