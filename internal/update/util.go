package update

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const maxNotifications = 40

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func formatDuration(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	min := totalSec / 60
	sec := totalSec % 60
	return fmt.Sprintf("%02d:%02d", min, sec)
}

// notify appends to the in-app feed and forwards to the desktop notifier
// when enabled. Desktop failures are logged and otherwise ignored.
func (m *Model) notify(title, body, level string) {
	n := Notification{Title: title, Body: body, Level: level, At: m.Snapshot.Now}
	if n.At.IsZero() {
		n.At = time.Now()
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if !m.DesktopEnabled || m.notifier == nil {
		return
	}
	if err := m.notifier.Send(n); err != nil {
		slog.Warn("desktop notification failed", "title", title, "err", err)
	}
}
