package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"
)

// Notifier pushes operator alerts for critical security events through a
// shoutrrr URL. An empty URL disables pushes without error.
type Notifier struct {
	url  string
	send func(url, message string) error
}

// NewNotifier builds a Notifier for the given shoutrrr URL.
func NewNotifier(url string) *Notifier {
	return &Notifier{url: url, send: func(u, m string) error { return shoutrrr.Send(u, m) }}
}

// Enabled reports whether a destination is configured.
func (n *Notifier) Enabled() bool { return n.url != "" }

// NotifyCriticalAttack pushes a critical detection alert.
func (n *Notifier) NotifyCriticalAttack(ip, attackType, description string) error {
	if !n.Enabled() {
		return nil
	}
	msg := fmt.Sprintf("[bastion] critical attack detected: type=%s ip=%s (%s)", attackType, ip, description)
	if err := n.send(n.url, msg); err != nil {
		return fmt.Errorf("send attack notification: %w", err)
	}
	return nil
}

// NotifyBan pushes a ban event alert. Failures are reported to the caller,
// not swallowed.
func (n *Notifier) NotifyBan(ip string, permanent bool) error {
	if !n.Enabled() {
		return nil
	}
	kind := "temporary"
	if permanent {
		kind = "permanent"
	}
	msg := fmt.Sprintf("[bastion] %s ban applied to %s", kind, ip)
	if err := n.send(n.url, msg); err != nil {
		return fmt.Errorf("send ban notification: %w", err)
	}
	return nil
}
