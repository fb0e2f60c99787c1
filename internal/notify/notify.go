// Package notify sends desktop notifications about profile operations.
package notify

import (
	"fmt"

	"github.com/xabinapal/ffpm/internal/config"
)

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// NotifyLaunched reports that the browser was started on a profile.
	NotifyLaunched(profile string, pid int) error
	// NotifyCreated reports a new profile.
	NotifyCreated(profile string) error
	// NotifyRenamed reports a renamed profile.
	NotifyRenamed(from, to string) error
	// NotifyDeleted reports a deleted profile.
	NotifyDeleted(profile string) error
	// NotifyDefault reports a new default profile.
	NotifyDefault(profile string) error
	// NotifyFailure reports a failed operation.
	NotifyFailure(action string, err error) error
}

// Option configures a Notifier.
type Option func(*notifier)

// WithBackend sets a custom notification backend (for testing).
func WithBackend(backend Backend) Option {
	return func(n *notifier) {
		n.backend = backend
	}
}

// notifier sends desktop notifications using the system notification service.
type notifier struct {
	onLaunch  bool
	onChange  bool
	onFailure bool
	backend   Backend
}

// NotifyLaunched implements Notifier.
func (n *notifier) NotifyLaunched(profile string, pid int) error {
	if !n.onLaunch {
		return nil
	}
	return n.backend.Notify("Firefox Profile Manager", fmt.Sprintf("Launching Firefox with profile '%s' (pid %d)", profile, pid), "")
}

// NotifyCreated implements Notifier.
func (n *notifier) NotifyCreated(profile string) error {
	return n.change(fmt.Sprintf("Profile '%s' created successfully!", profile))
}

// NotifyRenamed implements Notifier.
func (n *notifier) NotifyRenamed(from, to string) error {
	return n.change(fmt.Sprintf("Profile renamed from '%s' to '%s'", from, to))
}

// NotifyDeleted implements Notifier.
func (n *notifier) NotifyDeleted(profile string) error {
	return n.change(fmt.Sprintf("Profile '%s' deleted successfully", profile))
}

// NotifyDefault implements Notifier.
func (n *notifier) NotifyDefault(profile string) error {
	return n.change(fmt.Sprintf("Profile '%s' is now the default", profile))
}

func (n *notifier) change(message string) error {
	if !n.onChange {
		return nil
	}
	return n.backend.Notify("Firefox Profile Manager", message, "")
}

// NotifyFailure implements Notifier.
func (n *notifier) NotifyFailure(action string, err error) error {
	if !n.onFailure {
		return nil
	}
	return n.backend.Alert("Firefox Profile Manager: Error", fmt.Sprintf("Failed to %s: %v", action, err), "")
}

// New creates a new Notifier based on the configuration.
func New(cfg config.NotificationConfig, opts ...Option) Notifier {
	n := &notifier{
		onLaunch:  cfg.Enabled && cfg.OnLaunch,
		onChange:  cfg.Enabled && cfg.OnChange,
		onFailure: cfg.Enabled && cfg.OnFailure,
		backend:   newDesktopBackend(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}
