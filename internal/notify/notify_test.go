package notify

import (
	"errors"
	"testing"

	"github.com/xabinapal/ffpm/internal/config"
)

func newTestNotifier(t *testing.T, cfg config.NotificationConfig, mock *recordingBackend) *notifier {
	t.Helper()
	nt := New(cfg, WithBackend(mock))
	n, ok := nt.(*notifier)
	if !ok {
		t.Fatalf("expected notifier, got %T", nt)
	}
	return n
}

func allEnabled() config.NotificationConfig {
	return config.NotificationConfig{Enabled: true, OnLaunch: true, OnChange: true, OnFailure: true}
}

func TestNotifyChanges(t *testing.T) {
	tests := []struct {
		name    string
		send    func(n *notifier) error
		message string
	}{
		{
			name:    "launched",
			send:    func(n *notifier) error { return n.NotifyLaunched("work", 1234) },
			message: "Launching Firefox with profile 'work' (pid 1234)",
		},
		{
			name:    "created",
			send:    func(n *notifier) error { return n.NotifyCreated("work") },
			message: "Profile 'work' created successfully!",
		},
		{
			name:    "renamed",
			send:    func(n *notifier) error { return n.NotifyRenamed("work", "office") },
			message: "Profile renamed from 'work' to 'office'",
		},
		{
			name:    "deleted",
			send:    func(n *notifier) error { return n.NotifyDeleted("office") },
			message: "Profile 'office' deleted successfully",
		},
		{
			name:    "default",
			send:    func(n *notifier) error { return n.NotifyDefault("work") },
			message: "Profile 'work' is now the default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &recordingBackend{}
			n := newTestNotifier(t, allEnabled(), mock)

			if err := tt.send(n); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if len(mock.notices) != 1 {
				t.Fatalf("expected 1 notify call, got %d", len(mock.notices))
			}
			call := mock.notices[0]
			if call.title != "Firefox Profile Manager" {
				t.Errorf("unexpected title %q", call.title)
			}
			if call.message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, call.message)
			}
			if call.icon != "" {
				t.Errorf("expected no icon, got %q", call.icon)
			}
		})
	}
}

func TestNotifyDisabledGlobal(t *testing.T) {
	mock := &recordingBackend{}
	cfg := allEnabled()
	cfg.Enabled = false
	n := newTestNotifier(t, cfg, mock)

	_ = n.NotifyLaunched("work", 1)
	_ = n.NotifyCreated("work")
	_ = n.NotifyFailure("create profile", errors.New("boom"))

	if len(mock.notices)+len(mock.alerts) != 0 {
		t.Errorf("expected no calls when disabled, got %d notify and %d alert",
			len(mock.notices), len(mock.alerts))
	}
}

func TestNotifySelectiveToggles(t *testing.T) {
	mock := &recordingBackend{}
	n := newTestNotifier(t, config.NotificationConfig{Enabled: true, OnLaunch: true}, mock)

	_ = n.NotifyCreated("work")
	_ = n.NotifyRenamed("work", "office")
	_ = n.NotifyFailure("rename profile", errors.New("boom"))
	if len(mock.notices)+len(mock.alerts) != 0 {
		t.Fatalf("expected change and failure notifications to be off")
	}

	_ = n.NotifyLaunched("office", 99)
	if len(mock.notices) != 1 {
		t.Errorf("expected launch notification, got %d calls", len(mock.notices))
	}
}

func TestNotifyFailure(t *testing.T) {
	mock := &recordingBackend{}
	n := newTestNotifier(t, allEnabled(), mock)

	if err := n.NotifyFailure("delete profile", errors.New("permission denied")); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.alerts) != 1 {
		t.Fatalf("expected 1 alert call, got %d", len(mock.alerts))
	}
	call := mock.alerts[0]
	if call.title != "Firefox Profile Manager: Error" {
		t.Errorf("unexpected title %q", call.title)
	}
	if call.message != "Failed to delete profile: permission denied" {
		t.Errorf("unexpected message %q", call.message)
	}
}

func TestNotifyBackendError(t *testing.T) {
	expectedErr := errors.New("backend error")
	mock := &recordingBackend{err: expectedErr}
	n := newTestNotifier(t, allEnabled(), mock)

	if err := n.NotifyCreated("work"); err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := n.NotifyFailure("create profile", errors.New("test error")); err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}
