package notify

import (
	"testing"

	"github.com/gen2brain/beeep"
)

type sent struct {
	title   string
	message string
	icon    string
}

// recordingBackend keeps every notification and fails with err when set.
type recordingBackend struct {
	err     error
	notices []sent
	alerts  []sent
}

func (b *recordingBackend) Notify(title, message, iconPath string) error {
	b.notices = append(b.notices, sent{title, message, iconPath})
	return b.err
}

func (b *recordingBackend) Alert(title, message, iconPath string) error {
	b.alerts = append(b.alerts, sent{title, message, iconPath})
	return b.err
}

func TestNewDesktopBackend_AppName(t *testing.T) {
	if _, ok := newDesktopBackend().(beeepBackend); !ok {
		t.Fatal("expected the beeep backend")
	}
	if beeep.AppName != "ffpm" {
		t.Errorf("beeep.AppName = %q, want ffpm", beeep.AppName)
	}
}
