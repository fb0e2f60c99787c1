package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/xabinapal/ffpm/internal/version"
)

// Backend delivers desktop notifications. Alert is used for failures.
type Backend interface {
	Notify(title, message, iconPath string) error
	Alert(title, message, iconPath string) error
}

var appNameOnce sync.Once

// beeepBackend sends through the platform notification service.
type beeepBackend struct{}

func (beeepBackend) Notify(title, message, iconPath string) error {
	return beeep.Notify(title, message, iconPath)
}

func (beeepBackend) Alert(title, message, iconPath string) error {
	return beeep.Alert(title, message, iconPath)
}

func newDesktopBackend() Backend {
	appNameOnce.Do(func() {
		beeep.AppName = version.Name
	})
	return beeepBackend{}
}
