package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/gen2brain/beeep"
)

// reloadNotifier raises desktop notifications for watch reloads.
type reloadNotifier struct {
	enabled bool
	logger  logging.Logger
	notify  func(title, message, icon string) error
}

func newReloadNotifier(enabled bool, l logging.Logger) *reloadNotifier {
	return &reloadNotifier{enabled: enabled, logger: l, notify: beeep.Notify}
}

func (n *reloadNotifier) reloaded(key string, indices int) {
	n.send("oxy-creature", fmt.Sprintf("%s reloaded, %d indices", key, indices))
}

func (n *reloadNotifier) failed(key string, err error) {
	n.send("oxy-creature reload failed", fmt.Sprintf("%s: %v", key, err))
}

func (n *reloadNotifier) send(title, message string) {
	if !n.enabled {
		return
	}
	if err := n.notify(title, message, ""); err != nil {
		n.logger.Debug("failed to send notification", logging.WithField("error", err))
	}
}
