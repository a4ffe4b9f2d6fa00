package daemon

import (
	"sync"

	"github.com/leonardotrapani/hyprnote/internal/notify"
	"github.com/leonardotrapani/hyprnote/internal/recognition"
)

// switchPlatform lets a config reload replace the recognition platform
// under a running capture controller.
type switchPlatform struct {
	mu      sync.RWMutex
	current recognition.Platform
}

func (p *switchPlatform) set(next recognition.Platform) {
	p.mu.Lock()
	p.current = next
	p.mu.Unlock()
}

func (p *switchPlatform) get() recognition.Platform {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *switchPlatform) Available() bool {
	return p.get().Available()
}

func (p *switchPlatform) NewSource(opts recognition.Options) (recognition.Source, error) {
	return p.get().NewSource(opts)
}

type switchNotifier struct {
	mu      sync.RWMutex
	current notify.Notifier
}

func (n *switchNotifier) set(next notify.Notifier) {
	n.mu.Lock()
	n.current = next
	n.mu.Unlock()
}

func (n *switchNotifier) get() notify.Notifier {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

func (n *switchNotifier) Send(t notify.MessageType) { n.get().Send(t) }
func (n *switchNotifier) Error(msg string)          { n.get().Error(msg) }
