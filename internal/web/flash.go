package web

import (
	"sync"

	"taskboard/internal/store"
)

// flash is the dashboard's store.Notifier. Notifications wait until the next
// rendered page shows them.
type flash struct {
	mu      sync.Mutex
	pending []store.Notification
}

func (f *flash) Notify(n store.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, n)
}

func (f *flash) take() []flashMessage {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()

	msgs := make([]flashMessage, 0, len(pending))
	for _, n := range pending {
		text := n.Message
		if n.Err != nil {
			text += ": " + n.Err.Error()
		}
		msgs = append(msgs, flashMessage{Level: n.Level.String(), Text: text})
	}
	return msgs
}

type flashMessage struct {
	Level string
	Text  string
}
