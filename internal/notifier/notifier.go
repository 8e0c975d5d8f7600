// Package notifier broadcasts document change signals to listeners such as
// SSE streams and the autosave scheduler.
package notifier

import "sync"

// Topic names the part of the document that changed.
type Topic string

// Change topics.
const (
	TopicProject        Topic = "project"
	TopicLanguages      Topic = "languages"
	TopicProtolanguages Topic = "protolanguages"
	TopicPhonemes       Topic = "phonemes"
)

// Notifier delivers pings to subscribed listeners. Listeners receive an
// empty struct and should re-query the document; pings coalesce while a
// listener is behind.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]map[Topic]bool
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]map[Topic]bool),
	}
}

// Subscribe returns a channel pinged whenever one of topics changes. With no
// topics the listener hears every change.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(topics ...Topic) chan struct{} {
	var filter map[Topic]bool
	if len(topics) > 0 {
		filter = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			filter[t] = true
		}
	}

	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = filter
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast pings every listener interested in any of topics.
// Non-blocking: if a listener's channel is full, the ping is skipped.
func (n *Notifier) Broadcast(topics ...Topic) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch, filter := range n.listeners {
		if !matches(filter, topics) {
			continue
		}
		select {
		case ch <- struct{}{}:
		default:
			// Listener already has a pending ping
		}
	}
}

func matches(filter map[Topic]bool, topics []Topic) bool {
	if filter == nil {
		return true
	}
	for _, t := range topics {
		if filter[t] {
			return true
		}
	}
	return false
}
