package csvdoc

import "sync"

// lease tracks the row views a Document has handed out. Any number of
// read-only views may be live at once, or a single mutable one.
type lease struct {
	mu        sync.Mutex
	shared    int
	exclusive bool
}

func (l *lease) acquireShared() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exclusive {
		return ErrDocumentBusy
	}
	l.shared++
	return nil
}

func (l *lease) releaseShared() {
	l.mu.Lock()
	l.shared--
	l.mu.Unlock()
}

func (l *lease) acquireExclusive() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exclusive || l.shared > 0 {
		return ErrDocumentBusy
	}
	l.exclusive = true
	return nil
}

func (l *lease) releaseExclusive() {
	l.mu.Lock()
	l.exclusive = false
	l.mu.Unlock()
}

func (l *lease) busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exclusive || l.shared > 0
}
