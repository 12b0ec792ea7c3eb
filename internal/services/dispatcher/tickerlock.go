package dispatcher

import "sync"

// tickerLocks hands out one mutex per ticker.
type tickerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTickerLocks() *tickerLocks {
	return &tickerLocks{locks: make(map[string]*sync.Mutex)}
}

// lock blocks until ticker is free and returns the matching unlock.
func (l *tickerLocks) lock(ticker string) func() {
	l.mu.Lock()
	m, ok := l.locks[ticker]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ticker] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
