package service

import "sync"

// walletLocks serializes challenge issuance per normalized wallet address.
// Entries are kept for the process lifetime; the map is bounded by the number
// of distinct wallets seen.
type walletLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWalletLocks() *walletLocks {
	return &walletLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the key and returns its unlock func.
func (l *walletLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
