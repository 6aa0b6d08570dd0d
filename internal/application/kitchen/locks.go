package kitchen

import "sync"

// workspaceLocks serializes operations per workspace id. Entries are
// reference counted so idle workspaces do not accumulate locks.
type workspaceLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newWorkspaceLocks() *workspaceLocks {
	return &workspaceLocks{
		entries: make(map[string]*lockEntry),
	}
}

// lock acquires the workspace's lock and returns its release function
func (l *workspaceLocks) lock(workspaceID string) func() {
	l.mu.Lock()
	entry, ok := l.entries[workspaceID]
	if !ok {
		entry = &lockEntry{}
		l.entries[workspaceID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, workspaceID)
		}
		l.mu.Unlock()
	}
}
