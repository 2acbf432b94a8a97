// Package inmemory provides a process-local [memory.Store] guarded by a
// sync.RWMutex. State is lost when the process exits.
package inmemory
