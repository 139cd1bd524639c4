package main

import (
	"sync"
	"sync/atomic"
)

var nextID atomic.Int64

// Logger collects log lines. It is registered as a shared instance.
type Logger interface {
	Log(msg string)
	Lines() []string
}

type memoryLogger struct {
	mu    sync.Mutex
	lines []string
}

func newMemoryLogger() *memoryLogger { return &memoryLogger{} }

func (l *memoryLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, msg)
}

func (l *memoryLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Database is registered as a singleton.
type Database interface {
	ID() int64
}

type sqlDatabase struct {
	id int64
}

func newSQLDatabase(logger Logger) *sqlDatabase {
	db := &sqlDatabase{id: nextID.Add(1)}
	if logger != nil {
		logger.Log("database opened")
	}
	return db
}

func (d *sqlDatabase) ID() int64 { return d.id }

// Clock is registered per thread.
type Clock interface {
	ID() int64
}

type tickClock struct {
	id int64
}

func newTickClock() *tickClock { return &tickClock{id: nextID.Add(1)} }

func (c *tickClock) ID() int64 { return c.id }

// Scheduler takes the default lifetime and depends on a Clock.
type Scheduler interface {
	Clock() Clock
}

type cronScheduler struct {
	clock Clock
}

func newCronScheduler(clock Clock) *cronScheduler { return &cronScheduler{clock: clock} }

func (s *cronScheduler) Clock() Clock { return s.clock }
