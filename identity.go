package ioc

import (
	"bytes"
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

// goid returns the current goroutine ID, parsed from the first line of the
// stack trace ("goroutine 42 [running]:").
func goid() int64 {
	var buf [64]byte
	line := bytes.TrimPrefix(buf[:runtime.Stack(buf[:], false)], goroutinePrefix)
	if i := bytes.IndexByte(line, ' '); i > 0 {
		line = line[:i]
	}
	id, _ := strconv.ParseInt(string(line), 10, 64)
	return id
}

// GoroutineIdentity is the default IdentityFunc: every goroutine is its own
// execution identity. Goroutine IDs are never reused within a process.
func GoroutineIdentity() any {
	return goid()
}
