package tlocal

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID extracts the calling goroutine's numeric id from the header
// line of its own stack trace ("goroutine 123 [running]: ..."). Goroutine
// ids are assigned from a monotonically increasing counter and are never
// reused within a process, which is the one property this package actually
// relies on: an id once seen dead stays dead.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	// Skip the "goroutine " prefix.
	const prefix = "goroutine "
	if len(b) < len(prefix) {
		return -1
	}
	b = b[len(prefix):]

	end := bytes.IndexByte(b, ' ')
	if end < 0 {
		end = len(b)
	}
	id, err := strconv.ParseInt(string(b[:end]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

// LiveGoroutineIDs parses a full, all-goroutines stack dump and returns the
// set of ids currently alive. It is comparatively expensive (it briefly
// stops the world to collect every goroutine's stack) and is meant to be
// called by a slow background sweep, never from a hot path.
func LiveGoroutineIDs() map[int64]struct{} {
	buf := make([]byte, 1<<16)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, len(buf)*2)
	}

	ids := make(map[int64]struct{})
	const prefix = "goroutine "
	for len(buf) > 0 {
		nl := bytes.IndexByte(buf, '\n')
		var line []byte
		if nl < 0 {
			line = buf
			buf = nil
		} else {
			line = buf[:nl]
			buf = buf[nl+1:]
		}
		if len(line) > len(prefix) && string(line[:len(prefix)]) == prefix {
			rest := line[len(prefix):]
			end := 0
			for end < len(rest) && rest[end] != ' ' {
				end++
			}
			if id, err := strconv.ParseInt(string(rest[:end]), 10, 64); err == nil {
				ids[id] = struct{}{}
			}
		}
	}
	return ids
}
