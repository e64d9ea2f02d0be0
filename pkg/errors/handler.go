package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives reported transport failures and recovered
	// panics. It defaults to a LogHandler on stderr.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler replaces DefaultHandler. Nil restores the stderr LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		h = &LogHandler{}
	}
	DefaultHandler = h
}

func handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report hands a failure that was recovered locally, such as a mirror that
// did not answer, to DefaultHandler. Missing timestamps and stacks are filled
// in from the caller.
func Report(err *IconError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if err.StackTrace == "" {
		err.StackTrace = stack(3)
	}
	handler().HandleError(err)
}

// RecoverWithCallback recovers a panic in the deferring function, reports it
// as a PanicError and then calls callback with the panic value.
//
//	defer errors.RecoverWithCallback("serve /mdi/home.svg", func(any) { ... })
func RecoverWithCallback(op string, callback func(r any)) {
	r := recover()
	if r == nil {
		return
	}
	handler().HandlePanic(&PanicError{
		Op:         op,
		Value:      r,
		StackTrace: stack(3),
		Timestamp:  time.Now(),
	})
	if callback != nil {
		callback(r)
	}
}

// stack formats up to 32 frames, skipping skip frames as runtime.Callers does.
func stack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}
