package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconErrorString(t *testing.T) {
	err := New("manager.Get", KindIconNotFound, "tabler:home", fmt.Errorf("no such icon"))
	assert.Equal(t, `manager.Get [icon not found] "tabler:home": no such icon`, err.Error())

	bare := &IconError{Kind: KindInvalidKey}
	assert.Equal(t, "invalid key", bare.Error())
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindInvalidName, "invalid name"},
		{KindProviderNotFound, "provider not found"},
		{KindIconNotFound, "icon not found"},
		{KindInvalidSourceData, "invalid source data"},
		{KindInvalidSvg, "invalid svg"},
		{KindInvalidKey, "invalid key"},
		{KindStorage, "storage"},
		{KindTransport, "transport"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String(), "ErrorKind(%d)", tt.kind)
	}
}

func TestIsMatchesKindSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New("provider.Get", KindIconNotFound, "home", nil))

	assert.True(t, stderrors.Is(err, ErrIconNotFound))
	assert.False(t, stderrors.Is(err, ErrInvalidName))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, KindIconNotFound, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("plain")))
}

func TestIsDoesNotMatchNonSentinel(t *testing.T) {
	a := New("a", KindStorage, "", nil)
	b := New("b", KindStorage, "", nil)
	assert.False(t, stderrors.Is(a, b))
	assert.True(t, stderrors.Is(a, a))
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := New("cache.Set", KindStorage, "key", inner)
	assert.ErrorIs(t, err, inner)
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	assert.Equal(t, "panic: test panic", err.Error())

	err.Op = "serve.icon"
	assert.Equal(t, "panic in serve.icon: test panic", err.Error())
}

func TestReport(t *testing.T) {
	var captured *IconError
	handler := &testHandler{onError: func(err *IconError) { captured = err }}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(New("iconify.fetch", KindTransport, "https://api.example", fmt.Errorf("timeout")))

	require.NotNil(t, captured)
	assert.Equal(t, "iconify.fetch", captured.Op)
	assert.False(t, captured.Timestamp.IsZero())
	assert.Contains(t, captured.StackTrace, "TestReport")

	Report(nil)
}

func TestRecoverWithCallback(t *testing.T) {
	var captured *PanicError
	oldHandler := DefaultHandler
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	assert.Equal(t, 42, got)
	require.NotNil(t, captured)
	assert.Equal(t, 42, captured.Value)
	assert.Equal(t, "test.callback", captured.Op)
	assert.NotEmpty(t, captured.StackTrace)

	// No panic, no report.
	captured = nil
	func() {
		defer RecoverWithCallback("test.quiet", func(any) { t.Fatal("callback without panic") })
	}()
	assert.Nil(t, captured)
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := DefaultHandler
	defer SetHandler(oldHandler)

	SetHandler(nil)
	_, ok := DefaultHandler.(*LogHandler)
	assert.True(t, ok, "SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
}

func TestLogHandlerWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	h.HandleError(New("iconify.fetch", KindTransport, "https://api.example", fmt.Errorf("502")))
	out := buf.String()
	assert.True(t, strings.Contains(out, "op=iconify.fetch"), out)
	assert.True(t, strings.Contains(out, "kind=transport"), out)

	buf.Reset()
	h.HandlePanic(&PanicError{Op: "serve.icon", Value: "boom"})
	assert.Contains(t, buf.String(), "value=boom")
}

type testHandler struct {
	onError func(*IconError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *IconError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
