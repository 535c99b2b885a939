package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoRecoversPanicAndResetsTerminal(t *testing.T) {
	exited := make(chan int, 1)
	origExit := exitFn
	exitFn = func(code int) { exited <- code }
	defer func() { exitFn = origExit }()

	resetCalls := 0
	SetTerminalReset(func() { resetCalls++ })

	Go(func() { panic("boom") })

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(time.Second):
		t.Fatal("crash handler did not run")
	}
	assert.Equal(t, 1, resetCalls)

	// Reset hook is consumed by the first crash
	resetMu.Lock()
	defer resetMu.Unlock()
	require.Nil(t, resetFn)
}

func TestHandleCrashNil(t *testing.T) {
	origExit := exitFn
	called := false
	exitFn = func(int) { called = true }
	defer func() { exitFn = origExit }()

	HandleCrash(nil)
	assert.False(t, called)
}
