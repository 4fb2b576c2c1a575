package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchSignals_NormalExitDoesNotFire(t *testing.T) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	returned := make(chan struct{})

	fired := false
	go func() {
		watchSignals(sigs, done, func(os.Signal) { fired = true })
		close(returned)
	}()

	close(done)
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not return after done was closed")
	}
	assert.False(t, fired)
}

func TestWatchSignals_SignalFires(t *testing.T) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	defer close(done)

	var got os.Signal
	sigs <- syscall.SIGTERM
	watchSignals(sigs, done, func(s os.Signal) { got = s })

	require.NotNil(t, got)
	assert.Equal(t, syscall.SIGTERM, got)
}
