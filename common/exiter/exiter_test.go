package exiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkersEndOnExit(t *testing.T) {
	ex := New()
	stopped := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		w := ex.Worker()
		go func() {
			defer w.End()
			<-w.Wait()
			stopped <- struct{}{}
		}()
	}
	assert.EqualValues(t, 2, ex.Jobs())
	assert.False(t, ex.Exiting())

	ex.Exit()
	ex.Exit()
	done := make(chan struct{})
	go func() {
		ex.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("exiter did not finish")
	}
	assert.Len(t, stopped, 2)
	assert.Zero(t, ex.Jobs())
}

func TestQuitEndsOnce(t *testing.T) {
	ex := New()
	w := ex.Worker()
	f := w.Fork()
	require.EqualValues(t, 2, ex.Jobs())
	assert.False(t, w.Quit())

	ex.Exit()
	assert.True(t, w.Quit())
	assert.True(t, w.Quit())
	assert.EqualValues(t, 1, ex.Jobs())
	f.End()
	f.End()
	assert.Zero(t, ex.Jobs())
	assert.Panics(t, func() { w.Fork() })
}
