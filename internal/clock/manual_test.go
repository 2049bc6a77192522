package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestManual_AdvanceFiresDueTimersInOrder(t *testing.T) {
	c := NewManual(epoch)
	var fired []string

	c.AfterFunc(3*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	c.AfterFunc(10*time.Second, func() { fired = append(fired, "c") })

	c.Advance(5 * time.Second)

	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, epoch.Add(5*time.Second), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestManual_Stop(t *testing.T) {
	c := NewManual(epoch)
	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, called)
	assert.Equal(t, 0, c.Pending())
}

func TestManual_StopAfterFire(t *testing.T) {
	c := NewManual(epoch)
	timer := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManual_CallbackSeesDeadlineTime(t *testing.T) {
	c := NewManual(epoch)
	var seen time.Time
	c.AfterFunc(2*time.Second, func() { seen = c.Now() })

	c.Advance(time.Minute)
	assert.Equal(t, epoch.Add(2*time.Second), seen)
}

func TestManual_TimerScheduledByCallback(t *testing.T) {
	c := NewManual(epoch)
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1, count)
	c.Advance(time.Second)
	assert.Equal(t, 2, count)
}

func TestReal(t *testing.T) {
	c := Real()
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)

	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
