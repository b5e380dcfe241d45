package retry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialDelay(t *testing.T) {
	b := Exponential{Base: 100 * time.Millisecond, Max: time.Second}

	assert.Equal(t, 100*time.Millisecond, b.Delay(1))
	assert.Equal(t, 200*time.Millisecond, b.Delay(2))
	assert.Equal(t, 400*time.Millisecond, b.Delay(3))
	assert.Equal(t, 800*time.Millisecond, b.Delay(4))
	assert.Equal(t, time.Second, b.Delay(5))
	assert.Equal(t, time.Second, b.Delay(60))
	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
}

func TestExponentialMultiplier(t *testing.T) {
	b := Exponential{Base: time.Second, Multiplier: 3}
	assert.Equal(t, 9*time.Second, b.Delay(3))
}

func TestExponentialJitterBounds(t *testing.T) {
	b := Exponential{Base: 100 * time.Millisecond, Jitter: true}
	for i := 0; i < 100; i++ {
		d := b.Delay(2)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 300*time.Millisecond)
	}
}

func TestExponentialJitterRespectsMax(t *testing.T) {
	b := Exponential{Base: time.Second, Max: 2 * time.Second, Jitter: true}
	for i := 0; i < 1000; i++ {
		d := b.Delay(5)
		assert.LessOrEqual(t, d, 2*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
	}
}

func TestConstantDelay(t *testing.T) {
	c := Constant(time.Second)
	assert.Equal(t, time.Second, c.Delay(1))
	assert.Equal(t, time.Second, c.Delay(10))
}

func TestPolicyRetriable(t *testing.T) {
	p := Policy{MaxAttempts: 2}
	assert.True(t, p.retriable(errors.New("boom")))
	assert.False(t, p.retriable(context.Canceled))
	assert.False(t, p.retriable(Permanent(errors.New("boom"))))

	p.Retriable = IsTransient
	assert.False(t, p.retriable(errors.New("boom")))
	assert.True(t, p.retriable(fmt.Errorf("mkdir: %w", syscall.EBUSY)))
}

func TestPolicyNoBackoff(t *testing.T) {
	assert.Zero(t, Policy{MaxAttempts: 2}.delay(3))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&os.PathError{Op: "mkdir", Path: "/x", Err: syscall.EAGAIN}))
	assert.True(t, IsTransient(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(os.ErrDeadlineExceeded))
	assert.False(t, IsTransient(os.ErrPermission))
	assert.False(t, IsTransient(nil))
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(nil))
}
