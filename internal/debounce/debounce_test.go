package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) add(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncer_SingleValue(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	d := New(20*time.Millisecond, rec.add)
	defer d.Stop()

	d.Set("go")
	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"go"}, rec.get())

	settled, ok := d.Settled()
	assert.True(t, ok)
	assert.Equal(t, "go", settled)
}

func TestDebouncer_BurstEmitsLastValueOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	d := New(50*time.Millisecond, rec.add)
	defer d.Stop()

	for _, v := range []string{"f", "fa", "fas", "fast", "fastapi"} {
		d.Set(v)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.get()) >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"fastapi"}, rec.get())
}

func TestDebouncer_StopBeforeWindowReleasesTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	d := New(30*time.Millisecond, rec.add)

	d.Set("never")
	assert.True(t, d.Pending())
	d.Stop()
	assert.False(t, d.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.get())

	d.Set("after stop")
	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.get())
}

func TestDebouncer_Flush(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	d := New(time.Hour, rec.add)
	defer d.Stop()

	assert.False(t, d.Flush())

	d.Set("now")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"now"}, rec.get())
	assert.False(t, d.Pending())
}

func TestDebouncer_StopWaitsForRunningCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	entered := make(chan string, 1)
	release := make(chan struct{})
	var calls sync.WaitGroup
	calls.Add(1)
	d := New(10*time.Millisecond, func(v string) {
		entered <- v
		<-release
		calls.Done()
	})

	d.Set("slow")
	select {
	case v := <-entered:
		assert.Equal(t, "slow", v)
	case <-time.After(time.Second):
		t.Fatal("callback did not start")
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the callback finished")
	}
	calls.Wait()

	d.Set("after stop")
	assert.False(t, d.Flush())
	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, entered)
}
