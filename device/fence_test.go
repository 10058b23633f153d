package device

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// laggingQueue reports submissions as complete only after the device has
// been waited on.
type laggingQueue struct {
	*noop.Queue
	submitted  uint64
	completed  uint64
	presentErr error
}

func (q *laggingQueue) Present(_ hal.Surface, _ hal.SurfaceTexture, _ []image.Rectangle) error {
	return q.presentErr
}

func (q *laggingQueue) Submit(_ []hal.CommandBuffer) (uint64, error) {
	q.submitted++
	return q.submitted, nil
}

func (q *laggingQueue) PollCompleted() uint64 { return q.completed }

// idleDevice completes queued work on WaitIdle and hands out a recording
// encoder.
type idleDevice struct {
	*noop.Device
	queue   *laggingQueue
	encoder *recordingEncoder
	waits   int
	waitErr error
}

func (d *idleDevice) WaitIdle() error {
	d.waits++
	if d.waitErr != nil {
		return d.waitErr
	}
	d.queue.completed = d.queue.submitted
	return nil
}

func (d *idleDevice) CreateCommandEncoder(_ *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return d.encoder, nil
}

// recordingEncoder records encoder lifecycle calls and flags any reset of
// command buffers the GPU has not finished.
type recordingEncoder struct {
	*noop.CommandEncoder
	queue      *laggingQueue
	events     []string
	earlyReset int
}

func (e *recordingEncoder) BeginEncoding(_ string) error {
	e.events = append(e.events, "begin")
	return nil
}

func (e *recordingEncoder) EndEncoding() (hal.CommandBuffer, error) {
	e.events = append(e.events, "end")
	return &noop.Resource{}, nil
}

func (e *recordingEncoder) ResetAll(_ []hal.CommandBuffer) {
	if e.queue.completed < e.queue.submitted {
		e.earlyReset++
	}
	e.events = append(e.events, "reset")
}

type fakeAdapter struct {
	*noop.Adapter
	open hal.OpenDevice
}

func (a *fakeAdapter) Open(_ gputypes.Features, _ gputypes.Limits) (hal.OpenDevice, error) {
	return a.open, nil
}

type fakeInstance struct {
	*noop.Instance
	adapters []hal.ExposedAdapter
}

func (i *fakeInstance) EnumerateAdapters(_ hal.Surface) []hal.ExposedAdapter { return i.adapters }

func newLaggingContext(t *testing.T) (*Context, *idleDevice) {
	t.Helper()
	queue := &laggingQueue{Queue: &noop.Queue{}}
	dev := &idleDevice{
		Device:  &noop.Device{},
		queue:   queue,
		encoder: &recordingEncoder{CommandEncoder: &noop.CommandEncoder{}, queue: queue},
	}
	inst := &fakeInstance{
		Instance: &noop.Instance{},
		adapters: []hal.ExposedAdapter{{
			Adapter: &fakeAdapter{Adapter: &noop.Adapter{}, open: hal.OpenDevice{Device: dev, Queue: queue}},
			Info:    gputypes.AdapterInfo{Name: "lagging", DeviceType: gputypes.DeviceTypeDiscreteGPU},
		}},
	}
	ctx, err := NewWithInstance(inst, FixedWindow{Width: 320, Height: 240}, Config{})
	if err != nil {
		t.Fatalf("NewWithInstance failed: %v", err)
	}
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx, dev
}

func TestFrameEndWaitsForGPU(t *testing.T) {
	ctx, dev := newLaggingContext(t)

	for i := range 3 {
		if err := ctx.FrameBegin(); err != nil {
			t.Fatalf("frame %d: FrameBegin: %v", i, err)
		}
		waitsBefore := dev.waits
		if err := ctx.FrameEnd(); err != nil {
			t.Fatalf("frame %d: FrameEnd: %v", i, err)
		}
		if dev.waits == waitsBefore {
			t.Errorf("frame %d: FrameEnd returned without waiting on the GPU", i)
		}
		if ctx.CompletedValue() != ctx.SignaledValue() {
			t.Errorf("frame %d: completed %d != signaled %d", i, ctx.CompletedValue(), ctx.SignaledValue())
		}
		if want := uint64(i + 1); ctx.SignaledValue() != want {
			t.Errorf("frame %d: SignaledValue() = %d, want %d", i, ctx.SignaledValue(), want)
		}
	}
	if dev.encoder.earlyReset != 0 {
		t.Errorf("encoder reset %d times before the GPU finished", dev.encoder.earlyReset)
	}

	want := []string{"begin", "end", "reset", "begin", "end", "reset", "begin", "end", "reset", "begin"}
	got := dev.encoder.events
	if len(got) != len(want) {
		t.Fatalf("encoder events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("encoder events = %v, want %v", got, want)
		}
	}
}

func TestFrameFenceCompletedValue(t *testing.T) {
	queue := &laggingQueue{Queue: &noop.Queue{}}
	dev := &idleDevice{Device: &noop.Device{}, queue: queue}
	f := newFrameFence(dev, queue)

	if f.completedValue() != 0 {
		t.Fatalf("initial completedValue() = %d, want 0", f.completedValue())
	}
	idx, _ := queue.Submit(nil)
	if got := f.signal(idx); got != 1 {
		t.Fatalf("signal() = %d, want 1", got)
	}
	if f.completedValue() != 0 {
		t.Errorf("completedValue() before GPU completion = %d, want 0", f.completedValue())
	}
	if err := f.wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if f.completedValue() != 1 {
		t.Errorf("completedValue() after wait = %d, want 1", f.completedValue())
	}
}

func TestFrameFenceWaitError(t *testing.T) {
	queue := &laggingQueue{Queue: &noop.Queue{}}
	dev := &idleDevice{Device: &noop.Device{}, queue: queue, waitErr: hal.ErrDeviceLost}
	f := newFrameFence(dev, queue)

	idx, _ := queue.Submit(nil)
	f.signal(idx)
	if err := f.wait(); !errors.Is(err, hal.ErrDeviceLost) {
		t.Errorf("wait() error = %v, want ErrDeviceLost", err)
	}
}

func TestFrameEndPresentErrorRetiresFrame(t *testing.T) {
	ctx, dev := newLaggingContext(t)
	errLost := errors.New("surface lost")
	dev.queue.presentErr = errLost

	if err := ctx.FrameBegin(); err != nil {
		t.Fatalf("FrameBegin: %v", err)
	}
	if err := ctx.FrameEnd(); !errors.Is(err, errLost) {
		t.Fatalf("FrameEnd error = %v, want %v", err, errLost)
	}
	if ctx.SignaledValue() != 1 || ctx.CompletedValue() != 1 {
		t.Errorf("signaled %d completed %d, want 1 and 1", ctx.SignaledValue(), ctx.CompletedValue())
	}
	if ctx.FrameCount() != 0 {
		t.Errorf("FrameCount() = %d, want 0", ctx.FrameCount())
	}

	dev.queue.presentErr = nil
	if err := ctx.FrameBegin(); err != nil {
		t.Fatalf("FrameBegin after failed present: %v", err)
	}
	if dev.encoder.earlyReset != 0 {
		t.Errorf("encoder reset %d times before the GPU finished", dev.encoder.earlyReset)
	}
	want := []string{"begin", "end", "reset", "begin"}
	got := dev.encoder.events
	if len(got) != len(want) {
		t.Fatalf("encoder events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("encoder events = %v, want %v", got, want)
		}
	}
}

func TestFrameEndWaitErrorKeepsFramePending(t *testing.T) {
	ctx, dev := newLaggingContext(t)

	if err := ctx.FrameBegin(); err != nil {
		t.Fatalf("FrameBegin: %v", err)
	}
	dev.waitErr = hal.ErrDeviceLost
	if err := ctx.FrameEnd(); !errors.Is(err, hal.ErrDeviceLost) {
		t.Fatalf("FrameEnd error = %v, want ErrDeviceLost", err)
	}
	if err := ctx.FrameBegin(); !errors.Is(err, hal.ErrDeviceLost) {
		t.Fatalf("FrameBegin with frame in flight = %v, want ErrDeviceLost", err)
	}
	for _, ev := range dev.encoder.events {
		if ev == "reset" {
			t.Fatalf("encoder reset while the GPU had not finished: %v", dev.encoder.events)
		}
	}

	dev.waitErr = nil
	if err := ctx.FrameBegin(); err != nil {
		t.Fatalf("FrameBegin after recovery: %v", err)
	}
	if dev.encoder.earlyReset != 0 {
		t.Errorf("encoder reset %d times before the GPU finished", dev.encoder.earlyReset)
	}
	if n := len(dev.encoder.events); n < 2 || dev.encoder.events[n-2] != "reset" || dev.encoder.events[n-1] != "begin" {
		t.Errorf("encoder events = %v, want reset then begin at the end", dev.encoder.events)
	}
}
