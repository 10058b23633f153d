package device

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// frameFence tracks GPU completion of submitted frames.
//
// signaled counts frames handed to the GPU and grows by one per signal.
// target is the queue submission index of the most recent frame; the frame
// is complete once the queue reports that index as completed.
type frameFence struct {
	device hal.Device
	queue  hal.Queue

	signaled uint64
	target   uint64
}

func newFrameFence(device hal.Device, queue hal.Queue) *frameFence {
	return &frameFence{device: device, queue: queue}
}

// signal records submission as the newest frame and returns the new
// signaled value.
func (f *frameFence) signal(submission uint64) uint64 {
	f.signaled++
	f.target = submission
	return f.signaled
}

// completedValue returns the highest frame value the GPU has finished.
func (f *frameFence) completedValue() uint64 {
	if f.signaled == 0 || f.queue.PollCompleted() >= f.target {
		return f.signaled
	}
	return f.signaled - 1
}

// wait blocks until completedValue equals signaled. There is no timeout.
func (f *frameFence) wait() error {
	for f.completedValue() != f.signaled {
		if err := f.device.WaitIdle(); err != nil {
			return fmt.Errorf("wait for frame %d: %w", f.signaled, err)
		}
	}
	return nil
}
