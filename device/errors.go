package device

import "errors"

// Device context errors.
var (
	// ErrNoAdapter is returned when no usable hardware adapter is found.
	ErrNoAdapter = errors.New("device: no suitable adapter")

	// ErrNilBackend is returned when New is called without a HAL backend.
	ErrNilBackend = errors.New("device: backend is nil")

	// ErrNilWindow is returned when New is called without a window.
	ErrNilWindow = errors.New("device: window is nil")

	// ErrZeroArea is returned when the window has a zero width or height.
	ErrZeroArea = errors.New("device: window width and height must be positive")

	// ErrClosed is returned when operating on a closed context.
	ErrClosed = errors.New("device: context closed")

	// ErrFrameInProgress is returned by FrameBegin when the previous frame
	// was not ended.
	ErrFrameInProgress = errors.New("device: frame already in progress")

	// ErrNoFrame is returned by FrameEnd and pass operations outside of a frame.
	ErrNoFrame = errors.New("device: no frame in progress")
)

// Resource buffer errors.
var (
	// ErrZeroSize is returned when a buffer of zero bytes is requested.
	ErrZeroSize = errors.New("device: buffer size must be positive")

	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("device: buffer has been destroyed")

	// ErrAlreadyMapped is returned by Map when the buffer is already mapped.
	ErrAlreadyMapped = errors.New("device: buffer already mapped")

	// ErrNotMapped is returned by Unmap and Write when the buffer has no mapping.
	ErrNotMapped = errors.New("device: buffer not mapped")

	// ErrWriteOutOfRange is returned when a write exceeds the buffer size.
	ErrWriteOutOfRange = errors.New("device: write exceeds buffer size")
)
