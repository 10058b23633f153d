package transform

import "errors"

var (
	// ErrParentOrder is returned when a parent was allocated after its child.
	ErrParentOrder = errors.New("transform: parent must be allocated before child")

	// ErrForeignParent is returned when parent and child belong to different arenas.
	ErrForeignParent = errors.New("transform: parent belongs to another arena")

	// ErrNoBuffer is returned by SetGraphicsCommand before CreateBuffer.
	ErrNoBuffer = errors.New("transform: constant buffer not created")

	// ErrBufferExists is returned by CreateBuffer when called twice.
	ErrBufferExists = errors.New("transform: constant buffer already created")

	// ErrDegenerateZoom is returned when a Camera2D zoom component is zero.
	ErrDegenerateZoom = errors.New("transform: zoom must be non-zero")

	// ErrDegenerateView is returned when a camera's eye equals its target or
	// its up vector is parallel to the view direction.
	ErrDegenerateView = errors.New("transform: degenerate view")

	// ErrDegenerateProjection is returned for an empty projection volume.
	ErrDegenerateProjection = errors.New("transform: degenerate projection")
)
