package device

// Window is the slice of a native window the device context needs. Window
// creation and message pumping live outside this package.
type Window interface {
	// Size returns the client area in pixels.
	Size() (width, height int)

	// Handles returns the native display and window handles used to create
	// the present surface. Headless backends accept zero handles.
	Handles() (display, window uintptr)
}

// FixedWindow is a Window with a constant size and no native handles.
// It is used for headless rendering and tests.
type FixedWindow struct {
	Width, Height int
}

// Size implements Window.
func (w FixedWindow) Size() (int, int) { return w.Width, w.Height }

// Handles implements Window.
func (FixedWindow) Handles() (uintptr, uintptr) { return 0, 0 }
