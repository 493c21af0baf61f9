package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and GL calls must stay on the main OS thread.
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:      1920,
		Height:     1080,
		Title:      "TrainSimulator",
		Resizable:  true,
		VSync:      true,
		Fullscreen: false,
	}
}

// NewWindow creates a window with an OpenGL 4.1 core context and makes the
// context current on the calling thread.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}
	window.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})

	return window, nil
}

func (w *Window) MakeContextCurrent() {
	w.Handle.MakeContextCurrent()
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// Aspect is the framebuffer width over height, 1 when minimised.
func (w *Window) Aspect() float32 {
	fw, fh := w.GetFramebufferSize()
	if fw <= 0 || fh <= 0 {
		return 1
	}
	return float32(fw) / float32(fh)
}

// Time is seconds since GLFW was initialised.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// ScrollCallback is the type for scroll event handlers
type ScrollCallback func(xoff, yoff float64)

func (w *Window) SetScrollCallback(cb ScrollCallback) {
	w.Handle.SetScrollCallback(func(win *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	MouseButtonLeft  = int(glfw.MouseButtonLeft)
	MouseButtonRight = int(glfw.MouseButtonRight)
)

const (
	KeySpace        = int(glfw.KeySpace)
	KeyMinus        = int(glfw.KeyMinus)
	KeyEqual        = int(glfw.KeyEqual)
	Key1            = int(glfw.Key1)
	Key2            = int(glfw.Key2)
	Key3            = int(glfw.Key3)
	Key4            = int(glfw.Key4)
	Key5            = int(glfw.Key5)
	KeyA            = int(glfw.KeyA)
	KeyD            = int(glfw.KeyD)
	KeyH            = int(glfw.KeyH)
	KeyP            = int(glfw.KeyP)
	KeyR            = int(glfw.KeyR)
	KeyS            = int(glfw.KeyS)
	KeyW            = int(glfw.KeyW)
	KeyEscape       = int(glfw.KeyEscape)
	KeyEnter        = int(glfw.KeyEnter)
	KeyBackspace    = int(glfw.KeyBackspace)
	KeyF1           = int(glfw.KeyF1)
	KeyKPAdd        = int(glfw.KeyKPAdd)
	KeyKPSubtract   = int(glfw.KeyKPSubtract)
	KeyKPEnter      = int(glfw.KeyKPEnter)
	KeyLeftShift    = int(glfw.KeyLeftShift)
	KeyLeftControl  = int(glfw.KeyLeftControl)
	KeyRightShift   = int(glfw.KeyRightShift)
	KeyRightControl = int(glfw.KeyRightControl)
)
