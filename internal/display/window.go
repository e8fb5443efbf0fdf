// Package display shows an engine in a GLFW window. Each frame computed on
// the CPU is uploaded as a float texture and drawn with OpenGL.
package display

import (
	"fmt"
	"runtime"

	"Caustics/internal/engine"
	"Caustics/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Options configure the window.
type Options struct {
	Title string
	X, Y  int
}

type input struct {
	engine     *engine.Engine
	view       View
	lastX      float64
	lastY      float64
	firstMouse bool
}

// Run opens the window and drives e until the window is closed or Esc is
// pressed. It must be called from the main goroutine.
func Run(e *engine.Engine, opts Options) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if opts.Title == "" {
		opts.Title = "Caustics"
	}
	width, height := e.Size()
	window, err := glfw.CreateWindow(width, height, opts.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()

	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	glfw.SwapInterval(1)
	if opts.X > 0 || opts.Y > 0 {
		window.SetPos(opts.X, opts.Y)
	}
	setDarkTitleBar(window)

	var presenter Presenter
	fbWidth, fbHeight := window.GetFramebufferSize()
	if err := presenter.Init(fbWidth, fbHeight); err != nil {
		return err
	}
	defer presenter.Cleanup()

	in := &input{engine: e, firstMouse: true}
	window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	window.SetKeyCallback(in.keyCallback)
	window.SetCursorPosCallback(in.mouseCallback)
	window.SetScrollCallback(in.scrollCallback)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		presenter.UpdateViewport(w, h)
	})

	logger.Log.Info("Window opened", zap.Int("width", width), zap.Int("height", height))

	for !window.ShouldClose() {
		// Check actual window size and update if it changed
		if w, h := window.GetSize(); w > 0 && h > 0 {
			e.Resize(w, h)
		}

		frame := e.Frame()
		heights := frame
		if in.view == ViewHeight {
			heights = engine.HeightTexture(e.HeightField())
		}
		src := source(in.view, e, frame, heights)
		presenter.Upload(src.texture)
		presenter.Present(src.channel, src.scale, src.offset)

		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

var keyBindings = map[glfw.Key]engine.Key{
	glfw.KeyM: engine.KeySound,
	glfw.KeyR: engine.KeyRain,
	glfw.KeyW: engine.KeyWind,
	glfw.KeyC: engine.KeyClear,
	glfw.KeyF: engine.KeyFocus,
	glfw.KeyP: engine.KeyMouse,
}

var viewBindings = map[glfw.Key]View{
	glfw.Key1: ViewFrame,
	glfw.Key2: ViewHeight,
	glfw.Key3: ViewEnvironment,
	glfw.Key4: ViewCaustics,
}

func (in *input) keyCallback(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
		return
	}
	if k, ok := keyBindings[key]; ok {
		in.engine.HandleKey(k)
		return
	}
	if v, ok := viewBindings[key]; ok {
		in.view = v
		logger.Log.Info("View changed", zap.Stringer("view", v))
	}
}

// Dragging with the left button orbits the camera; plain moves drop on the
// water when mouse reactivity is on.
func (in *input) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if w.GetAttrib(glfw.Focused) == glfw.True && w.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press {
		if in.firstMouse {
			in.lastX = xpos
			in.lastY = ypos
			in.firstMouse = false
			return
		}

		xoffset := xpos - in.lastX
		yoffset := in.lastY - ypos // Reversed since y-coordinates go from bottom to top
		in.lastX = xpos
		in.lastY = ypos

		in.engine.PointerDrag(float32(xoffset), float32(yoffset))
		return
	}
	in.firstMouse = true
	in.engine.PointerMove(float32(xpos), float32(ypos))
}

func (in *input) scrollCallback(_ *glfw.Window, _, yoff float64) {
	in.engine.Scroll(float32(yoff))
}
