//go:build windows

package display

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	DWMWA_USE_IMMERSIVE_DARK_MODE = 20
	DWMWA_BORDER_COLOR            = 34
	DWMWA_CAPTION_COLOR           = 35
)

func setDarkTitleBar(window *glfw.Window) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return
	}
	handle := unsafe.Pointer(hwnd)
	setAttribute(handle, DWMWA_USE_IMMERSIVE_DARK_MODE, 1)
	setAttribute(handle, DWMWA_BORDER_COLOR, 0x00000000)
	setAttribute(handle, DWMWA_CAPTION_COLOR, 0x00202020)
}

func setAttribute(hwnd unsafe.Pointer, attribute uintptr, value uint32) {
	procDwmSetWindowAttribute.Call(
		uintptr(hwnd),
		attribute,
		uintptr(unsafe.Pointer(&value)),
		unsafe.Sizeof(value),
	)
}
