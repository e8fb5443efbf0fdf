//go:build !windows

package display

import "github.com/go-gl/glfw/v3.3/glfw"

func setDarkTitleBar(*glfw.Window) {}
