//go:build cgo

package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// shiftKeyPressed accepts either key order: Shift then key, or key then Shift.
func shiftKeyPressed(key int32) bool {
	if shiftDown() && rl.IsKeyPressed(key) {
		return true
	}
	return rl.IsKeyDown(key) && (rl.IsKeyPressed(rl.KeyLeftShift) || rl.IsKeyPressed(rl.KeyRightShift))
}

func shiftDown() bool {
	return rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
}

// cycleActorHotkey returns -1 for Shift+Tab, +1 for Tab and 0 otherwise.
func cycleActorHotkey() int {
	switch {
	case shiftKeyPressed(rl.KeyTab):
		return -1
	case rl.IsKeyPressed(rl.KeyTab):
		return 1
	}
	return 0
}
