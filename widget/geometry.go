package widget

import "github.com/leoassist/leo/types"

// CenterPreserving returns the top-left corner that keeps the visual center
// of a window at pos fixed when it changes from one preset to another.
// Odd size deltas truncate toward zero, so the center may drift by half a
// pixel.
func CenterPreserving(pos types.Position, from, to Preset) types.Position {
	fromSize, toSize := from.Size(), to.Size()
	return types.Position{
		X: pos.X - (toSize.Width-fromSize.Width)/2,
		Y: pos.Y - (toSize.Height-fromSize.Height)/2,
	}
}

// Center returns the visual center of a window at pos sized for preset.
func Center(pos types.Position, preset Preset) (float64, float64) {
	return types.Rect{Position: pos, Size: preset.Size()}.Center()
}
