// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom spline through four consecutive
// samples y0..y3 at x, the fractional position between y1 and y2 (0 <= x <= 1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	c0 := y1
	c1 := (y2 - y0) * 0.5
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := (y3-y0)*0.5 + (y1-y2)*1.5

	return ((c3*x+c2)*x+c1)*x + c0
}
