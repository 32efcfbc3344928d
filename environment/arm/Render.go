package arm

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"

	env "github.com/armsim/reacharm/environment"
)

const (
	viewportW int = 600
	viewportH int = 600
)

// worldToPixel maps a workspace coordinate to canvas pixels. The
// workspace square [-reach, reach]² fills the canvas with a small
// margin, with y up.
func (a *Arm) worldToPixel(x, y float64) (float64, float64) {
	reach := a.kin.MaxReach() * 1.2
	scale := float64(viewportW) / (2 * reach)

	pixelX := float64(viewportW)/2 + scale*x
	pixelY := float64(viewportH)/2 - scale*y
	return pixelX, pixelY
}

// Render draws the arm's links, joints, and target to a PNG file at
// path
func (a *Arm) Render(path string) error {
	if a.closed {
		return fmt.Errorf("render: %w", env.ErrInvalidState)
	}

	dc := gg.NewContext(viewportW, viewportH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	reach := a.kin.MaxReach() * 1.2
	scale := float64(viewportW) / (2 * reach)

	// Reachable workspace annulus
	cx, cy := a.worldToPixel(0, 0)
	dc.SetRGBA(0.9, 0.9, 0.9, 1)
	dc.DrawCircle(cx, cy, scale*a.kin.MaxReach())
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawCircle(cx, cy, scale*a.kin.MinReach())
	dc.Fill()

	// Target
	target := a.session.TargetPosition()
	tx, ty := a.worldToPixel(target[0], target[1])
	dc.SetRGB(0.8, 0.1, 0.1)
	dc.DrawCircle(tx, ty, math.Max(scale*a.session.Target().Radius, 3))
	dc.Fill()

	// Links drawn as thick segments joint-to-joint
	pos, _ := a.session.JointState()
	links := a.session.Robot().Links

	jointX, jointY := 0.0, 0.0
	absAngle := 0.0
	for i, link := range links {
		absAngle += pos[i]
		endX := jointX + link.Length*math.Cos(absAngle)
		endY := jointY + link.Length*math.Sin(absAngle)

		x0, y0 := a.worldToPixel(jointX, jointY)
		x1, y1 := a.worldToPixel(endX, endY)

		dc.SetRGB(0.2, 0.2, 0.6)
		dc.SetLineWidth(math.Max(scale*link.Width, 2))
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()

		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawCircle(x0, y0, math.Max(scale*link.Width*0.75, 3))
		dc.Fill()

		jointX, jointY = endX, endY
	}

	// Effector
	ex, ey := a.worldToPixel(jointX, jointY)
	dc.SetRGB(0.1, 0.6, 0.1)
	dc.DrawCircle(ex, ey, 4)
	dc.Fill()

	return dc.SavePNG(path)
}
