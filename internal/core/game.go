package core

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/SteffenBlake/atomic-go/internal/core/ebd"
	"github.com/SteffenBlake/atomic-go/internal/core/transform"
)

const (
	screenWidth  = 1280
	screenHeight = 720
)

// Game drives a demo scene through the world once per frame: mutate
// transform inputs, recalculate, then render from the world-transform
// columns. It is the living example of the collaborator contract the
// runtime exposes.
type Game struct {
	world *World

	hub       ebd.EntityIndex
	satellite ebd.EntityIndex
	moon      ebd.EntityIndex

	angle float64
}

// NewGame builds the demo scene: a spinning hub at screen center, a
// satellite parented to it, and a moon parented to the satellite.
func NewGame(world *World) *Game {
	g := &Game{world: world}

	hub, _ := world.Activate()
	g.hub = hub.Index
	world.SetTransform(g.hub, func(t transform.Transform) {
		t.SetPosition(transform.Vec3{X: screenWidth / 2, Y: screenHeight / 2})
	})

	satellite, _ := world.Activate()
	g.satellite = satellite.Index
	world.SetParent(g.satellite, g.hub)
	world.SetTransform(g.satellite, func(t transform.Transform) {
		t.SetPosition(transform.Vec3{X: 200})
	})

	moon, _ := world.Activate()
	g.moon = moon.Index
	world.SetParent(g.moon, g.satellite)
	world.SetTransform(g.moon, func(t transform.Transform) {
		t.SetPosition(transform.Vec3{X: 60})
	})

	return g
}

// Update advances the orbit and recalculates world transforms.
func (g *Game) Update() error {
	g.angle += math.Pi / 180

	g.world.SetTransform(g.hub, func(t transform.Transform) {
		t.SetRotation(zRotation(g.angle))
	})
	g.world.SetTransform(g.satellite, func(t transform.Transform) {
		t.SetRotation(zRotation(3 * g.angle))
	})

	g.world.Recalculate()
	return nil
}

// Draw renders a quad per entity at its world translation row.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 20, G: 20, B: 36, A: 255})

	g.drawEntity(screen, g.hub, 24, color.RGBA{R: 240, G: 200, B: 80, A: 255})
	g.drawEntity(screen, g.satellite, 14, color.RGBA{R: 120, G: 200, B: 240, A: 255})
	g.drawEntity(screen, g.moon, 8, color.RGBA{R: 220, G: 220, B: 220, A: 255})

	ebitenutil.DebugPrint(screen, "atomic transform pipeline demo")
}

func (g *Game) drawEntity(screen *ebiten.Image, e ebd.EntityIndex, size float32, clr color.Color) {
	if !g.world.Entities.IsEnabled(e) {
		return
	}
	m := g.world.WorldTransform(e)
	x, y := m[12], m[13]
	vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, clr, true)
}

// Layout reports the fixed logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

// Run opens the window and hands the loop to ebiten.
func (g *Game) Run() error {
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("atomic demo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return ebiten.RunGame(g)
}

// zRotation builds the unit quaternion for a rotation about Z.
func zRotation(radians float64) transform.Quat {
	half := radians / 2
	return transform.Quat{
		Z: float32(math.Sin(half)),
		W: float32(math.Cos(half)),
	}
}
