package physics

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/texture"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testTexture(id string) *texture.Texture {
	return texture.Solid(id, 4, 3, color.RGBA{200, 100, 50, 255})
}

func newRunningWorld(t *testing.T, w, h float64) *World {
	t.Helper()
	world := NewWorld(constant.ScaleDefault, testLog())
	world.Init(w, h)
	require.Equal(t, Running, world.State())
	return world
}

func runFor(w *World, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += constant.FrameUpdateInterval {
		w.Advance(constant.FrameUpdateInterval)
	}
}

func TestWorldStartsUninitialized(t *testing.T) {
	world := NewWorld(constant.ScaleDefault, testLog())
	assert.Equal(t, Uninitialized, world.State())

	b := NewFactory(1).Spawn("a", testTexture("a"), world.Scale(), 600)
	assert.ErrorIs(t, world.Insert(b), ErrUninitialized)

	_, ok := world.Boundary(Floor)
	assert.False(t, ok)

	world.Advance(time.Second)
	assert.Zero(t, world.Steps())
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	f := NewFactory(7)

	require.NoError(t, world.Insert(f.Spawn("p3", testTexture("p3"), world.Scale(), 600)))
	err := world.Insert(f.Spawn("p3", testTexture("p3"), world.Scale(), 600))
	assert.ErrorIs(t, err, ErrDuplicateBody)
	assert.Equal(t, 1, world.Len())
	assert.True(t, world.Has("p3"))
}

func TestBodiesInInsertionOrder(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	f := NewFactory(3)
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		require.NoError(t, world.Insert(f.Spawn(id, testTexture(id), world.Scale(), 600)))
	}

	var got []string
	for _, b := range world.Bodies() {
		got = append(got, b.ID)
	}
	assert.Equal(t, ids, got)
}

func TestBoundaryAnchorsFollowResize(t *testing.T) {
	world := newRunningWorld(t, 600, 400)

	floor, ok := world.Boundary(Floor)
	require.True(t, ok)
	assert.Equal(t, 300.0, floor.Anchor.X)
	assert.Equal(t, 400.0, floor.Anchor.Y)

	world.Resize(900, 300)

	floor, _ = world.Boundary(Floor)
	right, _ := world.Boundary(RightWall)
	left, _ := world.Boundary(LeftWall)
	assert.Equal(t, 450.0, floor.Anchor.X)
	assert.Equal(t, 300.0, floor.Anchor.Y)
	assert.Equal(t, 900.0, right.Anchor.X)
	assert.Equal(t, 0.0, left.Anchor.X)
}

func TestResizeLeavesBodiesInPlace(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	b := NewFactory(5).Spawn("a", testTexture("a"), world.Scale(), 600)
	require.NoError(t, world.Insert(b))
	before := b.Position()

	world.Resize(300, 200)
	assert.Equal(t, before, b.Position())
}

func TestBodiesFallAndSettleInside(t *testing.T) {
	const W, H = 720.0, 480.0
	world := newRunningWorld(t, W, H)
	f := NewFactory(11)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("p%d", i)
		require.NoError(t, world.Insert(f.Spawn(id, testTexture(id), world.Scale(), W)))
	}

	runFor(world, 8*time.Second)

	for _, b := range world.Bodies() {
		p := b.Position()
		assert.Greater(t, p.X, 0.0, b.ID)
		assert.Less(t, p.X, W, b.ID)
		assert.Less(t, p.Y, H, b.ID)
		assert.Greater(t, p.Y, 0.0, "%s should have fallen into view", b.ID)
		assert.Less(t, b.Velocity().Length(), 20.0, "%s should be nearly at rest", b.ID)
	}
}

func TestStrayBodyPushedBackAfterShrink(t *testing.T) {
	world := newRunningWorld(t, 800, 400)
	b := NewFactory(2).Spawn("a", testTexture("a"), world.Scale(), 800)
	require.NoError(t, world.Insert(b))
	b.SetAngle(0)
	b.SetAngularVelocity(0)
	b.SetPosition(cp.Vector{X: 560, Y: 300})

	world.Resize(600, 400)
	runFor(world, 3*time.Second)

	w, _ := b.Size()
	assert.LessOrEqual(t, b.Position().X, 600-w/2+5)
}

func TestSetScaleRescalesRenderAndCollisionTogether(t *testing.T) {
	world := newRunningWorld(t, 900, 600)
	f := NewFactory(9)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("p%d", i)
		require.NoError(t, world.Insert(f.Spawn(id, testTexture(id), world.Scale(), 900)))
	}
	runFor(world, 500*time.Millisecond)

	type widths struct{ render, collision float64 }
	measure := func(b *Body) widths {
		b.SetAngle(0)
		bb := b.CollisionBounds()
		rw, _ := b.RenderSize()
		return widths{render: rw, collision: bb.R - bb.L}
	}

	before := make(map[string]widths)
	for _, b := range world.Bodies() {
		before[b.ID] = measure(b)
		assert.InDelta(t, before[b.ID].render, before[b.ID].collision, 1e-6)
	}

	applied := world.SetScale(150)
	assert.Equal(t, 150.0, applied)

	for _, b := range world.Bodies() {
		after := measure(b)
		assert.InDelta(t, 1.5, after.render/before[b.ID].render, 1e-9, b.ID)
		assert.InDelta(t, 1.5, after.collision/before[b.ID].collision, 1e-6, b.ID)
		assert.InDelta(t, after.render, after.collision, 1e-6, b.ID)
	}

	spawned := f.Spawn("late", testTexture("late"), world.Scale(), 900)
	w, h := spawned.Size()
	assert.GreaterOrEqual(t, w, constant.BodyBaseWidthMin*1.5)
	assert.LessOrEqual(t, w, constant.BodyBaseWidthMax*1.5)
	assert.InDelta(t, w*constant.BodyAspect, h, 1e-9)
	assert.Equal(t, 150.0, spawned.SpawnScale)
}

func TestSetScaleClamps(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	b := NewFactory(4).Spawn("a", testTexture("a"), world.Scale(), 600)
	require.NoError(t, world.Insert(b))

	assert.Equal(t, constant.ScaleMax, world.SetScale(400))
	assert.InDelta(t, 1.5, b.VisualScale(), 1e-9)

	assert.Equal(t, constant.ScaleMin, world.SetScale(-10))
	assert.InDelta(t, 0.5, b.VisualScale(), 1e-9)

	assert.Equal(t, constant.ScaleMin, world.SetScale(constant.ScaleMin))
	assert.InDelta(t, 0.5, b.VisualScale(), 1e-9)
}

func TestRescaleKeepsDensity(t *testing.T) {
	b := NewFactory(8).Spawn("a", testTexture("a"), 100, 600)
	w, h := b.Size()
	assert.InDelta(t, constant.BodyDensity*w*h, b.Mass(), 1e-9)

	b.Rescale(2)
	w2, h2 := b.Size()
	assert.InDelta(t, 2*w, w2, 1e-9)
	assert.InDelta(t, 2*h, h2, 1e-9)
	assert.InDelta(t, constant.BodyDensity*w2*h2, b.Mass(), 1e-9)
}

func TestFactorySpawnBounds(t *testing.T) {
	f := NewFactory(42)
	const viewport = 500.0
	for i := 0; i < 200; i++ {
		b := f.Spawn("x", testTexture("x"), 100, viewport)
		w, h := b.Size()
		p := b.Position()

		assert.GreaterOrEqual(t, w, constant.BodyBaseWidthMin)
		assert.LessOrEqual(t, w, constant.BodyBaseWidthMax)
		assert.InDelta(t, w*0.75, h, 1e-9)
		assert.GreaterOrEqual(t, p.X, w/2)
		assert.LessOrEqual(t, p.X, viewport-w/2)
		assert.Less(t, p.Y+h/2, 0.0, "spawn must be above the viewport")
		assert.LessOrEqual(t, math.Abs(b.Angle()), constant.SpawnTiltMax)
		assert.LessOrEqual(t, math.Abs(b.AngularVelocity()), constant.SpawnSpinMax)
	}
}

func TestFactorySpawnNarrowViewportCenters(t *testing.T) {
	b := NewFactory(1).Spawn("x", testTexture("x"), 150, 60)
	assert.Equal(t, 30.0, b.Position().X)
}

func TestFactoryDeterministicSeed(t *testing.T) {
	a := NewFactory(77).Spawn("x", testTexture("x"), 100, 600)
	b := NewFactory(77).Spawn("x", testTexture("x"), 100, 600)
	assert.Equal(t, a.Position(), b.Position())
	wa, _ := a.Size()
	wb, _ := b.Size()
	assert.Equal(t, wa, wb)
}

func settledBody(t *testing.T, world *World) *Body {
	t.Helper()
	b := NewFactory(21).Spawn("held", testTexture("held"), world.Scale(), 600)
	require.NoError(t, world.Insert(b))
	b.SetAngle(0)
	b.SetAngularVelocity(0)
	b.SetPosition(cp.Vector{X: 300, Y: 300})
	runFor(world, 2*time.Second)
	return b
}

func TestDragMovesHeldBody(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	b := settledBody(t, world)
	start := b.Position()

	held, ok := world.PointerDown(start.X, start.Y)
	require.True(t, ok)
	assert.Same(t, b, held)
	got, ok := world.Held()
	require.True(t, ok)
	assert.Same(t, b, got)

	world.PointerMove(start.X-150, start.Y-200)
	runFor(world, time.Second)

	moved := b.Position()
	assert.Less(t, moved.X, start.X-50)
	assert.Less(t, moved.Y, start.Y-50)

	assert.True(t, world.PointerUp())
	_, ok = world.Held()
	assert.False(t, ok)
}

func TestDragBlockedByFloor(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	b := settledBody(t, world)
	start := b.Position()

	_, ok := world.PointerDown(start.X, start.Y)
	require.True(t, ok)
	world.PointerMove(start.X, start.Y+500)
	runFor(world, time.Second)

	_, h := b.Size()
	assert.Less(t, b.Position().Y, 400-h/2+10, "floor must hold the body against the drag")
	world.PointerUp()
}

func TestPointerUpWithoutHoldIsNoOp(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	assert.False(t, world.PointerUp())
}

func TestPointerDownOnEmptySpace(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	settledBody(t, world)

	_, ok := world.PointerDown(20, 20)
	assert.False(t, ok)
	_, held := world.Held()
	assert.False(t, held)
}

func TestPointerDownIgnoresBoundaries(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	_, ok := world.PointerDown(300, 401)
	assert.False(t, ok)
}

func TestRescaleWhileHeldRetunesDrag(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	b := settledBody(t, world)
	p := b.Position()
	_, ok := world.PointerDown(p.X, p.Y)
	require.True(t, ok)

	world.SetScale(120)
	assert.InDelta(t, constant.DragMaxForceFactor*b.Mass(), world.pointer.drag.MaxForce(), 1e-6)
}

func TestAdvanceClampsStall(t *testing.T) {
	world := newRunningWorld(t, 600, 400)
	world.Advance(5 * time.Second)
	maxSteps := uint64(constant.MaxFrameDelta / constant.PhysicsSubstep)
	assert.Equal(t, maxSteps, world.Steps())
}
