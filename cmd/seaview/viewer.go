package main

import (
	"fmt"
	"image/color"

	"CartoonSea/internal/debugview"
	"CartoonSea/internal/logger"
	"CartoonSea/internal/scene"
	"CartoonSea/internal/sea"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

const (
	markerRadius = 3
	resizeStep   = 1.05
)

// viewer is the rendering collaborator: it reads the published snapshot and
// the wave buffer and never touches simulation state beyond the controls.
type viewer struct {
	session *sea.Session
	store   *sea.SnapshotStore
	objects *scene.Registry

	field  *ebiten.Image
	texels []float32
	pixels []byte
	w, h   int
}

func newViewer(s *sea.Session, store *sea.SnapshotStore, objects *scene.Registry) *viewer {
	return &viewer{session: s, store: store, objects: objects}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if v.session.Paused() {
			v.session.Resume()
		} else {
			v.session.Pause()
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.resize(resizeStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.resize(1 / resizeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if err := v.session.Tick(1 / float64(ebiten.TPS())); err != nil {
		return err
	}
	return v.refresh()
}

func (v *viewer) resize(factor float32) {
	if err := v.session.SetExtent(v.session.Extent().Mul(factor)); err != nil {
		logger.Log.Warn("Resize rejected", zap.Error(err))
	}
}

// refresh pulls the wave buffer and reshades the field texture.
func (v *viewer) refresh() error {
	snap := v.store.Latest()
	if snap == nil {
		return nil
	}
	w, h := snap.WaveData.Width, snap.WaveData.Height
	if w == 0 || h == 0 {
		return nil
	}
	if w != v.w || h != v.h {
		if v.field != nil {
			v.field.Deallocate()
		}
		v.field = ebiten.NewImage(w, h)
		v.texels = make([]float32, w*h*sea.TexelStride)
		v.pixels = make([]byte, w*h*4)
		v.w, v.h = w, h
	}
	texels, err := v.session.WaveData(v.texels)
	if err != nil {
		return fmt.Errorf("reading wave buffer: %w", err)
	}
	if err := debugview.Shade(v.pixels, texels, w, h, snap.WaveHeight, snap.DeepColor, snap.ShallowColor); err != nil {
		return err
	}
	v.field.WritePixels(v.pixels)
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.field != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(screenSize)/float64(v.w), float64(screenSize)/float64(v.h))
		screen.DrawImage(v.field, op)
	}

	m := v.session.Mapping()
	for _, t := range v.objects.Transforms() {
		u, w := m.Normalize(t.Position)
		if u < 0 || u >= 1 || w < 0 || w >= 1 {
			continue
		}
		v.drawMarker(screen, int(u*screenSize), int(w*screenSize), markerColor(t))
	}

	state := "running"
	if v.session.Paused() {
		state = "paused"
	}
	ext := v.session.Extent()
	st := v.session.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  t=%.2fs  size %.1fx%.1f\nFPS %.0f  placed %d  off-patch %d\nspace: pause  up/down: resize",
		state, v.session.Clock().Elapsed(), ext.X(), ext.Y(), ebiten.ActualFPS(), st.Placed, st.OutOfRange))
}

// markerColor shades an object by how far it is tilted off vertical.
func markerColor(t *scene.Transform) color.RGBA {
	lean := 1 - mgl32.Clamp(t.Up().Y(), 0, 1)
	r := uint8(mgl32.Clamp(0.6+lean*8, 0, 1) * 255)
	return color.RGBA{r, 60, 20, 255}
}

func (v *viewer) drawMarker(screen *ebiten.Image, cx, cy int, c color.RGBA) {
	for y := -markerRadius; y <= markerRadius; y++ {
		for x := -markerRadius; x <= markerRadius; x++ {
			px, py := cx+x, cy+y
			if px >= 0 && px < screenSize && py >= 0 && py < screenSize {
				screen.Set(px, py, c)
			}
		}
	}
}

func (v *viewer) Layout(_, _ int) (int, int) { return screenSize, screenSize }

func gridOfCrates(n int, spacing float32) *scene.Registry {
	reg := scene.NewRegistry()
	half := float32(n-1) * spacing / 2
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			t := scene.NewTransform(fmt.Sprintf("Crate%d_%d", x, z))
			t.SetPosition(mgl32.Vec3{float32(x)*spacing - half, 0, float32(z)*spacing - half})
			reg.Add(t)
		}
	}
	return reg
}
