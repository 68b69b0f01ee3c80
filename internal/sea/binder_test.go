package sea

import (
	"errors"
	"testing"

	"CartoonSea/internal/scene"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// recordingSampler returns a height derived from x and records query order.
type recordingSampler struct {
	queries []mgl32.Vec3
	limit   float32
	fail    string
}

func (s *recordingSampler) Prepare(Frame) error { return nil }
func (s *recordingSampler) Close() error        { return nil }

func (s *recordingSampler) Sample(pos mgl32.Vec3) (WaveSample, error) {
	s.queries = append(s.queries, pos)
	if pos.X() > s.limit {
		return WaveSample{}, ErrSampleOutOfRange
	}
	if pos.Z() < -100 {
		return WaveSample{}, errors.New(s.fail)
	}
	return WaveSample{Height: pos.X() * 0.1, Normal: mgl32.Vec3{0, 1, 0}}, nil
}

func TestBinderPlacesObjectsInOrder(t *testing.T) {
	reg := scene.NewRegistry()
	names := []string{"Crate", "Barrel", "Buoy"}
	for i, n := range names {
		tr := scene.NewTransform(n)
		tr.SetPosition(mgl32.Vec3{float32(i + 1), 9, 2})
		reg.Add(tr)
	}
	s := &recordingSampler{limit: 100}
	stats := NewBinder(reg, s, nil).Update()

	if stats.Placed != 3 || stats.OutOfRange != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	for i, q := range s.queries {
		if q.X() != float32(i+1) {
			t.Errorf("query %d was for x=%v, want insertion order", i, q.X())
		}
	}
	for i, tr := range reg.Transforms() {
		want := float32(i+1) * 0.1
		if tr.Position.Y() != want {
			t.Errorf("%s: Expected y=%v, got %v", tr.Name, want, tr.Position.Y())
		}
		if tr.Position.X() != float32(i+1) || tr.Position.Z() != 2 {
			t.Errorf("%s: planar position changed to %v", tr.Name, tr.Position)
		}
	}
}

func TestBinderLeavesOutOfRangeObjectsAlone(t *testing.T) {
	reg := scene.NewRegistry()
	far := scene.NewTransform("Far")
	far.SetPosition(mgl32.Vec3{50, 3, 0})
	far.SetRotation(mgl32.QuatRotate(0.5, mgl32.Vec3{1, 0, 0}))
	before := *far
	near := scene.NewTransform("Near")
	near.SetPosition(mgl32.Vec3{1, 3, 0})
	reg.Add(far)
	reg.Add(near)

	stats := NewBinder(reg, &recordingSampler{limit: 10}, nil).Update()
	if stats.Placed != 1 || stats.OutOfRange != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if far.Position != before.Position || far.Rotation != before.Rotation {
		t.Error("out of range object was modified")
	}
	if near.Position.Y() != 0.1 {
		t.Errorf("Expected near object placed, got y=%v", near.Position.Y())
	}
}

func TestBinderCountsSamplerFailures(t *testing.T) {
	reg := scene.NewRegistry()
	bad := scene.NewTransform("Bad")
	bad.SetPosition(mgl32.Vec3{0, 0, -500})
	reg.Add(bad)
	stats := NewBinder(reg, &recordingSampler{limit: 10, fail: "boom"}, nil).Update()
	if stats.Failed != 1 {
		t.Errorf("Expected one failure, got %+v", stats)
	}
}

func TestBinderEmptyAndNil(t *testing.T) {
	s := &recordingSampler{limit: 10}
	if stats := NewBinder(scene.NewRegistry(), s, nil).Update(); stats != (BindStats{}) {
		t.Errorf("empty registry: got %+v", stats)
	}
	if stats := NewBinder(nil, s, nil).Update(); stats != (BindStats{}) {
		t.Errorf("nil registry: got %+v", stats)
	}
	if len(s.queries) != 0 {
		t.Error("sampler queried with no objects")
	}
}

func TestBinderDuplicatesAreBothApplied(t *testing.T) {
	reg := scene.NewRegistry()
	tr := scene.NewTransform("Twice")
	tr.SetPosition(mgl32.Vec3{2, 0, 0})
	reg.Add(tr)
	reg.Add(tr)
	s := &recordingSampler{limit: 10}
	stats := NewBinder(reg, s, nil).Update()
	if stats.Placed != 2 || len(s.queries) != 2 {
		t.Errorf("Expected both entries processed, got %+v with %d queries", stats, len(s.queries))
	}
	if tr.Position.Y() != 0.2 {
		t.Errorf("Expected y=0.2, got %v", tr.Position.Y())
	}
}

func TestBinderRotationFollowsNormal(t *testing.T) {
	f := newSamplerFixture(t, 32, 2.5)
	an := NewAnalyticSampler()
	if err := an.Prepare(f.frame); err != nil {
		t.Fatal(err)
	}
	reg := scene.NewRegistry()
	tr := scene.NewTransform("Boat")
	tr.SetPosition(mgl32.Vec3{2.3, 0, -1.1})
	reg.Add(tr)
	NewBinder(reg, an, nil).Update()

	want, _ := an.Sample(tr.Position)
	up := tr.Up()
	if !approx(float64(up.Dot(want.Normal)), 1, 1e-5) {
		t.Errorf("object up %v does not match surface normal %v", up, want.Normal)
	}
}

func TestBinderParallelMatchesSequential(t *testing.T) {
	f := newSamplerFixture(t, 64, 3)
	an := NewAnalyticSampler()
	if err := an.Prepare(f.frame); err != nil {
		t.Fatal(err)
	}

	build := func() *scene.Registry {
		reg := scene.NewRegistry()
		for i := 0; i < 200; i++ {
			tr := scene.NewTransform("Float")
			tr.SetPosition(mgl32.Vec3{-3.9 + float32(i%20)*0.49, 0, -6.9 + float32(i/20)*0.97})
			reg.Add(tr)
		}
		return reg
	}
	seq, par := build(), build()

	NewBinder(seq, an, nil).Update()

	pool := pond.NewPool(4)
	defer pool.StopAndWait()
	b := NewBinder(par, an, pool)
	b.SetParallelThreshold(1)
	stats := b.Update()
	if stats.Placed != 200 {
		t.Fatalf("Expected 200 placed, got %+v", stats)
	}

	for i := range seq.Transforms() {
		a, p := seq.Transforms()[i], par.Transforms()[i]
		if a.Position != p.Position || a.Rotation != p.Rotation {
			t.Fatalf("object %d differs: %v vs %v", i, a.Position, p.Position)
		}
	}
}
