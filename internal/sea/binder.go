package sea

import (
	"errors"

	"CartoonSea/internal/logger"
	"CartoonSea/internal/scene"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ObjectSource supplies the ordered transforms to float.
type ObjectSource interface {
	Transforms() []*scene.Transform
}

// BindStats summarizes one binder pass.
type BindStats struct {
	Placed     int
	OutOfRange int
	Failed     int
}

type bindResult struct {
	sample WaveSample
	err    error
}

// Binder places every registered object on the surface once per tick.
type Binder struct {
	objects ObjectSource
	sampler Sampler

	// pool, when set, samples in parallel for samplers that allow it.
	pool              pond.Pool
	parallelThreshold int

	results []bindResult
}

// NewBinder binds objects to sampler. pool may be nil.
func NewBinder(objects ObjectSource, sampler Sampler, pool pond.Pool) *Binder {
	return &Binder{
		objects:           objects,
		sampler:           sampler,
		pool:              pool,
		parallelThreshold: 64,
	}
}

// SetParallelThreshold sets the object count at which sampling fans out.
func (b *Binder) SetParallelThreshold(n int) {
	b.parallelThreshold = n
}

// Update samples every object, then applies the results in registry order.
// Sampling all objects before writing any keeps duplicate entries
// deterministic: the later entry wins.
func (b *Binder) Update() BindStats {
	var stats BindStats
	if b.objects == nil {
		return stats
	}
	objs := b.objects.Transforms()
	if len(objs) == 0 {
		return stats
	}

	if cap(b.results) < len(objs) {
		b.results = make([]bindResult, len(objs))
	}
	results := b.results[:len(objs)]

	if b.parallel(len(objs)) {
		group := b.pool.NewGroup()
		for i := range objs {
			i := i
			group.Submit(func() {
				s, err := b.sampler.Sample(objs[i].WorldPosition())
				results[i] = bindResult{sample: s, err: err}
			})
		}
		if err := group.Wait(); err != nil {
			logger.Log.Error("Parallel sampling failed", zap.Error(err))
		}
	} else {
		for i, obj := range objs {
			s, err := b.sampler.Sample(obj.WorldPosition())
			results[i] = bindResult{sample: s, err: err}
		}
	}

	up := mgl32.Vec3{0, 1, 0}
	for i, obj := range objs {
		r := results[i]
		switch {
		case r.err == nil:
			pos := obj.Position
			obj.SetPosition(mgl32.Vec3{pos.X(), r.sample.Height, pos.Z()})
			obj.SetRotation(mgl32.QuatBetweenVectors(up, r.sample.Normal))
			stats.Placed++
		case errors.Is(r.err, ErrSampleOutOfRange):
			stats.OutOfRange++
			logger.Log.Debug("Object out of wave data bounds",
				zap.String("object", obj.Name),
				zap.Float32("x", obj.Position.X()),
				zap.Float32("z", obj.Position.Z()))
		default:
			stats.Failed++
			logger.Log.Warn("Sampling failed", zap.String("object", obj.Name), zap.Error(r.err))
		}
	}
	return stats
}

func (b *Binder) parallel(n int) bool {
	if b.pool == nil || n < b.parallelThreshold {
		return false
	}
	cs, ok := b.sampler.(ConcurrentSampler)
	return ok && cs.ConcurrentSafe()
}
