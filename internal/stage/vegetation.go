package stage

import (
	"context"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb"
)

// VegetationStage turns vegetation outlines into non-overlapping areas.
type VegetationStage struct {
	Options VegetationOptions
}

// Name implements Stage.
func (s *VegetationStage) Name() Name { return Vegetation }

func vegetationClass(class string) store.Filter {
	return func(f *feature.Feature) bool {
		p, ok := f.Type.(feature.Pending)
		return ok && p.Category == feature.CategoryVegetation && feature.VegetationClass(p.Raw) == class
	}
}

// Run implements Stage.
func (s *VegetationStage) Run(ctx context.Context, env *Env) (Result, error) {
	res := newResult(Vegetation)
	classes := s.Options.Classes

	raw := make([]orb.Geometry, len(classes))
	for i, class := range classes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		areas, skipped, err := s.outlines(env, class)
		if err != nil {
			return res, err
		}
		res.Unresolved += skipped
		if raw[i], err = env.Engine.Union(areas...); err != nil {
			return res, err
		}
	}

	for i, class := range classes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		reduced := raw[i]
		for j := i + 1; j < len(classes) && !geometry.IsEmpty(reduced); j++ {
			if geometry.IsEmpty(raw[j]) {
				continue
			}
			var err error
			if reduced, err = env.Engine.Difference(reduced, raw[j]); err != nil {
				return res, err
			}
		}
		for _, p := range geometry.Polygons(reduced) {
			env.Data.Polygons.Insert(feature.Feature{
				Name:     feature.DefaultName,
				Type:     feature.Vegetation{Class: class},
				Geometry: p,
			})
			res.Counters["areas"]++
		}
		env.Log.WithField("class", class).Debug("class normalised")
	}
	return res, nil
}

// outlines returns the valid areas drawn for a class and the number of
// outlines too short to enclose anything.
func (s *VegetationStage) outlines(env *Env, class string) ([]orb.Geometry, int, error) {
	lines := env.Data.Lines
	var (
		areas   []orb.Geometry
		skipped int
	)
	for _, id := range lines.Select(vegetationClass(class)) {
		f, err := lines.Get(id)
		if err != nil {
			return nil, 0, err
		}
		parts := geometry.Lines(f.Geometry)
		if len(parts) != 1 || len(parts[0]) < 4 {
			skipped++
			continue
		}
		ring := parts[0]
		if !ring[0].Equal(ring[len(ring)-1]) {
			ring = append(ring.Clone(), ring[0])
		}
		poly, err := geometry.MakePolygon(ring)
		if err != nil {
			return nil, 0, err
		}
		valid, err := env.Engine.MakeValid(poly)
		if err != nil {
			return nil, 0, err
		}
		areas = append(areas, valid)
	}
	return areas, skipped, nil
}
