package store

import (
	"strings"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
)

// Pending matches unresolved features of the given categories.
func Pending(categories ...feature.Category) Filter {
	return func(f *feature.Feature) bool {
		return feature.IsPending(f.Type, categories...)
	}
}

// Closed matches features whose geometry is a closed line or a polygon.
func Closed() Filter {
	return func(f *feature.Feature) bool {
		return geometry.IsClosed(f.Geometry)
	}
}

// Open matches features whose geometry is an open line.
func Open() Filter {
	return func(f *feature.Feature) bool {
		return !geometry.IsClosed(f.Geometry)
	}
}

// Shore matches the resolved shoreline.
func Shore() Filter {
	return func(f *feature.Feature) bool {
		return feature.IsShore(f.Type)
	}
}

// Elevated matches resolved contours, shoreline included.
func Elevated() Filter {
	return func(f *feature.Feature) bool {
		_, ok := f.Type.(feature.Elevation)
		return ok
	}
}

// LakeBody matches lakes and lake candidates.
func LakeBody() Filter {
	return func(f *feature.Feature) bool {
		return feature.IsLakeBody(f.Type)
	}
}

// MouthAt matches mouths of a level and side.
func MouthAt(level int, side feature.Side) Filter {
	return func(f *feature.Feature) bool {
		m, ok := f.Type.(feature.Mouth)
		return ok && m.Level == level && m.Side == side
	}
}

// MouthLevel matches mouths of a level, either side.
func MouthLevel(level int) Filter {
	return func(f *feature.Feature) bool {
		m, ok := f.Type.(feature.Mouth)
		return ok && m.Level == level
	}
}

// Named matches features with the given name.
func Named(name string) Filter {
	return func(f *feature.Feature) bool {
		return f.Name == name
	}
}

// Except excludes one id.
func Except(id int64) Filter {
	return func(f *feature.Feature) bool {
		return f.ID != id
	}
}

// All matches features accepted by every filter.
func All(filters ...Filter) Filter {
	return func(f *feature.Feature) bool {
		for _, fl := range filters {
			if !fl.match(f) {
				return false
			}
		}
		return true
	}
}

// Any matches features accepted by at least one filter.
func Any(filters ...Filter) Filter {
	return func(f *feature.Feature) bool {
		for _, fl := range filters {
			if fl.match(f) {
				return true
			}
		}
		return false
	}
}

// LakeCandidate matches lake candidates left by polygon healing.
func LakeCandidate() Filter {
	return func(f *feature.Feature) bool {
		return feature.IsLakeBody(f.Type) && feature.IsPending(f.Type)
	}
}

// Styled matches features whose style contains fragment.
func Styled(fragment string) Filter {
	return func(f *feature.Feature) bool {
		return strings.Contains(f.Style, fragment)
	}
}
