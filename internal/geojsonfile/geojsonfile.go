// Package geojsonfile reads and writes a dataset as one GeoJSON feature
// collection per partition.
//
// A dataset with prefix "harn" in directory dir is stored as
//
//	dir/harn_lines.geojson
//	dir/harn_pts.geojson
//	dir/harn_polys.geojson
//
// Every feature carries the properties id, name, type and style. A missing
// file is an empty partition.
package geojsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

// Dir is a directory of dataset files.
type Dir struct {
	Path string
	Log  logrus.FieldLogger
}

// New returns the dataset directory at path.
func New(path string, log logrus.FieldLogger) *Dir {
	return &Dir{Path: path, Log: log}
}

// File returns the path of a partition file.
func (d *Dir) File(ds *store.Dataset, p feature.Partition) string {
	return filepath.Join(d.Path, ds.Table(p)+".geojson")
}

// Load reads every partition file of the dataset into it.
func (d *Dir) Load(ctx context.Context, ds *store.Dataset) error {
	for _, p := range feature.Partitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := d.File(ds, p)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			d.Log.WithField("file", path).Debug("partition file missing, starting empty")
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return &ErrInvalidFile{Path: path, Reason: err.Error()}
		}
		s := ds.Partition(p)
		for i, gf := range fc.Features {
			f, err := decodeFeature(gf)
			if err != nil {
				return &ErrInvalidFile{Path: path, Reason: fmt.Sprintf("feature %d: %v", i, err)}
			}
			if err := s.Load(f); err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
		}
		d.Log.WithFields(logrus.Fields{"file": path, "features": len(fc.Features)}).Info("partition loaded")
	}
	return nil
}

// Commit writes every partition of the dataset. All files are written
// next to their destinations first and only then renamed over them, so a
// failed encode or write leaves every destination untouched.
func (d *Dir) Commit(ctx context.Context, ds *store.Dataset) error {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return err
	}

	type staged struct {
		path, tmp string
		features  int
	}
	var files []staged
	defer func() {
		for _, f := range files {
			os.Remove(f.tmp)
		}
	}()

	for _, p := range feature.Partitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		fc := geojson.NewFeatureCollection()
		for _, f := range ds.Partition(p).Features() {
			fc.Append(encodeFeature(f))
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode %s: %w", ds.Table(p), err)
		}
		path := d.File(ds, p)
		tmp, err := writeTemp(path, data)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, staged{path: path, tmp: tmp, features: len(fc.Features)})
	}

	for _, f := range files {
		if err := os.Rename(f.tmp, f.path); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
		d.Log.WithFields(logrus.Fields{"file": f.path, "features": f.features}).Info("partition written")
	}
	return nil
}

// writeTemp writes data to a new file next to path and returns its name.
func writeTemp(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func decodeFeature(gf *geojson.Feature) (feature.Feature, error) {
	id, err := featureID(gf)
	if err != nil {
		return feature.Feature{}, err
	}
	t, err := feature.ParseType(stringProperty(gf, "type", ""))
	if err != nil {
		return feature.Feature{}, err
	}
	return feature.Feature{
		ID:       id,
		Name:     stringProperty(gf, "name", feature.DefaultName),
		Type:     t,
		Style:    stringProperty(gf, "style", ""),
		Geometry: gf.Geometry,
	}, nil
}

func stringProperty(gf *geojson.Feature, key, def string) string {
	if s, ok := gf.Properties[key].(string); ok && s != "" {
		return s
	}
	return def
}

// featureID reads the id property, falling back to the feature id member.
func featureID(gf *geojson.Feature) (int64, error) {
	v, ok := gf.Properties["id"]
	if !ok {
		v = gf.ID
	}
	switch id := v.(type) {
	case float64:
		if id != float64(int64(id)) {
			return 0, fmt.Errorf("id %v is not an integer", id)
		}
		return int64(id), nil
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	case nil:
		return 0, errors.New("missing id")
	default:
		return 0, fmt.Errorf("id has type %T", v)
	}
}

func encodeFeature(f feature.Feature) *geojson.Feature {
	gf := geojson.NewFeature(f.Geometry)
	gf.Properties["id"] = f.ID
	gf.Properties["name"] = f.Name
	gf.Properties["type"] = f.Type.String()
	gf.Properties["style"] = f.Style
	return gf
}
