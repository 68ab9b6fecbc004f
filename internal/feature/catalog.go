package feature

import (
	"regexp"
	"strconv"
	"strings"
)

// Category is the broad map layer a raw feature was drawn on.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCoastline
	CategoryContour
	CategoryStream
	CategoryRoad
	CategoryLake
	CategoryVegetation
	CategoryElevationLabel
	CategoryPeak
	CategorySettlement
)

// categoryLayers maps layer name fragments, as they appear in the raw type
// tag of digitised features, to their category. Matching is by substring and
// the first match in this order wins.
var categoryLayers = []struct {
	fragment string
	category Category
}{
	{"COASTLINE", CategoryCoastline},
	{"CONTOURS", CategoryContour},
	{"STREAMS", CategoryStream},
	{"ROADS", CategoryRoad},
	{"LAKES", CategoryLake},
	{"TOWNS", CategorySettlement},
	{"MINES", CategorySettlement},
	{"CITIES", CategorySettlement},
}

// VegetationClasses lists vegetation layers in priority order: a class is
// clipped by every class after it.
var VegetationClasses = []string{
	"CROPLAND",
	"WOODLAND",
	"HEATH",
	"FOREST",
	"NEEDLELEAF",
	"ALPINE",
	"SNOW_x2F_ICE",
}

// elevationLabel extracts the hundreds of an elevation label such as
// "HEIGHT_4500" (45) or "x_500" (5).
var elevationLabel = regexp.MustCompile(`[^1-9]([1-9][05]|5)00`)

// categoryNames is the canonical raw tag written for a category when no raw
// tag was ingested.
var categoryNames = map[Category]string{
	CategoryUnknown:        "UNKNOWN",
	CategoryCoastline:      "COASTLINE",
	CategoryContour:        "CONTOURS",
	CategoryStream:         "STREAMS",
	CategoryRoad:           "ROADS",
	CategoryLake:           "LAKES",
	CategoryVegetation:     "VEGETATION",
	CategoryElevationLabel: "ELEVATION",
	CategoryPeak:           "PEAK",
	CategorySettlement:     "TOWNS",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "CATEGORY_" + strconv.Itoa(int(c))
}

// Categorize returns the category of a raw layer tag.
func Categorize(raw string) Category {
	if raw == "PEAK" {
		return CategoryPeak
	}
	for _, layer := range categoryLayers {
		if strings.Contains(raw, layer.fragment) {
			return layer.category
		}
	}
	if VegetationClass(raw) != "" {
		return CategoryVegetation
	}
	if _, ok := ElevationLabel(raw); ok {
		return CategoryElevationLabel
	}
	return CategoryUnknown
}

// VegetationClass returns the vegetation class named in raw, or "".
func VegetationClass(raw string) string {
	for _, class := range VegetationClasses {
		if strings.Contains(raw, class) {
			return class
		}
	}
	return ""
}

// ElevationLabel parses the elevation carried by a raw label tag.
func ElevationLabel(raw string) (int, bool) {
	m := elevationLabel.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	hundreds, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return hundreds * 100, true
}
