package feature

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the structured tag of a feature. It is the only place resolution
// state is recorded: a Pending type still needs work, every other variant is
// a terminal classification.
//
// The variants are Pending, Elevation, Lake, Mouth and Vegetation.
type Type interface {
	fmt.Stringer
	isType()
}

// TmpLake is the raw tag of lake candidates produced by polygon healing.
const TmpLake = "COASTLINE/tmp-lake"

// Pending marks a feature that has not been resolved yet.
type Pending struct {
	Category Category
	// Raw is the ingested tag, kept so export is lossless.
	Raw string
}

// Elevation is a resolved contour. Elevation zero is the shoreline.
type Elevation struct {
	Meters int
}

// Lake is a resolved lake body.
type Lake struct {
	Name    string
	Surface int
	// Broken marks lakes whose surrounding contours do not bracket them.
	Broken bool
}

// Mouth is a river segment whose endpoint on Side meets a terminal boundary
// at drainage Level.
type Mouth struct {
	Level int
	Side  Side
}

// Vegetation is a normalised vegetation area.
type Vegetation struct {
	Class string
}

func (Pending) isType()    {}
func (Elevation) isType()  {}
func (Lake) isType()       {}
func (Mouth) isType()      {}
func (Vegetation) isType() {}

func (t Pending) String() string {
	if t.Raw != "" {
		return t.Raw
	}
	return t.Category.String()
}

func (t Elevation) String() string {
	return strconv.Itoa(t.Meters)
}

func (t Lake) String() string {
	switch {
	case t.Broken:
		return "BROKENLAKE"
	case t.Name == "":
		return "LAKE"
	case t.Surface != 0:
		return fmt.Sprintf("Lake/%s/%d", t.Name, t.Surface)
	default:
		return "Lake/" + t.Name
	}
}

func (t Mouth) String() string {
	return fmt.Sprintf("River/%d/Mouth:%s", t.Level, t.Side)
}

func (t Vegetation) String() string {
	return "VEG/" + t.Class
}

// Side is one of the two endpoints of a line.
type Side int

const (
	Start Side = iota
	End
)

func (s Side) String() string {
	if s == End {
		return "end"
	}
	return "start"
}

// Other returns the opposite endpoint.
func (s Side) Other() Side {
	if s == End {
		return Start
	}
	return End
}

// Index returns the vertex index of the endpoint, counting from the end for
// End.
func (s Side) Index() int {
	if s == End {
		return -1
	}
	return 0
}

// ErrInvalidType indicates a structured tag that cannot be parsed.
type ErrInvalidType struct {
	Raw    string
	Reason string
}

func (e *ErrInvalidType) Error() string {
	return fmt.Sprintf("invalid type tag %q: %s", e.Raw, e.Reason)
}

// ParseType decodes a stored type tag. Tags that carry no resolution become
// Pending with their category; ParseType(t.String()) returns t for every tag
// the resolution stages write.
func ParseType(raw string) (Type, error) {
	switch {
	case raw == TmpLake || raw == "/"+TmpLake:
		return Pending{Category: CategoryLake, Raw: raw}, nil
	case raw == "LAKE":
		return Lake{}, nil
	case raw == "BROKENLAKE":
		return Lake{Broken: true}, nil
	case strings.HasPrefix(raw, "Lake/"):
		return parseLake(raw)
	case strings.HasPrefix(raw, "River/"):
		return parseMouth(raw)
	case strings.HasPrefix(raw, "VEG/"):
		return Vegetation{Class: strings.TrimPrefix(raw, "VEG/")}, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return Elevation{Meters: n}, nil
	}
	return Pending{Category: Categorize(raw), Raw: raw}, nil
}

// MustParseType is ParseType for tags known to be valid.
func MustParseType(raw string) Type {
	t, err := ParseType(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func parseLake(raw string) (Type, error) {
	parts := strings.Split(strings.TrimPrefix(raw, "Lake/"), "/")
	lake := Lake{Name: parts[0]}
	if lake.Name == "" {
		return nil, &ErrInvalidType{Raw: raw, Reason: "empty lake name"}
	}
	if len(parts) > 1 {
		surface, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, &ErrInvalidType{Raw: raw, Reason: "lake surface is not a number"}
		}
		lake.Surface = surface
	}
	return lake, nil
}

func parseMouth(raw string) (Type, error) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "Mouth:") {
		return nil, &ErrInvalidType{Raw: raw, Reason: "expected River/<level>/Mouth:<side>"}
	}
	level, err := strconv.Atoi(parts[1])
	if err != nil || level < 0 {
		return nil, &ErrInvalidType{Raw: raw, Reason: "level is not a non-negative number"}
	}
	var side Side
	switch strings.TrimPrefix(parts[2], "Mouth:") {
	case "start":
		side = Start
	case "end":
		side = End
	default:
		return nil, &ErrInvalidType{Raw: raw, Reason: "side must be start or end"}
	}
	return Mouth{Level: level, Side: side}, nil
}

// IsPending reports whether t is still unresolved and, when categories are
// given, belongs to one of them.
func IsPending(t Type, categories ...Category) bool {
	p, ok := t.(Pending)
	if !ok {
		return false
	}
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if p.Category == c {
			return true
		}
	}
	return false
}

// IsShore reports whether t is the resolved shoreline.
func IsShore(t Type) bool {
	e, ok := t.(Elevation)
	return ok && e.Meters == 0
}

// IsLakeBody reports whether t is a lake or a lake candidate.
func IsLakeBody(t Type) bool {
	switch t := t.(type) {
	case Lake:
		return true
	case Pending:
		return t.Raw == TmpLake || t.Raw == "/"+TmpLake
	}
	return false
}

// ElevationOf returns the elevation a type carries: the value of a resolved
// contour, or the label of an elevation marker.
func ElevationOf(t Type) (int, bool) {
	switch t := t.(type) {
	case Elevation:
		return t.Meters, true
	case Pending:
		if t.Category == CategoryElevationLabel {
			return ElevationLabel(t.Raw)
		}
	}
	return 0, false
}
