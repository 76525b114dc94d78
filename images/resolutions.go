// Package images - Named benchmark resolutions. The benchmark driver scales its
// input to each requested resolution so strategy timings can be compared per frame size.
package images

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AspectRatio represents an aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Defines the aspect ratios used by the catalog.
const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatio54  AspectRatio = "5:4"
)

// ResolutionAlias is the short name a resolution is requested by (e.g., "1080p").
type ResolutionAlias string

// Defines the aliases of every catalogued resolution.
const (
	ResolutionAlias360p  ResolutionAlias = "360p"
	ResolutionAlias480p  ResolutionAlias = "480p"
	ResolutionAliasVGA   ResolutionAlias = "vga"
	ResolutionAlias720p  ResolutionAlias = "720p"
	ResolutionAlias1MP   ResolutionAlias = "1mp"
	ResolutionAlias1080p ResolutionAlias = "1080p"
	ResolutionAlias1440p ResolutionAlias = "1440p"
	ResolutionAlias4K    ResolutionAlias = "4k"
)

// Pixels describes the exact dimensions of a resolution.
type Pixels struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Resolution describes a named frame size.
type Resolution struct {
	Name        string      `json:"name"        yaml:"name"`
	AspectRatio AspectRatio `json:"aspectRatio" yaml:"aspectRatio"`
	Pixels      Pixels      `json:"pixels"      yaml:"pixels"`
}

// Resolutions holds every catalogued resolution keyed by alias.
var Resolutions = map[ResolutionAlias]Resolution{
	ResolutionAlias360p:  {Name: "nHD 360p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 640, Height: 360}},
	ResolutionAlias480p:  {Name: "FWVGA 480p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 854, Height: 480}},
	ResolutionAliasVGA:   {Name: "VGA", AspectRatio: AspectRatio43, Pixels: Pixels{Width: 640, Height: 480}},
	ResolutionAlias720p:  {Name: "HD 720p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 1280, Height: 720}},
	ResolutionAlias1MP:   {Name: "1MP (5:4)", AspectRatio: AspectRatio54, Pixels: Pixels{Width: 1280, Height: 1024}},
	ResolutionAlias1080p: {Name: "Full HD 1080p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 1920, Height: 1080}},
	ResolutionAlias1440p: {Name: "QHD 1440p", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 2560, Height: 1440}},
	ResolutionAlias4K:    {Name: "4K UHD", AspectRatio: AspectRatio169, Pixels: Pixels{Width: 3840, Height: 2160}},
}

// GetMegaPixels calculates the megapixel value rounded to two decimal places
// (e.g., 2.07 for 1080p). Non-positive dimensions yield 0.
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Pixels.Width*r.Pixels.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
}

// SortedResolutions returns the catalog ordered by pixel count, smallest first.
func SortedResolutions() []Resolution {
	all := make([]Resolution, 0, len(Resolutions))
	for _, res := range Resolutions {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		pi := all[i].Pixels.Width * all[i].Pixels.Height
		pj := all[j].Pixels.Width * all[j].Pixels.Height
		if pi == pj {
			return all[i].Name < all[j].Name
		}
		return pi < pj
	})
	return all
}

// ParseResolution resolves either a catalog alias ("720p") or an explicit
// "WIDTHxHEIGHT" string into a Resolution.
//
// Arguments:
//   - s: The alias or dimensions string.
//
// Returns:
//   - Resolution: The resolved resolution.
//   - error: An error if s is neither a known alias nor valid dimensions.
func ParseResolution(s string) (Resolution, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if res, ok := Resolutions[ResolutionAlias(key)]; ok {
		return res, nil
	}

	w, h, found := strings.Cut(key, "x")
	if !found {
		return Resolution{}, errors.Errorf("unknown resolution %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "invalid height in %q", s)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, errors.Errorf("resolution %q must be positive", s)
	}
	return Resolution{Name: fmt.Sprintf("%dx%d", width, height), Pixels: Pixels{Width: width, Height: height}}, nil
}
