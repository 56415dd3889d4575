package devcaps

// SourceID identifies a scan input source. The declaration order is the
// preference order used when choosing the initial source for a device.
type SourceID int

const (
	// SourcePlaten is the flatbed glass
	SourcePlaten SourceID = iota

	// SourceADFFront is the document feeder, front side
	SourceADFFront

	// SourceADFBack is the document feeder, back side (duplex capable units)
	SourceADFBack

	numSourceIDs
)

// NumSourceIDs is the count of known source identifiers
const NumSourceIDs = int(numSourceIDs)

// String returns the user-visible source name
func (id SourceID) String() string {
	switch id {
	case SourcePlaten:
		return "Flatbed"
	case SourceADFFront:
		return "ADF Front"
	case SourceADFBack:
		return "ADF Back"
	default:
		return "Unknown"
	}
}

// SourceIDFromString maps a user-visible source name back to its identifier.
// Returns false if the name is not a known source.
func SourceIDFromString(name string) (SourceID, bool) {
	for id := SourcePlaten; id < numSourceIDs; id++ {
		if id.String() == name {
			return id, true
		}
	}
	return 0, false
}

// ColorMode identifies a scan color mode
type ColorMode int

const (
	// ColorModeLineart is 1-bit black and white
	ColorModeLineart ColorMode = iota

	// ColorModeGrayscale is 8-bit grayscale
	ColorModeGrayscale

	// ColorModeColor is 24-bit RGB
	ColorModeColor

	numColorModes
)

// String returns the user-visible color mode name
func (cm ColorMode) String() string {
	switch cm {
	case ColorModeLineart:
		return "Lineart"
	case ColorModeGrayscale:
		return "Gray"
	case ColorModeColor:
		return "Color"
	default:
		return "Unknown"
	}
}

// ColorModeFromString maps a user-visible color mode name back to its value.
// Returns false if the name is not a known color mode.
func ColorModeFromString(name string) (ColorMode, bool) {
	for cm := ColorModeLineart; cm < numColorModes; cm++ {
		if cm.String() == name {
			return cm, true
		}
	}
	return 0, false
}

// Range is an inclusive range of scan-area coordinates in millimeters
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp returns v limited to the range
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// ResolutionRange is an inclusive range of resolutions in DPI, used when the
// device advertises a continuous resolution range rather than a discrete list
type ResolutionRange struct {
	Min int
	Max int
}

// Source describes the capabilities of a single scan input source
type Source struct {
	// ID is the source identifier
	ID SourceID

	// ColorModes lists the supported color modes, without duplicates
	ColorModes []ColorMode

	// Resolutions lists supported discrete resolutions in DPI, sorted
	// ascending. Nil when the device advertises a continuous range instead.
	Resolutions []int

	// ResolutionRange is the continuous resolution range, when Resolutions
	// is nil
	ResolutionRange *ResolutionRange

	// Scan window geometry ranges, in millimeters
	TLX Range // top-left x
	TLY Range // top-left y
	BRX Range // bottom-right x
	BRY Range // bottom-right y
}

// SupportsColorMode reports whether the source supports the given color mode
func (s *Source) SupportsColorMode(cm ColorMode) bool {
	for _, m := range s.ColorModes {
		if m == cm {
			return true
		}
	}
	return false
}

// ChooseColorMode selects a color mode for the source. If wanted is
// supported it is returned as-is; otherwise the richest supported mode wins
// (color over grayscale over lineart).
func (s *Source) ChooseColorMode(wanted ColorMode) ColorMode {
	if s.SupportsColorMode(wanted) {
		return wanted
	}

	for _, cm := range []ColorMode{ColorModeColor, ColorModeGrayscale, ColorModeLineart} {
		if s.SupportsColorMode(cm) {
			return cm
		}
	}

	// Parser guarantees at least one color mode per usable source
	return wanted
}

// SupportsResolution reports whether the source supports the given
// resolution exactly
func (s *Source) SupportsResolution(dpi int) bool {
	if s.Resolutions != nil {
		for _, r := range s.Resolutions {
			if r == dpi {
				return true
			}
		}
		return false
	}
	if s.ResolutionRange != nil {
		return dpi >= s.ResolutionRange.Min && dpi <= s.ResolutionRange.Max
	}
	return false
}

// ChooseResolution selects the supported resolution closest to wanted.
// For a discrete list the nearest entry wins (ties go to the lower value);
// for a continuous range wanted is clamped.
func (s *Source) ChooseResolution(wanted int) int {
	if s.Resolutions != nil {
		best := s.Resolutions[0]
		for _, r := range s.Resolutions[1:] {
			if abs(r-wanted) < abs(best-wanted) {
				best = r
			}
		}
		return best
	}

	if s.ResolutionRange != nil {
		if wanted < s.ResolutionRange.Min {
			return s.ResolutionRange.Min
		}
		if wanted > s.ResolutionRange.Max {
			return s.ResolutionRange.Max
		}
	}
	return wanted
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Caps describes the negotiated capabilities of a device
type Caps struct {
	// Vendor is the device vendor name
	Vendor string

	// Model is the device model name
	Model string

	// sources holds one entry per SourceID; nil where the device does not
	// advertise that source
	sources [numSourceIDs]*Source
}

// Source returns the capabilities of the given source, or nil if the device
// does not advertise it
func (c *Caps) Source(id SourceID) *Source {
	if id < 0 || id >= numSourceIDs {
		return nil
	}
	return c.sources[id]
}

// FirstSource returns the first advertised source in preference order.
// The parser rejects documents with no usable sources, so ok is false only
// for a zero-value Caps.
func (c *Caps) FirstSource() (SourceID, bool) {
	for id := SourcePlaten; id < numSourceIDs; id++ {
		if c.sources[id] != nil {
			return id, true
		}
	}
	return 0, false
}

// SourceNames returns the user-visible names of all advertised sources,
// in preference order
func (c *Caps) SourceNames() []string {
	var names []string
	for id := SourcePlaten; id < numSourceIDs; id++ {
		if c.sources[id] != nil {
			names = append(names, id.String())
		}
	}
	return names
}
