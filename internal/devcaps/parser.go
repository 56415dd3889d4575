package devcaps

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// eSCL expresses geometry in 1/300 inch units
const (
	unitsPerInch = 300
	mmPerInch    = 25.4
)

// XML document layout of an eSCL ScannerCapabilities response. Tags match
// on local names only, so the scan:/pwg: namespace prefixes used by real
// devices are accepted.

type xmlCaps struct {
	XMLName      xml.Name `xml:"ScannerCapabilities"`
	Version      string   `xml:"Version"`
	MakeAndModel string   `xml:"MakeAndModel"`
	Platen       *struct {
		InputCaps *xmlInputCaps `xml:"PlatenInputCaps"`
		// Some firmwares ship the InputSource spelling instead; accept both
		InputCapsAlt *xmlInputCaps `xml:"PlatenInputSource"`
	} `xml:"Platen"`
	ADF *struct {
		Simplex *xmlInputCaps `xml:"AdfSimplexInputCaps"`
		Duplex  *xmlInputCaps `xml:"AdfDuplexInputCaps"`
	} `xml:"Adf"`
}

type xmlInputCaps struct {
	MinWidth        int `xml:"MinWidth"`
	MaxWidth        int `xml:"MaxWidth"`
	MinHeight       int `xml:"MinHeight"`
	MaxHeight       int `xml:"MaxHeight"`
	SettingProfiles struct {
		Profiles []xmlSettingProfile `xml:"SettingProfile"`
	} `xml:"SettingProfiles"`
}

type xmlSettingProfile struct {
	ColorModes struct {
		Modes []string `xml:"ColorMode"`
	} `xml:"ColorModes"`
	SupportedResolutions struct {
		Discrete *struct {
			Resolutions []xmlDiscreteResolution `xml:"DiscreteResolution"`
		} `xml:"DiscreteResolutions"`
		Range *struct {
			X struct {
				Min int `xml:"Min"`
				Max int `xml:"Max"`
			} `xml:"XResolutionRange"`
		} `xml:"ResolutionRange"`
	} `xml:"SupportedResolutions"`
}

type xmlDiscreteResolution struct {
	X int `xml:"XResolution"`
	Y int `xml:"YResolution"`
}

// Parse decodes an eSCL ScannerCapabilities document.
//
// A document that is well-formed XML but advertises no usable scan source
// (every source missing color modes or resolutions) is rejected: such a
// device cannot be driven and its discovery attempt must fail.
func Parse(data []byte) (*Caps, error) {
	var doc xmlCaps
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ScannerCapabilities XML: %w", err)
	}

	caps := &Caps{}
	caps.Vendor, caps.Model = splitMakeAndModel(doc.MakeAndModel)

	if doc.Platen != nil {
		ic := doc.Platen.InputCaps
		if ic == nil {
			ic = doc.Platen.InputCapsAlt
		}
		caps.sources[SourcePlaten] = buildSource(SourcePlaten, ic)
	}
	if doc.ADF != nil {
		caps.sources[SourceADFFront] = buildSource(SourceADFFront, doc.ADF.Simplex)
		caps.sources[SourceADFBack] = buildSource(SourceADFBack, doc.ADF.Duplex)
	}

	if _, ok := caps.FirstSource(); !ok {
		return nil, fmt.Errorf("ScannerCapabilities: no usable scan sources")
	}

	return caps, nil
}

// splitMakeAndModel derives vendor and model from the pwg:MakeAndModel
// string. eSCL has no separate vendor field; the first word serves as
// vendor when the string has more than one word.
func splitMakeAndModel(makeAndModel string) (vendor, model string) {
	makeAndModel = strings.TrimSpace(makeAndModel)
	if makeAndModel == "" {
		return "eSCL", "Unknown"
	}

	fields := strings.Fields(makeAndModel)
	if len(fields) < 2 {
		return "eSCL", makeAndModel
	}
	return fields[0], makeAndModel
}

// buildSource converts one input-caps block into a Source. Returns nil when
// the block is absent or unusable (no color modes or no resolutions).
func buildSource(id SourceID, ic *xmlInputCaps) *Source {
	if ic == nil {
		return nil
	}

	src := &Source{ID: id}

	// Union of color modes and resolutions across all setting profiles
	seen := make(map[int]bool)
	for _, profile := range ic.SettingProfiles.Profiles {
		for _, name := range profile.ColorModes.Modes {
			cm, ok := colorModeFromESCL(name)
			if ok && !src.SupportsColorMode(cm) {
				src.ColorModes = append(src.ColorModes, cm)
			}
		}

		sr := profile.SupportedResolutions
		if sr.Discrete != nil {
			for _, res := range sr.Discrete.Resolutions {
				// Only symmetric resolutions are exposed as scan options
				if res.X > 0 && res.X == res.Y && !seen[res.X] {
					seen[res.X] = true
					src.Resolutions = append(src.Resolutions, res.X)
				}
			}
		} else if sr.Range != nil && src.ResolutionRange == nil {
			if sr.Range.X.Min > 0 && sr.Range.X.Max >= sr.Range.X.Min {
				src.ResolutionRange = &ResolutionRange{
					Min: sr.Range.X.Min,
					Max: sr.Range.X.Max,
				}
			}
		}
	}
	sort.Ints(src.Resolutions)

	if len(src.ColorModes) == 0 {
		return nil
	}
	if len(src.Resolutions) == 0 && src.ResolutionRange == nil {
		return nil
	}
	if ic.MaxWidth <= 0 || ic.MaxHeight <= 0 {
		return nil
	}

	maxWidthMM := unitsToMM(ic.MaxWidth)
	maxHeightMM := unitsToMM(ic.MaxHeight)
	src.TLX = Range{Min: 0, Max: maxWidthMM}
	src.TLY = Range{Min: 0, Max: maxHeightMM}
	src.BRX = Range{Min: 0, Max: maxWidthMM}
	src.BRY = Range{Min: 0, Max: maxHeightMM}

	return src
}

// colorModeFromESCL maps an eSCL ColorMode element value to a ColorMode
func colorModeFromESCL(name string) (ColorMode, bool) {
	switch name {
	case "BlackAndWhite1":
		return ColorModeLineart, true
	case "Grayscale8", "Grayscale16":
		return ColorModeGrayscale, true
	case "RGB24", "RGB48":
		return ColorModeColor, true
	default:
		return 0, false
	}
}

func unitsToMM(units int) float64 {
	return float64(units) / unitsPerInch * mmPerInch
}
