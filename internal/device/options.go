package device

import (
	"fmt"

	"github.com/yetamrra/sane-airscan-wsd/internal/devcaps"
)

// Option identifies one user-selectable scan parameter
type Option int

const (
	// OptResolution is the scan resolution in DPI (int)
	OptResolution Option = iota
	// OptColorMode is the color mode name (string)
	OptColorMode
	// OptSource is the scan source name (string)
	OptSource
	// OptTLX is the top-left x coordinate in mm (float64)
	OptTLX
	// OptTLY is the top-left y coordinate in mm (float64)
	OptTLY
	// OptBRX is the bottom-right x coordinate in mm (float64)
	OptBRX
	// OptBRY is the bottom-right y coordinate in mm (float64)
	OptBRY

	numOptions
)

// NumOptions is the count of scan options
const NumOptions = int(numOptions)

// String returns the option name
func (o Option) String() string {
	switch o {
	case OptResolution:
		return "resolution"
	case OptColorMode:
		return "mode"
	case OptSource:
		return "source"
	case OptTLX:
		return "tl-x"
	case OptTLY:
		return "tl-y"
	case OptBRX:
		return "br-x"
	case OptBRY:
		return "br-y"
	default:
		return fmt.Sprintf("Option(%d)", int(o))
	}
}

// selectSourceLocked makes id the active source and recomputes every
// dependent default: richest supported color mode, default resolution
// snapped to the source's supported set, and a scan window covering the
// source's full advertised extent. Caller holds m.mu; the device must have
// negotiated capabilities.
func (d *Device) selectSourceLocked(id devcaps.SourceID) {
	src := d.caps.Source(id)

	d.optSource = id
	d.optColorMode = src.ChooseColorMode(devcaps.ColorModeColor)
	d.optResolution = src.ChooseResolution(DefaultResolution)

	d.optTLX = 0
	d.optTLY = 0
	d.optBRX = src.BRX.Max
	d.optBRY = src.BRY.Max
}

// GetOption reads the current value of an option. Resolution is an int,
// color mode and source are their user-visible names, geometry coordinates
// are float64 millimeters.
//
// Fails with a not-ready error until the device completes capability
// negotiation, and with an invalid-argument error for an unknown option.
func (d *Device) GetOption(opt Option) (any, error) {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()

	if d.state != stateReady {
		return nil, NewNotReadyError(d.name)
	}

	switch opt {
	case OptResolution:
		return d.optResolution, nil
	case OptColorMode:
		return d.optColorMode.String(), nil
	case OptSource:
		return d.optSource.String(), nil
	case OptTLX:
		return d.optTLX, nil
	case OptTLY:
		return d.optTLY, nil
	case OptBRX:
		return d.optBRX, nil
	case OptBRY:
		return d.optBRY, nil
	default:
		return nil, NewInvalidArgumentError("unknown option %d", int(opt))
	}
}

// SetOption writes an option value. Values are validated against the active
// source's advertised constraints; selecting a new source recomputes all
// dependent options as on initial negotiation.
func (d *Device) SetOption(opt Option, value any) error {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()

	if d.state != stateReady {
		return NewNotReadyError(d.name)
	}

	src := d.caps.Source(d.optSource)

	switch opt {
	case OptResolution:
		dpi, ok := value.(int)
		if !ok {
			return NewInvalidArgumentError("%s: expected int, got %T", opt, value)
		}
		if !src.SupportsResolution(dpi) {
			return NewOutOfRangeError("%s: %d DPI not supported by source %s", opt, dpi, d.optSource)
		}
		d.optResolution = dpi

	case OptColorMode:
		name, ok := value.(string)
		if !ok {
			return NewInvalidArgumentError("%s: expected string, got %T", opt, value)
		}
		cm, ok := devcaps.ColorModeFromString(name)
		if !ok || !src.SupportsColorMode(cm) {
			return NewOutOfRangeError("%s: %q not supported by source %s", opt, name, d.optSource)
		}
		d.optColorMode = cm

	case OptSource:
		name, ok := value.(string)
		if !ok {
			return NewInvalidArgumentError("%s: expected string, got %T", opt, value)
		}
		id, ok := devcaps.SourceIDFromString(name)
		if !ok || d.caps.Source(id) == nil {
			return NewOutOfRangeError("%s: %q not advertised by device", opt, name)
		}
		d.selectSourceLocked(id)

	case OptTLX, OptTLY, OptBRX, OptBRY:
		v, ok := value.(float64)
		if !ok {
			return NewInvalidArgumentError("%s: expected float64, got %T", opt, value)
		}
		r := d.geometryRange(src, opt)
		if !r.Contains(v) {
			return NewOutOfRangeError("%s: %.1fmm outside range [%.1f, %.1f]", opt, v, r.Min, r.Max)
		}
		switch opt {
		case OptTLX:
			d.optTLX = v
		case OptTLY:
			d.optTLY = v
		case OptBRX:
			d.optBRX = v
		case OptBRY:
			d.optBRY = v
		}

	default:
		return NewInvalidArgumentError("unknown option %d", int(opt))
	}

	return nil
}

func (d *Device) geometryRange(src *devcaps.Source, opt Option) devcaps.Range {
	switch opt {
	case OptTLX:
		return src.TLX
	case OptTLY:
		return src.TLY
	case OptBRX:
		return src.BRX
	default:
		return src.BRY
	}
}
