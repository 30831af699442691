package gpu

import "fmt"

// Capabilities is the outcome of negotiating texture support with a device.
type Capabilities struct {
	Device                 Device
	SupportLinearFiltering bool
	TexelType              TexelType
	RGBA                   Format
	RG                     Format
	R                      Format

	// Notes lists every fallback taken, for the caller to log.
	Notes []string
}

// Degraded reports whether any fallback was taken.
func (c Capabilities) Degraded() bool {
	return len(c.Notes) > 0
}

// FieldFilter returns the filter for fields that are sampled between texels.
func (c Capabilities) FieldFilter() Filter {
	if c.SupportLinearFiltering {
		return FilterLinear
	}
	return FilterNearest
}

// tiers lists texel types in preference order. Unsigned byte is the last resort:
// it renders, but clamps negative velocities and pressures.
var tiers = []TexelType{TexelHalfFloat, TexelFloat, TexelUnsignedByte}

// probeSize is the edge of the textures created to test renderability.
const probeSize = 4

// Negotiate selects texture formats and filtering for dev.
//
// For each texel type tier the RGBA slot is resolved first; a tier whose RGBA format is
// not renderable is skipped. The RG and R slots try their own layout and widen toward
// RGBA when a layout cannot be rendered to. Missing features only degrade the result;
// the only error is a device with nothing renderable at all.
func Negotiate(dev Device) (Capabilities, error) {
	if dev == nil {
		return Capabilities{}, ErrNoDevice
	}

	var notes []string
	for _, typ := range tiers {
		if !dev.SupportsTexelType(typ) {
			notes = append(notes, fmt.Sprintf("%s textures unavailable", typ))
			continue
		}
		rgba, ok := supportedFormat(dev, LayoutRGBA, typ)
		if !ok {
			notes = append(notes, fmt.Sprintf("RGBA/%s not renderable", typ))
			continue
		}
		rg, _ := supportedFormat(dev, LayoutRG, typ)
		r, _ := supportedFormat(dev, LayoutR, typ)
		if rg.Layout != LayoutRG {
			notes = append(notes, fmt.Sprintf("RG/%s not renderable, using %s", typ, rg))
		}
		if r.Layout != LayoutR {
			notes = append(notes, fmt.Sprintf("R/%s not renderable, using %s", typ, r))
		}

		linear := dev.SupportsLinearFiltering(typ)
		if !linear {
			notes = append(notes, fmt.Sprintf("no linear filtering for %s, using manual filtering", typ))
		}

		return Capabilities{
			Device:                 dev,
			SupportLinearFiltering: linear,
			TexelType:              typ,
			RGBA:                   rgba,
			RG:                     rg,
			R:                      r,
			Notes:                  notes,
		}, nil
	}
	return Capabilities{}, fmt.Errorf("%w: no renderable texture format", ErrNoDevice)
}

// supportedFormat returns the narrowest renderable format at least as wide as layout.
func supportedFormat(dev Device, layout Layout, typ TexelType) (Format, bool) {
	for l := layout; l <= LayoutRGBA; l++ {
		f := Format{Layout: l, Type: typ}
		if renderable(dev, f) {
			return f, true
		}
	}
	return Format{}, false
}

// renderable creates a probe texture and target and checks completeness.
func renderable(dev Device, f Format) bool {
	tex, err := dev.CreateTexture(0, probeSize, probeSize, f, FilterNearest)
	if err != nil {
		return false
	}
	defer dev.DeleteTexture(tex)

	t, err := dev.CreateTarget(tex)
	if err != nil {
		return false
	}
	dev.DeleteTarget(t)
	return true
}
