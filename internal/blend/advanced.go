package blend

import "github.com/chewxy/math32"

// channelFunc returns B(Cb, Cs) for a separable mode. Unknown modes blend
// as Normal.
func channelFunc(m Mode) func(cb, cs float32) float32 {
	switch m {
	case Multiply:
		return blendMultiply
	case Screen:
		return blendScreen
	case Overlay:
		return blendOverlay
	case Darken:
		return blendDarken
	case Lighten:
		return blendLighten
	case ColorDodge:
		return blendColorDodge
	case ColorBurn:
		return blendColorBurn
	case HardLight:
		return blendHardLight
	case SoftLight:
		return blendSoftLight
	case Difference:
		return blendDifference
	case Exclusion:
		return blendExclusion
	case Add:
		return blendAdd
	default:
		return blendNormal
	}
}

// B(Cb, Cs) = Cs
func blendNormal(_, cs float32) float32 { return cs }

// B(Cb, Cs) = Cb * Cs
func blendMultiply(cb, cs float32) float32 { return cb * cs }

// B(Cb, Cs) = Cb + Cs - Cb*Cs
func blendScreen(cb, cs float32) float32 { return cb + cs - cb*cs }

// B(Cb, Cs) = min(Cb, Cs)
func blendDarken(cb, cs float32) float32 { return min(cb, cs) }

// B(Cb, Cs) = max(Cb, Cs)
func blendLighten(cb, cs float32) float32 { return max(cb, cs) }

// B(Cb, Cs) = HardLight(Cs, Cb)
func blendOverlay(cb, cs float32) float32 { return blendHardLight(cs, cb) }

// B(Cb, Cs) = if Cb == 0: 0, elif Cs == 1: 1, else: min(1, Cb / (1 - Cs))
func blendColorDodge(cb, cs float32) float32 {
	if cb == 0 {
		return 0
	}
	if cs >= 1 {
		return 1
	}
	return min(1, cb/(1-cs))
}

// B(Cb, Cs) = if Cb == 1: 1, elif Cs == 0: 0, else: 1 - min(1, (1 - Cb) / Cs)
func blendColorBurn(cb, cs float32) float32 {
	if cb >= 1 {
		return 1
	}
	if cs <= 0 {
		return 0
	}
	return 1 - min(1, (1-cb)/cs)
}

// B(Cb, Cs) = if Cs <= 0.5: Multiply(Cb, 2*Cs), else: Screen(Cb, 2*Cs - 1)
func blendHardLight(cb, cs float32) float32 {
	if cs <= 0.5 {
		return blendMultiply(cb, 2*cs)
	}
	return blendScreen(cb, 2*cs-1)
}

// B(Cb, Cs) = if Cs <= 0.5: Cb - (1 - 2*Cs)*Cb*(1 - Cb)
// else: Cb + (2*Cs - 1)*(D(Cb) - Cb)
// where D(x) = if x <= 0.25: ((16*x - 12)*x + 4)*x, else: sqrt(x)
func blendSoftLight(cb, cs float32) float32 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float32
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = math32.Sqrt(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}

// B(Cb, Cs) = |Cb - Cs|
func blendDifference(cb, cs float32) float32 {
	if cb > cs {
		return cb - cs
	}
	return cs - cb
}

// B(Cb, Cs) = Cb + Cs - 2*Cb*Cs
func blendExclusion(cb, cs float32) float32 { return cb + cs - 2*cb*cs }

// B(Cb, Cs) = min(1, Cb + Cs)
func blendAdd(cb, cs float32) float32 { return min(1, cb+cs) }
