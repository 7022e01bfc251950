package model

import "math"

// Theme is a closed set of aesthetic bundles. Unknown inputs resolve to
// ThemeAnonymous instead of failing at runtime.
type Theme string

const (
	ThemeAnonymous  Theme = "anonymous"
	ThemeCyber      Theme = "cyber"
	ThemeHacking    Theme = "hacking"
	ThemeHacktivism Theme = "hacktivism"
)

// Intensity scales a theme's effect parameters.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// ThemeProfile bundles the style parameters of one theme. HighpassHz
// and LowpassHz are band edges for the audio filter chain; zero means
// the corresponding filter is not applied for this theme.
type ThemeProfile struct {
	Theme         Theme
	Color         string
	BgColor       string
	Font          string
	BaseFontSize  int
	HighpassHz    int
	LowpassHz     int
	CompressRatio float64
}

// IntensityProfile multiplies a theme's numeric parameters.
//   - RatioScale multiplies CompressRatio.
//   - FilterShiftHz widens (positive) or narrows (negative) the filter
//     band: highpass = base - shift, lowpass = base + shift.
//   - Scale multiplies overlay font size and opacity.
type IntensityProfile struct {
	Intensity     Intensity
	RatioScale    float64
	FilterShiftHz int
	Scale         float64
}

var themeProfiles = map[Theme]ThemeProfile{
	ThemeAnonymous: {
		Theme:         ThemeAnonymous,
		Color:         "white",
		BgColor:       "black",
		Font:          "Arial",
		BaseFontSize:  30,
		LowpassHz:     3000,
		CompressRatio: 2.0,
	},
	ThemeCyber: {
		Theme:         ThemeCyber,
		Color:         "#00ff00",
		BgColor:       "black",
		Font:          "Arial-Bold",
		BaseFontSize:  36,
		HighpassHz:    1000,
		LowpassHz:     4000,
		CompressRatio: 4.0,
	},
	ThemeHacking: {
		Theme:         ThemeHacking,
		Color:         "#00ff00",
		BgColor:       "black",
		Font:          "Courier",
		BaseFontSize:  28,
		HighpassHz:    2000,
		CompressRatio: 2.0,
	},
	ThemeHacktivism: {
		Theme:         ThemeHacktivism,
		Color:         "red",
		BgColor:       "black",
		Font:          "Arial-Bold",
		BaseFontSize:  32,
		LowpassHz:     2500,
		CompressRatio: 3.0,
	},
}

var intensityProfiles = map[Intensity]IntensityProfile{
	IntensityLow:    {Intensity: IntensityLow, RatioScale: 0.5, FilterShiftHz: -500, Scale: 0.75},
	IntensityMedium: {Intensity: IntensityMedium, RatioScale: 1.0, FilterShiftHz: 0, Scale: 1.0},
	IntensityHigh:   {Intensity: IntensityHigh, RatioScale: 1.5, FilterShiftHz: 1000, Scale: 1.25},
}

// ParseTheme resolves a client-supplied theme string, falling back to
// the anonymous theme for unknown values.
func ParseTheme(s string) Theme {
	t := Theme(s)
	if _, ok := themeProfiles[t]; ok {
		return t
	}
	return ThemeAnonymous
}

// ParseIntensity resolves a client-supplied intensity string, falling
// back to medium for unknown values.
func ParseIntensity(s string) Intensity {
	i := Intensity(s)
	if _, ok := intensityProfiles[i]; ok {
		return i
	}
	return IntensityMedium
}

func ProfileFor(t Theme) ThemeProfile {
	if p, ok := themeProfiles[t]; ok {
		return p
	}
	return themeProfiles[ThemeAnonymous]
}

func IntensityFor(i Intensity) IntensityProfile {
	if p, ok := intensityProfiles[i]; ok {
		return p
	}
	return intensityProfiles[IntensityMedium]
}

// Themes lists every known theme.
func Themes() []Theme {
	return []Theme{ThemeAnonymous, ThemeCyber, ThemeHacking, ThemeHacktivism}
}

// Intensities lists every known intensity.
func Intensities() []Intensity {
	return []Intensity{IntensityLow, IntensityMedium, IntensityHigh}
}

// FontSize is the overlay font size for a theme at an intensity.
func FontSize(t Theme, i Intensity) int {
	return int(math.Round(float64(ProfileFor(t).BaseFontSize) * IntensityFor(i).Scale))
}

// EffectiveCompressRatio is the dynamic range compression ratio applied
// by the audio effect engine.
func EffectiveCompressRatio(t Theme, i Intensity) float64 {
	return ProfileFor(t).CompressRatio * IntensityFor(i).RatioScale
}

// FilterBand returns the effective highpass/lowpass cutoffs in Hz for a
// theme at an intensity. Zero means the filter is skipped.
func FilterBand(t Theme, i Intensity) (highpassHz, lowpassHz int) {
	p := ProfileFor(t)
	shift := IntensityFor(i).FilterShiftHz
	if p.HighpassHz > 0 {
		highpassHz = p.HighpassHz - shift
		if highpassHz < 0 {
			highpassHz = 0
		}
	}
	if p.LowpassHz > 0 {
		lowpassHz = p.LowpassHz + shift
	}
	return highpassHz, lowpassHz
}

// OverlayOpacity is the text background opacity at an intensity,
// clamped to [0,1].
func OverlayOpacity(i Intensity) float64 {
	o := 0.6 * IntensityFor(i).Scale
	if o > 1 {
		o = 1
	}
	return o
}

// ValidateProfiles checks the lookup tables at startup so a broken
// table is a boot failure rather than a mid-batch surprise.
func ValidateProfiles() error {
	for _, t := range Themes() {
		p, ok := themeProfiles[t]
		if !ok {
			return &ProfileError{Key: string(t)}
		}
		if p.BaseFontSize <= 0 || p.CompressRatio <= 0 || p.Color == "" || p.Font == "" {
			return &ProfileError{Key: string(t)}
		}
	}
	for _, i := range Intensities() {
		p, ok := intensityProfiles[i]
		if !ok {
			return &ProfileError{Key: string(i)}
		}
		if p.Scale <= 0 || p.RatioScale <= 0 {
			return &ProfileError{Key: string(i)}
		}
	}
	return nil
}

type ProfileError struct {
	Key string
}

func (e *ProfileError) Error() string {
	return "invalid profile table entry: " + e.Key
}
