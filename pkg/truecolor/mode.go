package truecolor

import "fmt"

type ReflectanceMode int

const (
	// RawReflectancePassthrough treats radiance as if it were reflectance.
	RawReflectancePassthrough ReflectanceMode = iota
	AtmosphericallyCorrected
)

func (rm ReflectanceMode) String() string {
	if rm == AtmosphericallyCorrected {
		return "atmospherically-corrected"
	}
	return "raw-reflectance-passthrough"
}

type CompositeMode int

const (
	DirectComposite CompositeMode = iota
	PanSharpenedComposite
)

func (cm CompositeMode) String() string {
	if cm == PanSharpenedComposite {
		return "pan-sharpened"
	}
	return "direct"
}

// Mode is chosen once, when a Pipeline is built; nothing downstream
// looks at the flags again.
type Mode struct {
	Reflectance ReflectanceMode
	Composite   CompositeMode
}

func (m Mode) String() string { return fmt.Sprintf("%s/%s", m.Reflectance, m.Composite) }

// WantPan says whether the panchromatic band needs loading.
func (m Mode) WantPan() bool { return m.Composite == PanSharpenedComposite }

// RequiredBands lists the bands a run in this mode must load.
func (m Mode) RequiredBands() []string {
	if m.WantPan() {
		return []string{BandBlue, BandGreen, BandRed, BandPan}
	}
	return []string{BandBlue, BandGreen, BandRed}
}
