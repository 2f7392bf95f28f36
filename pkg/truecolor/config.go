package truecolor

import (
	"fmt"
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Default values for the tunables
const (
	DefaultBrightness       = 2.0
	DefaultMaxReflectance   = 12000.0
	DefaultContrastMidpoint = 191.0
	DefaultContrastEnhance  = 2.3
	DefaultSharpnessEnhance = 1.5
)

// An Extent is a north-up lat/lon box, given by its upper-left and lower-right corners.
type Extent struct {
	ULLat float64 `yaml:"ul_lat"`
	ULLon float64 `yaml:"ul_lon"`
	LRLat float64 `yaml:"lr_lat"`
	LRLon float64 `yaml:"lr_lon"`
}

func (e Extent) String() string {
	return fmt.Sprintf("UL(%.4f,%.4f) LR(%.4f,%.4f)", e.ULLat, e.ULLon, e.LRLat, e.LRLon)
}

func (e Extent) Validate() error {
	for _, v := range []float64{e.ULLat, e.ULLon, e.LRLat, e.LRLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Param: "extent", Reason: "has a non-finite coordinate"}
		}
	}
	if e.ULLat <= e.LRLat || e.ULLon >= e.LRLon {
		return &ConfigurationError{Param: "extent", Reason: fmt.Sprintf("%s is not an upper-left/lower-right box", e)}
	}
	return nil
}

type Config struct {
	Verbosity int `yaml:"verbosity"`

	Sharpen               bool `yaml:"sharpen"`                // pan-sharpen using B8
	AtmosphericCorrection bool `yaml:"atmospheric_correction"` // if false, radiance passes through as reflectance

	Brightness       float64 `yaml:"brightness"`        // gamma is 1/brightness
	MaxReflectance   float64 `yaml:"max_reflectance"`   // reflectance that maps to 255
	ContrastMidpoint float64 `yaml:"contrast_midpoint"` // the 8-bit value the contrast stretch pivots on
	ContrastEnhance  float64 `yaml:"contrast_enhance"`
	SharpnessEnhance float64 `yaml:"sharpness_enhance"`
	ApplySharpness   bool    `yaml:"apply_sharpness"`

	Extent *Extent `yaml:"extent,omitempty"`

	// Debug outputs, all written next to true_color.png
	WriteHDR     bool     `yaml:"write_hdr"`             // composite.hdr, in reflectance/10000
	Tonemappers  []string `yaml:"tonemappers,omitempty"` // tmo-{name}.png, for comparison
	DumpGrids    bool     `yaml:"dump_grids"`            // grid-*.png, one per band per stage
	PublishTo    string   `yaml:"publish_to,omitempty"`  // s3://bucket/prefix
	CleanupAfter bool     `yaml:"cleanup"`
}

func NewConfig() Config {
	return Config{
		Brightness:       DefaultBrightness,
		MaxReflectance:   DefaultMaxReflectance,
		ContrastMidpoint: DefaultContrastMidpoint,
		ContrastEnhance:  DefaultContrastEnhance,
		SharpnessEnhance: DefaultSharpnessEnhance,
	}
}

func NewConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func LoadConfig(filename string) (Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	c, err := NewConfigFromYaml(b)
	if err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", filename)
	}
	return c, nil
}

func (c Config) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

func (c Config) Validate() error {
	positive := func(name string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return &ConfigurationError{Param: name, Reason: fmt.Sprintf("must be > 0, got %v", v)}
		}
		return nil
	}
	nonNegative := func(name string, v float64) error {
		if !(v >= 0) || math.IsInf(v, 0) {
			return &ConfigurationError{Param: name, Reason: fmt.Sprintf("must be >= 0, got %v", v)}
		}
		return nil
	}

	for _, err := range []error{
		positive("brightness", c.Brightness),
		positive("max-reflectance", c.MaxReflectance),
		nonNegative("contrast-enhance", c.ContrastEnhance),
		nonNegative("sharpness-enhance", c.SharpnessEnhance),
	} {
		if err != nil {
			return err
		}
	}

	if !(c.ContrastMidpoint >= 0 && c.ContrastMidpoint <= 255) {
		return &ConfigurationError{Param: "contrast-midpoint", Reason: fmt.Sprintf("must be in [0,255], got %v", c.ContrastMidpoint)}
	}
	if c.Extent != nil {
		if err := c.Extent.Validate(); err != nil {
			return err
		}
	}
	for _, name := range c.Tonemappers {
		if !isTonemapper(name) {
			return &ConfigurationError{Param: "tonemappers", Reason: fmt.Sprintf("no tonemapper %q, pick from %s", name, ListTonemappers())}
		}
	}
	return nil
}

// Mode picks the pipeline variant the flags describe.
func (c Config) Mode() Mode {
	m := Mode{Reflectance: RawReflectancePassthrough, Composite: DirectComposite}
	if c.AtmosphericCorrection {
		m.Reflectance = AtmosphericallyCorrected
	}
	if c.Sharpen {
		m.Composite = PanSharpenedComposite
	}
	return m
}
