package truecolor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abworrall/ls8-truecolor/pkg/logger"
)

func TestPipelineDeterminism(t *testing.T) {
	for _, flags := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
		cfg := NewConfig()
		cfg.AtmosphericCorrection = flags[0]
		cfg.Sharpen = flags[1]
		cfg.ApplySharpness = true

		var outputs [][]byte
		for run := 0; run < 2; run++ {
			p, err := NewPipeline(cfg)
			if err != nil {
				t.Fatal(err)
			}
			res, err := p.Render(context.Background(), syntheticScene(8, 6))
			if err != nil {
				t.Fatalf("%s: %v", cfg.Mode(), err)
			}
			b, err := res.Image.PNGBytes()
			if err != nil {
				t.Fatal(err)
			}
			outputs = append(outputs, b)
		}

		if !bytes.Equal(outputs[0], outputs[1]) {
			t.Errorf("%s: two runs gave different PNGs", cfg.Mode())
		}
	}
}

func TestPipelineStages(t *testing.T) {
	cfg := NewConfig()
	cfg.AtmosphericCorrection = true
	cfg.Sharpen = true

	var stages []string
	p, err := NewPipeline(cfg, WithStageHook(func(stage string, b Band) {
		stages = append(stages, stage+":"+b.ID)
	}))
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.Render(context.Background(), syntheticScene(8, 6))
	if err != nil {
		t.Fatal(err)
	}

	if res.Mode != (Mode{AtmosphericallyCorrected, PanSharpenedComposite}) {
		t.Errorf("mode %s", res.Mode)
	}
	if len(res.Reflectance) != 4 || res.Reflectance[BandPan].Dx() != 16 {
		t.Errorf("reflectance: %v", res.Reflectance)
	}
	for id, b := range res.Reflectance {
		if b.Unit != UnitReflectance {
			t.Errorf("%s: unit %s", id, b.Unit)
		}
	}
	if res.Composite.Red.Unit != UnitCompositedSharpened {
		t.Errorf("composite unit %s", res.Composite.Red.Unit)
	}
	if b := res.Image.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("sharpened image should be on the pan grid, got %v", b)
	}

	if len(stages) != 4+4+3+3 {
		t.Errorf("stages: %v", stages)
	}
	if stages[0] != "radiance:B2" || stages[len(stages)-1] != "tonemap:B2" {
		t.Errorf("stage order: %v", stages)
	}
}

func TestPipelineDirectPassthrough(t *testing.T) {
	sd := syntheticScene(4, 4)
	delete(sd.DN, BandPan)
	sd.Geometry = nil // not needed without correction

	p, _ := NewPipeline(NewConfig())
	res, err := p.Render(context.Background(), sd)
	if err != nil {
		t.Fatal(err)
	}

	// Passthrough means reflectance is the radiance, unchanged
	for _, id := range VisibleBands {
		if res.Reflectance[id].Get(2, 3) != res.Radiance[id].Get(2, 3) {
			t.Errorf("%s: passthrough changed values", id)
		}
	}
	if b := res.Image.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("got bounds %v", b)
	}
}

// Huge but finite radiance, with per-stage stats on
func TestPipelineWideRangeStats(t *testing.T) {
	sd := syntheticScene(4, 4)
	sd.Calibration[BandBlue] = ScaleOffset{Scale: 1.5e16}

	var buf bytes.Buffer
	cfg := NewConfig()
	cfg.Verbosity = 1
	p, err := NewPipeline(cfg, WithLogger(logger.NewZeroLoggerTo(&buf, logger.LogDebug)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Render(context.Background(), sd); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "radiance") {
		t.Errorf("no stage stats logged:\n%s", buf.String())
	}
}

func TestPipelineErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.Brightness = 0
	_, err := NewPipeline(cfg)
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("brightness 0: got %v", err)
	}

	sd := syntheticScene(4, 4)
	delete(sd.Calibration, BandGreen)
	p, _ := NewPipeline(NewConfig())
	_, err = p.Render(context.Background(), sd)
	var mce *MissingCalibrationError
	if !errors.As(err, &mce) || mce.BandID != BandGreen {
		t.Errorf("missing B3 calibration: got %v", err)
	}

	// A zero cosine for the view zenith makes the upward transmittance zero
	cfg = NewConfig()
	cfg.AtmosphericCorrection = true
	sd = syntheticScene(4, 4)
	sd.Geometry[GeomSatelliteView] = sd.Geometry[GeomSatelliteView].Map(func(float64) float64 { return 90 })
	p, _ = NewPipeline(cfg)
	_, err = p.Render(context.Background(), sd)
	var nde *NumericDegeneracyError
	if !errors.As(err, &nde) {
		t.Errorf("degenerate geometry: got %v", err)
	}
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := NewPipeline(NewConfig())
	if _, err := p.Render(ctx, syntheticScene(4, 4)); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}
