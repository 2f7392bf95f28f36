package truecolor

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
	"github.com/abworrall/ls8-truecolor/pkg/logger"
)

// SceneData is everything a render needs, already loaded into memory.
type SceneData struct {
	DN          map[string]Band            // digital numbers, keyed by band id
	Calibration CalibrationTable           // scale/offset per band id
	Geometry    map[string]emath.FloatGrid // angles in degrees, keyed by Geom* name
}

// Result holds the product of each stage, not just the final image.
type Result struct {
	Mode        Mode
	Radiance    map[string]Band
	Reflectance map[string]Band
	Composite   CompositeImage // composited reflectance
	ToneMapped  CompositeImage // floats in [0,255]
	Image       *RenderedImage // after contrast enhancement
}

// StageHook sees every band as it comes out of a stage.
type StageHook func(stage string, b Band)

// A Pipeline runs the radiometric chain for one Mode. It holds no state
// between calls to Render.
type Pipeline struct {
	Config     Config
	Mode       Mode
	Atmosphere AtmosphereModel
	Compositor Compositor
	Log        logger.ILogger
	OnStage    StageHook
}

func WithAtmosphere(m AtmosphereModel) func(*Pipeline) {
	return func(p *Pipeline) { p.Atmosphere = m }
}

// WithPanSharpener replaces the fusion used in pan-sharpened mode; it
// has no effect in direct mode.
func WithPanSharpener(ps PanSharpener) func(*Pipeline) {
	return func(p *Pipeline) {
		if p.Mode.Composite == PanSharpenedComposite {
			p.Compositor = PanSharpenCompositor{Sharpener: ps}
		}
	}
}

func WithLogger(l logger.ILogger) func(*Pipeline) {
	return func(p *Pipeline) { p.Log = l }
}

func WithStageHook(h StageHook) func(*Pipeline) {
	return func(p *Pipeline) { p.OnStage = h }
}

func NewPipeline(cfg Config, opts ...func(*Pipeline)) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		Config:     cfg,
		Mode:       cfg.Mode(),
		Atmosphere: NewRayleighAtmosphere(),
		Log:        &logger.NullLogger{},
	}
	if p.Mode.Composite == PanSharpenedComposite {
		p.Compositor = PanSharpenCompositor{Sharpener: BroveySharpener{}}
	} else {
		p.Compositor = DirectCompositor{}
	}

	for _, applyOpt := range opts {
		applyOpt(p)
	}
	return p, nil
}

func (p *Pipeline) stage(name string, bands ...Band) {
	for _, b := range bands {
		if p.Config.Verbosity > 0 {
			p.Log.Debugf("%-12s %s", name, SummarizeBand(b))
		}
		if p.OnStage != nil {
			p.OnStage(name, b)
		}
	}
}

// Render runs raw bands through to the final 8-bit image.
func (p *Pipeline) Render(ctx context.Context, sd SceneData) (*Result, error) {
	res := &Result{Mode: p.Mode}
	ids := p.Mode.RequiredBands()
	p.Log.Debugf("pipeline mode %s, bands %v", p.Mode, ids)

	// Radiance and geometry don't depend on each other
	var geom GeometryParameters
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		rad, err := NormalizeBands(sd.DN, sd.Calibration, ids)
		res.Radiance = rad
		return err
	})
	if p.Mode.Reflectance == AtmosphericallyCorrected {
		g.Go(func() error {
			var err error
			geom, err = GeometryFromGrids(sd.Geometry)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		p.stage("radiance", res.Radiance[id])
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refl, err := p.reflectance(ctx, res.Radiance, geom, ids)
	if err != nil {
		return nil, err
	}
	res.Reflectance = refl
	for _, id := range ids {
		p.stage("reflectance", refl[id])
	}

	if res.Composite, err = p.Compositor.Composite(refl); err != nil {
		return nil, errors.Wrap(err, "composite")
	}
	p.stage("composite", res.Composite.Channels()...)

	tm, err := NewToneMapper(p.Config.MaxReflectance, p.Config.Brightness)
	if err != nil {
		return nil, err
	}
	if res.ToneMapped, err = tm.Map(res.Composite); err != nil {
		return nil, err
	}
	p.stage("tonemap", res.ToneMapped.Channels()...)

	img, err := Quantize(res.ToneMapped)
	if err != nil {
		return nil, err
	}
	if res.Image, err = NewContrast(img, p.Config.ContrastMidpoint).Enhance(p.Config.ContrastEnhance); err != nil {
		return nil, errors.Wrap(err, "contrast")
	}
	if p.Config.ApplySharpness {
		if res.Image, err = NewSharpness(res.Image).Enhance(p.Config.SharpnessEnhance); err != nil {
			return nil, errors.Wrap(err, "sharpness")
		}
	}
	p.Log.Debugf("rendered %s", res.Image)

	return res, ctx.Err()
}

func (p *Pipeline) reflectance(ctx context.Context, rad map[string]Band, geom GeometryParameters, ids []string) (map[string]Band, error) {
	out := make(map[string]Band, len(ids))
	if p.Mode.Reflectance == RawReflectancePassthrough {
		for _, id := range ids {
			out[id] = PassThroughReflectance(rad[id])
		}
		return out, nil
	}

	ac := NewAtmosphericCorrector(p.Atmosphere)
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := ac.Correct(rad[id], geom)
			if err != nil {
				return errors.Wrapf(err, "correct %s", id)
			}
			mu.Lock()
			out[id] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Result) String() string {
	return fmt.Sprintf("result[%s, %s]", r.Mode, r.Image)
}
