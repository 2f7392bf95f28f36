package truecolor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"path"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/pkg/errors"

	"github.com/abworrall/ls8-truecolor/pkg/emath"
	"github.com/abworrall/ls8-truecolor/pkg/fileaccess"
	"github.com/abworrall/ls8-truecolor/pkg/logger"
)

const (
	ExtractedDir   = "extracted"
	OutputFilename = "true_color.png"
	HDRFilename    = "composite.hdr"
)

// CacheMarker is the extracted file whose presence means extraction of
// the granule has already completed.
func CacheMarker(granule string) string {
	return fmt.Sprintf("%s_%s.TIF", granule, GeomSolarZenith)
}

// A GranuleScanner lists the granule ids inside a level-1 archive,
// without unpacking it.
type GranuleScanner interface {
	ListGranules(archive string) ([]string, error)
}

// An Extractor unpacks the granule's bands into destDir, and writes the
// geometry rasters alongside, cache marker last.
type Extractor interface {
	Extract(archive, granule, destDir string) error
}

type ScaleOffsetParser interface {
	ParseScaleOffset(dir, granule string) (CalibrationTable, error)
}

// A Raster is a loaded array plus where it came from.
type Raster struct {
	Grid   emath.FloatGrid
	Path   string
	Window image.Rectangle // the pixel window read from the source file
}

// A DataLoader loads the bands (and B8, if wantPan) as digital
// numbers, and the geometry rasters in degrees, keyed by band id or
// Geom* name. A non-nil extent crops everything to that box.
type DataLoader interface {
	Load(dir, granule string, extent *Extent, wantPan bool) (map[string]Raster, error)
}

// Orchestrator runs one level-1 archive all the way to true_color.png.
//
// The extraction cache is keyed on the granule id and a fixed filename,
// not content. Two concurrent runs sharing an outdir race between the
// existence check and extraction; give each run its own outdir.
type Orchestrator struct {
	Config      Config
	Scanner     GranuleScanner
	Extractor   Extractor
	Calibration ScaleOffsetParser
	Loader      DataLoader
	Store       fileaccess.FileAccess // rooted at the outdir
	Publisher   fileaccess.FileAccess // used if Config.PublishTo is set
	Log         logger.ILogger

	PipelineOpts []func(*Pipeline)
}

type RunResult struct {
	Granule     string
	CacheHit    bool
	OutputPath  string // relative to the outdir
	PublishedTo string
	*Result
}

func (o *Orchestrator) log() logger.ILogger {
	if o.Log == nil {
		return &logger.NullLogger{}
	}
	return o.Log
}

// Run aborts on the first error. true_color.png is written last, so it
// only appears once every other step has succeeded; the extraction and
// any debug extras written before a failure stay behind.
func (o *Orchestrator) Run(ctx context.Context, level1, outdir string) (*RunResult, error) {
	log := o.log()

	if err := o.Config.Validate(); err != nil {
		return nil, err
	}
	if o.Config.PublishTo != "" {
		if o.Publisher == nil {
			return nil, &ConfigurationError{Param: "publish", Reason: "no publisher configured"}
		}
		if _, _, err := fileaccess.SplitS3Url(o.Config.PublishTo); err != nil {
			return nil, &ConfigurationError{Param: "publish", Reason: err.Error()}
		}
	}

	granules, err := o.Scanner.ListGranules(level1)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", level1)
	}
	if len(granules) != 1 {
		return nil, &UnsupportedDatasetError{Granules: granules}
	}
	rr := &RunResult{Granule: granules[0]}
	log.Infof("granule %s", rr.Granule)

	extractDir := filepath.Join(outdir, ExtractedDir)
	marker := path.Join(ExtractedDir, CacheMarker(rr.Granule))
	if rr.CacheHit, err = o.Store.ObjectExists(outdir, marker); err != nil {
		return nil, errors.Wrap(err, "extraction cache check")
	}
	if rr.CacheHit {
		log.Infof("found %s, skipping extraction", marker)
	} else {
		log.Infof("extracting %s into %s", level1, extractDir)
		if err := o.Extractor.Extract(level1, rr.Granule, extractDir); err != nil {
			return nil, errors.Wrap(err, "extract")
		}
	}

	cal, err := o.Calibration.ParseScaleOffset(extractDir, rr.Granule)
	if err != nil {
		return nil, errors.Wrap(err, "scale/offset")
	}

	opts := append([]func(*Pipeline){WithLogger(log)}, o.PipelineOpts...)
	if o.Config.DumpGrids {
		opts = append(opts, WithStageHook(o.dumpGrid(outdir)))
	}
	p, err := NewPipeline(o.Config, opts...)
	if err != nil {
		return nil, err
	}

	rasters, err := o.Loader.Load(extractDir, rr.Granule, o.Config.Extent, p.Mode.WantPan())
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	sd := SceneData{DN: map[string]Band{}, Calibration: cal, Geometry: map[string]emath.FloatGrid{}}
	for name, r := range rasters {
		log.Debugf("loaded %-18s %s %v", name, r.Path, r.Window)
		if strings.HasPrefix(name, "B") {
			sd.DN[name] = NewBand(name, UnitDigitalNumber, r.Grid)
		} else {
			sd.Geometry[name] = r.Grid
		}
	}

	if rr.Result, err = p.Render(ctx, sd); err != nil {
		return nil, err
	}

	// Encode fully in memory first, and write it only once everything
	// else has succeeded, so a failed run leaves no true_color.png
	pngBytes, err := rr.Image.PNGBytes()
	if err != nil {
		return nil, errors.Wrap(err, "encode png")
	}

	if err := o.writeExtras(outdir, rr.Result); err != nil {
		return nil, err
	}

	if o.Config.PublishTo != "" {
		if rr.PublishedTo, err = o.publish(pngBytes); err != nil {
			return nil, err
		}
		log.Infof("published %s", rr.PublishedTo)
	}

	if o.Config.CleanupAfter {
		if err := o.cleanup(outdir); err != nil {
			return nil, err
		}
	}

	rr.OutputPath = path.Join(ExtractedDir, OutputFilename)
	if err := o.Store.WriteObject(outdir, rr.OutputPath, pngBytes); err != nil {
		return nil, errors.Wrapf(err, "write %s", rr.OutputPath)
	}
	log.Infof("wrote %s (%s)", filepath.Join(outdir, rr.OutputPath), rr.Image)

	return rr, nil
}

func (o *Orchestrator) writeExtras(outdir string, res *Result) error {
	if o.Config.WriteHDR {
		var buf bytes.Buffer
		if err := rgbe.Encode(&buf, res.Composite); err != nil {
			return errors.Wrap(err, "encode rgbe")
		}
		if err := o.Store.WriteObject(outdir, HDRFilename, buf.Bytes()); err != nil {
			return errors.Wrapf(err, "write %s", HDRFilename)
		}
		o.log().Infof("wrote %s", HDRFilename)
	}

	for _, name := range o.Config.Tonemappers {
		img, err := ComparisonTonemap(res.Composite, name)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return errors.Wrapf(err, "encode tmo-%s", name)
		}
		filename := fmt.Sprintf("tmo-%s.png", name)
		if err := o.Store.WriteObject(outdir, filename, buf.Bytes()); err != nil {
			return errors.Wrapf(err, "write %s", filename)
		}
		o.log().Infof("wrote %s", filename)
	}
	return nil
}

func (o *Orchestrator) dumpGrid(outdir string) StageHook {
	return func(stage string, b Band) {
		filename := fmt.Sprintf("grid-%s-%s.png", stage, b.ID)
		var buf bytes.Buffer
		if err := png.Encode(&buf, b.ToImg(fmt.Sprintf("%s %s", stage, b.ID))); err != nil {
			o.log().Errorf("dump %s: %v", filename, err)
			return
		}
		if err := o.Store.WriteObject(outdir, filename, buf.Bytes()); err != nil {
			o.log().Errorf("dump %s: %v", filename, err)
		}
	}
}

func (o *Orchestrator) publish(pngBytes []byte) (string, error) {
	bucket, key, err := fileaccess.SplitS3Url(o.Config.PublishTo)
	if err != nil {
		return "", err
	}
	key = path.Join(key, OutputFilename)
	if err := o.Publisher.WriteObject(bucket, key, pngBytes); err != nil {
		return "", errors.Wrapf(err, "publish s3://%s/%s", bucket, key)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

// cleanup removes the extracted intermediates, keeping true_color.png.
// The next run on this outdir will extract again.
func (o *Orchestrator) cleanup(outdir string) error {
	files, err := o.Store.ListObjects(outdir, ExtractedDir+"/")
	if err != nil {
		return errors.Wrap(err, "cleanup list")
	}
	keep := path.Join(ExtractedDir, OutputFilename)
	n := 0
	for _, f := range files {
		if f == keep {
			continue
		}
		if err := o.Store.DeleteObject(outdir, f); err != nil && !o.Store.IsNotFoundError(err) {
			return errors.Wrapf(err, "cleanup %s", f)
		}
		n++
	}
	o.log().Infof("cleanup removed %d extracted files", n)
	return nil
}
