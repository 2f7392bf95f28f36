package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/abworrall/ls8-truecolor/pkg/fileaccess"
	"github.com/abworrall/ls8-truecolor/pkg/logger"
	"github.com/abworrall/ls8-truecolor/pkg/scene"
	"github.com/abworrall/ls8-truecolor/pkg/truecolor"
)

// extentFlag takes "UL-lat UL-lon LR-lat LR-lon", space or comma separated
type extentFlag struct {
	extent *truecolor.Extent
}

func (ef *extentFlag) String() string {
	if ef.extent == nil {
		return ""
	}
	return ef.extent.String()
}

func (ef *extentFlag) Set(s string) error {
	e, err := parseExtent(s)
	if err != nil {
		return err
	}
	ef.extent = &e
	return nil
}

func parseExtent(s string) (truecolor.Extent, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 4 {
		return truecolor.Extent{}, fmt.Errorf("want 4 values (UL-lat UL-lon LR-lat LR-lon), got %d", len(fields))
	}
	var v [4]float64
	for i, f := range fields {
		var err error
		if v[i], err = strconv.ParseFloat(f, 64); err != nil {
			return truecolor.Extent{}, fmt.Errorf("extent value %q: %v", f, err)
		}
	}
	return truecolor.Extent{ULLat: v[0], ULLon: v[1], LRLat: v[2], LRLon: v[3]}, nil
}

var (
	fLevel1     string
	fOutdir     string
	fConfig     string
	fExtent     extentFlag
	fVerbosity  int
	fSharpen    bool
	fAC         bool
	fBrightness float64
	fCleanup    bool
	fSharpness  bool
	fHDR        bool
	fTonemapper string
	fDumpGrids  bool
	fPublish    string
)

func init() {
	flag.StringVar(&fLevel1, "level1", "", "location of the level1 .tar / .tar.gz (required)")
	flag.StringVar(&fOutdir, "outdir", "", "output directory (required)")
	flag.StringVar(&fConfig, "config", "", "yaml config file; flags override it")
	flag.Var(&fExtent, "extent", "subset to 'UL-lat UL-lon LR-lat LR-lon'")
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")

	flag.BoolVar(&fSharpen, "sharpen", false, "pan sharpen with B8")
	flag.BoolVar(&fAC, "ac", false, "atmospheric correction; if false, radiance is used as reflectance")
	flag.Float64Var(&fBrightness, "brightness", truecolor.DefaultBrightness, "overall brightness factor (gamma is 1/brightness)")
	flag.BoolVar(&fCleanup, "cleanup", false, "delete the extracted files afterwards, except true_color.png")
	flag.BoolVar(&fSharpness, "sharpness", false, "apply the sharpness enhancement after contrast")

	flag.BoolVar(&fHDR, "hdr", false, "also write composite.hdr")
	flag.StringVar(&fTonemapper, "tonemapper", "", "also write tmo-{name}.png for these, comma separated: "+truecolor.ListTonemappers())
	flag.BoolVar(&fDumpGrids, "dumpgrids", false, "write a grayscale png for each band at each stage")
	flag.StringVar(&fPublish, "publish", "", "copy true_color.png to s3://bucket/prefix")
}

func buildConfig() (truecolor.Config, error) {
	cfg := truecolor.NewConfig()
	if fConfig != "" {
		var err error
		if cfg, err = truecolor.LoadConfig(fConfig); err != nil {
			return cfg, err
		}
	}

	// Only the flags actually given override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbosity = fVerbosity
		case "sharpen":
			cfg.Sharpen = fSharpen
		case "ac":
			cfg.AtmosphericCorrection = fAC
		case "brightness":
			cfg.Brightness = fBrightness
		case "cleanup":
			cfg.CleanupAfter = fCleanup
		case "sharpness":
			cfg.ApplySharpness = fSharpness
		case "hdr":
			cfg.WriteHDR = fHDR
		case "dumpgrids":
			cfg.DumpGrids = fDumpGrids
		case "publish":
			cfg.PublishTo = fPublish
		case "extent":
			cfg.Extent = fExtent.extent
		case "tonemapper":
			cfg.Tonemappers = strings.Split(fTonemapper, ",")
		}
	})
	return cfg, cfg.Validate()
}

// newLogger takes its level from the merged config, so a config file
// setting verbosity turns on debug output too.
func newLogger(w io.Writer, cfg truecolor.Config) *logger.ZeroLogger {
	return logger.NewZeroLoggerTo(w, logger.LevelForVerbosity(cfg.Verbosity))
}

func main() {
	flag.Parse()

	// Until the config file is read, only -v is known
	log := logger.NewZeroLogger(logger.LevelForVerbosity(fVerbosity))
	log.Infof("ls8-truecolor starting")

	if fLevel1 == "" || fOutdir == "" {
		log.Errorf("both -level1 and -outdir are required")
		flag.Usage()
		os.Exit(2)
	}
	if _, err := os.Stat(fLevel1); err != nil {
		log.Errorf("-level1: %v", err)
		os.Exit(2)
	}

	cfg, err := buildConfig()
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(2)
	}
	log = newLogger(os.Stderr, cfg)
	if cfg.Verbosity > 0 {
		log.Debugf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	o := &truecolor.Orchestrator{
		Config:      cfg,
		Scanner:     scene.TarArchive{},
		Extractor:   scene.NewExtractor(log),
		Calibration: scene.MTLParser{},
		Loader:      scene.TIFFLoader{},
		Store:       &fileaccess.FSAccess{},
		Log:         log,
	}
	if cfg.PublishTo != "" {
		s3Access, err := fileaccess.NewS3AccessFromEnv()
		if err != nil {
			log.Errorf("s3: %v", err)
			os.Exit(1)
		}
		o.Publisher = s3Access
	}

	if _, err := o.Run(context.Background(), fLevel1, fOutdir); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
