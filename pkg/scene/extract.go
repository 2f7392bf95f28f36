package scene

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/abworrall/ls8-truecolor/pkg/fileaccess"
	"github.com/abworrall/ls8-truecolor/pkg/logger"
	"github.com/abworrall/ls8-truecolor/pkg/truecolor"
)

// Extractor unpacks a level-1 archive and derives the geometry rasters
// for its granule.
type Extractor struct {
	Archive TarArchive
	Store   fileaccess.FileAccess // where the geometry rasters get written
	Log     logger.ILogger
}

func NewExtractor(log logger.ILogger) Extractor {
	return Extractor{Store: &fileaccess.FSAccess{}, Log: log}
}

func (e Extractor) Extract(archive, granule, destDir string) error {
	files, err := e.Archive.Unpack(archive, destDir)
	if err != nil {
		return err
	}
	e.Log.Debugf("unpacked %d files from %s", len(files), filepath.Base(archive))

	mtlFile, err := findMTL(destDir, granule)
	if err != nil {
		return err
	}
	mtl, err := LoadMTL(mtlFile)
	if err != nil {
		return err
	}

	size, err := tiffSize(filepath.Join(destDir, BandFilename(granule, truecolor.BandRed)))
	if err != nil {
		return errors.Wrap(err, "sizing geometry")
	}
	grids, err := SceneGeometry(mtl, size.X, size.Y)
	if err != nil {
		return err
	}
	e.Log.Debugf("writing %dx%d geometry rasters", size.X, size.Y)

	return WriteGeometry(e.Store, destDir, granule, grids)
}
