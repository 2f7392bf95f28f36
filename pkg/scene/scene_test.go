package scene

import (
	"archive/tar"
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/image/tiff"
)

const testGranule = "LC08_L1TP_093084_20200101_20200113_01_T1"

const testMTL = `GROUP = L1_METADATA_FILE
  GROUP = METADATA_FILE_INFO
    ORIGIN = "Image courtesy of the U.S. Geological Survey"
    LANDSAT_PRODUCT_ID = "LC08_L1TP_093084_20200101_20200113_01_T1"
  END_GROUP = METADATA_FILE_INFO
  GROUP = PRODUCT_METADATA
    CORNER_UL_LAT_PRODUCT = -30.00000
    CORNER_UL_LON_PRODUCT = 150.00000
    CORNER_LR_LAT_PRODUCT = -31.00000
    CORNER_LR_LON_PRODUCT = 151.00000
  END_GROUP = PRODUCT_METADATA
  GROUP = IMAGE_ATTRIBUTES
    SUN_AZIMUTH = 75.25
    SUN_ELEVATION = 60.50
  END_GROUP = IMAGE_ATTRIBUTES
  GROUP = RADIOMETRIC_RESCALING
    RADIANCE_MULT_BAND_2 = 1.2519E-02
    RADIANCE_MULT_BAND_3 = 1.1536E-02
    RADIANCE_MULT_BAND_4 = 9.7277E-03
    RADIANCE_MULT_BAND_8 = 1.1273E-02
    RADIANCE_ADD_BAND_2 = -62.59600
    RADIANCE_ADD_BAND_3 = -57.68200
    RADIANCE_ADD_BAND_4 = -48.63800
    RADIANCE_ADD_BAND_8 = -56.36500
  END_GROUP = RADIOMETRIC_RESCALING
END_GROUP = L1_METADATA_FILE
END
`

// grayTIFF is a 16-bit TIFF whose pixel values encode their position
func grayTIFF(t *testing.T, w, h int, base uint16) []byte {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: base + uint16(100*y+x)})
		}
	}
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type tarEntry struct {
	name string
	body []byte
}

func writeTar(t *testing.T, filename string, gzipped bool, entries []tarEntry) {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{Name: "somedir/", Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(e.body); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	if gzipped {
		var gzBuf bytes.Buffer
		gw := gzip.NewWriter(&gzBuf)
		if _, err := gw.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := gw.Close(); err != nil {
			t.Fatal(err)
		}
		data = gzBuf.Bytes()
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		t.Fatal(err)
	}
}

// sceneEntries is a tiny level-1 product: 20x10 multispectral, 40x20 pan
func sceneEntries(t *testing.T, granule string) []tarEntry {
	return []tarEntry{
		{granule + "_MTL.txt", []byte(testMTL)},
		{granule + "_B2.TIF", grayTIFF(t, 20, 10, 9000)},
		{granule + "_B3.TIF", grayTIFF(t, 20, 10, 8500)},
		{granule + "_B4.TIF", grayTIFF(t, 20, 10, 8000)},
		{granule + "_B8.TIF", grayTIFF(t, 40, 20, 8700)},
		{"somedir/README.GTF", []byte("readme")},
	}
}

func writeScene(t *testing.T, gzipped bool) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), testGranule+".tar")
	if gzipped {
		filename += ".gz"
	}
	writeTar(t, filename, gzipped, sceneEntries(t, testGranule))
	return filename
}
