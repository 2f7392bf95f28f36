package scene

import (
	"archive/tar"
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// MTLSuffix ends the name of a granule's metadata file; whatever comes
// before it is the granule id.
const MTLSuffix = "_MTL.txt"

// TarArchive reads Landsat level-1 archives, as plain .tar or .tar.gz
type TarArchive struct{}

// walk calls fn for each regular file in the archive, with the reader
// positioned at the file's content.
func (TarArchive) walk(archive string, fn func(hdr *tar.Header, r io.Reader) error) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if magic, err := r.(*bufio.Reader).Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "gunzip %s", archive)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", archive)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(hdr, tr); err != nil {
			return err
		}
	}
}

// ListGranules returns the granule ids in the archive, one per MTL
// file, sorted. Nothing is extracted.
func (ta TarArchive) ListGranules(archive string) ([]string, error) {
	granules := []string{}
	err := ta.walk(archive, func(hdr *tar.Header, _ io.Reader) error {
		name := path.Base(hdr.Name)
		if strings.HasSuffix(name, MTLSuffix) {
			granules = append(granules, strings.TrimSuffix(name, MTLSuffix))
		}
		return nil
	})
	sort.Strings(granules)
	return granules, err
}

// Unpack writes every regular file in the archive into destDir, flat,
// by base name. It returns the names written.
func (ta TarArchive) Unpack(archive, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}

	written := []string{}
	err := ta.walk(archive, func(hdr *tar.Header, r io.Reader) error {
		name := path.Base(hdr.Name)
		if name == "." || name == "/" || name == ".." {
			return nil
		}
		out, err := os.Create(filepath.Join(destDir, name))
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, r); err != nil {
			out.Close()
			return errors.Wrapf(err, "extract %s", name)
		}
		written = append(written, name)
		return out.Close()
	})
	return written, err
}
