package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractSingle unpacks a ZIP that wraps exactly one export file into destDir
// and returns the extracted path. Archives with zero or several files are
// rejected so the caller never guesses which member was the export.
func ExtractSingle(zipPath, destDir string) (string, error) {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer archive.Close() //nolint:errcheck

	var member *zip.File
	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if member != nil {
			return "", eris.Errorf("zip: archive holds more than one file")
		}
		member = f
	}
	if member == nil {
		return "", eris.New("zip: archive holds no files")
	}

	dest := filepath.Join(destDir, filepath.Base(member.Name))
	if !strings.HasPrefix(filepath.Clean(dest), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: refusing path %q", member.Name)
	}

	src, err := member.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open member")
	}
	defer src.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, src); err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}
	return dest, nil
}
