// Package utils names output files and finds input images for the CLI
package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// imageFormats are the extensions the loader can decode
var imageFormats = []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp"}

// unsafeChars are replaced in output file names
var unsafeChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// Format returns the lower-case extension of name without the dot
func Format(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// OutputPath names a result after its input as
// dir/<prefix><stem><suffix>.<format>. An empty format keeps the input's
// format, or falls back to jpg when the input has none we can write.
func OutputPath(input, dir, prefix, suffix, format string) string {
	base := filepath.Base(input)
	stem := strings.Trim(unsafeChars.Replace(strings.TrimSuffix(base, filepath.Ext(base))), " .")

	if format == "" {
		in := Format(input)
		format = lo.Ternary(lo.Contains(imageFormats, in), in, "jpg")
	}
	return filepath.Join(dir, prefix+stem+suffix+"."+format)
}

// ListImages walks root and returns every regular file with an image
// extension, in lexical order.
func ListImages(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && lo.Contains(imageFormats, Format(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// IsFile reports whether path exists and is not a directory
func IsFile(path string) bool {
	mode, ok := statMode(path)
	return ok && !mode.IsDir()
}

// IsDir reports whether path exists and is a directory
func IsDir(path string) bool {
	mode, ok := statMode(path)
	return ok && mode.IsDir()
}

func statMode(path string) (fs.FileMode, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.Mode(), true
}

// sizeUnits are the binary prefixes above bytes
const sizeUnits = "KMGTPE"

// HumanSize formats a byte count with binary units, e.g. "1.5 KB"
func HumanSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v, u := float64(n)/1024, 0
	for v >= 1024 && u < len(sizeUnits)-1 {
		v /= 1024
		u++
	}
	return fmt.Sprintf("%.1f %cB", v, sizeUnits[u])
}
