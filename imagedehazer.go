// Package imagedehazer removes atmospheric haze from photographs.
//
// The restoration follows the dark channel prior: haze-free outdoor
// patches almost always have one colour channel close to zero, so a
// bright local minimum reveals haze. The pipeline estimates a haze
// density map and a global atmospheric light from that minimum and
// inverts the haze formation model to recover the scene.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		imagedehazer "github.com/menta2k/image-dehazer"
//	)
//
//	func main() {
//		dehazer := imagedehazer.New()
//
//		img, err := dehazer.LoadImage("hazy.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := dehazer.Dehaze(context.Background(), img)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := dehazer.SaveImage(result, "clear.png"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
//  1. Filter (pkg/filter): box, minimum and guided filters over float maps
//  2. Atmosphere (pkg/atmosphere): dark channel, haze density and atmospheric light
//  3. Dehaze (pkg/dehaze): model inversion, clipping and gamma correction
//  4. Processing (pkg/processing): decoding, encoding and comparison output
//
// The numeric packages work on pkg/raster buffers normalized to [0,1]
// and never modify their inputs.
package imagedehazer

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-dehazer/pkg/analyzer"
	"github.com/menta2k/image-dehazer/pkg/atmosphere"
	"github.com/menta2k/image-dehazer/pkg/dehaze"
	"github.com/menta2k/image-dehazer/pkg/processing"
	"github.com/menta2k/image-dehazer/pkg/raster"
	"github.com/menta2k/image-dehazer/pkg/types"
)

// Version of the image dehazer library
const Version = "1.0.0"

// DefaultQuality is the JPEG/WebP quality used by SaveImage
const DefaultQuality = 90

// Dehazer provides a high-level interface over the dehazing pipeline
type Dehazer struct {
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	params    types.Params
	logger    *logrus.Logger
}

// New creates a new Dehazer with default parameters and no logging
func New() *Dehazer {
	return NewWithConfig(types.DefaultParams(), analyzer.New(), nil)
}

// NewWithConfig creates a new Dehazer with custom parameters. A nil
// analyzer uses the defaults; a nil logger discards output.
func NewWithConfig(params types.Params, imgAnalyzer *analyzer.ImageAnalyzer, logger *logrus.Logger) *Dehazer {
	if imgAnalyzer == nil {
		imgAnalyzer = analyzer.New()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Dehazer{
		analyzer:  imgAnalyzer,
		processor: processing.NewProcessor(logger),
		params:    params,
		logger:    logger,
	}
}

// Params returns the dehazing parameters in use
func (d *Dehazer) Params() types.Params {
	return d.params
}

// Result contains the restored image and the estimates behind it
type Result struct {
	Image     image.Image        `json:"-"`
	Info      analyzer.ImageInfo `json:"info"`
	Light     float64            `json:"atmospheric_light"`
	Cutoff    int                `json:"cutoff_bin"`
	Threshold float64            `json:"threshold"`
	Estimate  atmosphere.Result  `json:"-"`
	Elapsed   time.Duration      `json:"elapsed"`
}

// LoadImage loads an image from a file path or an http(s) URL
func (d *Dehazer) LoadImage(source string) (image.Image, error) {
	return d.processor.LoadImageSmart(source)
}

// SaveImage saves an image to file, picking the encoder from the extension
func (d *Dehazer) SaveImage(img image.Image, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !d.analyzer.IsFormatSupported(format) {
		return fmt.Errorf("unsupported output format %q", format)
	}
	return d.processor.SaveImage(img, path, format, DefaultQuality, false)
}

// ValidateImage checks if an image meets requirements
func (d *Dehazer) ValidateImage(img image.Image) error {
	return d.analyzer.ValidateImage(img)
}

// Dehaze returns the haze-free version of img
func (d *Dehazer) Dehaze(ctx context.Context, img image.Image) (image.Image, error) {
	result, err := d.DehazeWithResult(ctx, img)
	if err != nil {
		return nil, err
	}
	return result.Image, nil
}

// DehazeWithResult dehazes img and reports the intermediate estimates
func (d *Dehazer) DehazeWithResult(ctx context.Context, img image.Image) (Result, error) {
	if err := d.ValidateImage(img); err != nil {
		return Result{}, fmt.Errorf("image validation failed: %w", err)
	}

	start := time.Now()
	info := d.analyzer.GetImageInfo(img)
	restored, est, err := dehaze.RemoveWithResult(ctx, raster.FromImage(img), d.params)
	if err != nil {
		return Result{}, fmt.Errorf("dehazing failed: %w", err)
	}
	elapsed := time.Since(start)

	d.logger.WithFields(logrus.Fields{
		"width":     info.Width,
		"height":    info.Height,
		"light":     est.Light,
		"cutoff":    est.Cutoff,
		"threshold": est.Threshold,
		"elapsed":   elapsed,
	}).Debug("dehazed image")

	return Result{
		Image:     restored.ToNRGBA(),
		Info:      info,
		Light:     est.Light,
		Cutoff:    est.Cutoff,
		Threshold: est.Threshold,
		Estimate:  est,
		Elapsed:   elapsed,
	}, nil
}

// Compare places the original and the restored image side by side
func (d *Dehazer) Compare(original, restored image.Image) image.Image {
	return d.processor.SideBySide(original, restored)
}

// Transmission renders the haze density map of a result as grayscale
func (d *Dehazer) Transmission(result Result) image.Image {
	return result.Estimate.Transmission.ToGray16()
}

// ProcessImageFile is a convenience function that loads, dehazes and
// saves an image. It returns the path written.
func (d *Dehazer) ProcessImageFile(ctx context.Context, inputPath, outputDir string) (string, error) {
	img, err := d.LoadImage(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	restored, err := d.Dehaze(ctx, img)
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(outputDir, getBaseName(inputPath)+"_dehazed.png")
	if err := d.SaveImage(restored, outputPath); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

// getBaseName extracts the base filename without extension
func getBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
