package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	imagedehazer "github.com/menta2k/image-dehazer"
	"github.com/menta2k/image-dehazer/internal/config"
	"github.com/menta2k/image-dehazer/internal/utils"
	"github.com/menta2k/image-dehazer/pkg/analyzer"
	"github.com/menta2k/image-dehazer/pkg/processing"
	"github.com/menta2k/image-dehazer/pkg/report"
)

// run dehazes every input and writes the results under the output
// directory. A failing input is logged and the remaining ones still run.
func run(ctx context.Context, logger *logrus.Logger, cfg *config.Config, args []string) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no images found in %s", strings.Join(args, ", "))
	}

	if err := os.MkdirAll(cfg.Output.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	dehazer := imagedehazer.NewWithConfig(cfg.Params(), analyzer.New(), logger)
	processor := processing.NewProcessor(logger)

	logger.WithFields(logrus.Fields{
		"inputs": len(inputs),
		"radius": cfg.Dehaze.Radius,
		"eps":    cfg.Dehaze.Eps,
		"weight": cfg.Dehaze.Weight,
		"max_v1": cfg.Dehaze.MaxV1,
		"gamma":  cfg.Dehaze.Gamma,
	}).Info("Starting dehazing")

	failed := 0
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := processInput(ctx, logger, dehazer, processor, cfg, input); err != nil {
			logger.WithError(err).WithField("input", input).Error("Failed to dehaze image")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(inputs))
	}
	logger.WithField("images", len(inputs)).Info("Dehazing complete")
	return nil
}

func processInput(ctx context.Context, logger *logrus.Logger, dehazer *imagedehazer.Dehazer,
	processor *processing.Processor, cfg *config.Config, input string) error {
	img, err := dehazer.LoadImage(input)
	if err != nil {
		return err
	}

	result, err := dehazer.DehazeWithResult(ctx, img)
	if err != nil {
		return err
	}

	name := inputName(input)
	out := cfg.Output
	outputPath := utils.OutputPath(name, out.OutputDir, out.Prefix, out.Suffix, out.Format)
	format := utils.Format(outputPath)
	if err := processor.SaveImage(result.Image, outputPath, format, out.Quality, out.Lossless); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputPath, err)
	}

	fields := logrus.Fields{
		"input":     input,
		"output":    outputPath,
		"size":      fmt.Sprintf("%dx%d", result.Info.Width, result.Info.Height),
		"light":     fmt.Sprintf("%.4f", result.Light),
		"threshold": fmt.Sprintf("%.4f", result.Threshold),
		"elapsed":   result.Elapsed.String(),
	}
	if info, err := os.Stat(outputPath); err == nil {
		fields["bytes"] = utils.HumanSize(info.Size())
	}
	logger.WithFields(fields).Info("Dehazed image")

	if out.Compare {
		dst := utils.OutputPath(name, out.OutputDir, out.Prefix, out.Suffix+"_compare", format)
		if err := processor.SaveImage(dehazer.Compare(img, result.Image), dst, format, out.Quality, out.Lossless); err != nil {
			return fmt.Errorf("failed to save comparison: %w", err)
		}
		logger.WithField("path", dst).Debug("Saved comparison")
	}

	if cfg.Debug.Transmission {
		dst := utils.OutputPath(name, out.OutputDir, out.Prefix, "_transmission", "png")
		if err := processor.SaveGrayMap(result.Estimate.Transmission, dst); err != nil {
			return err
		}
		logger.WithField("path", dst).Debug("Saved haze density map")
	}

	if cfg.Debug.Histogram {
		dst := utils.OutputPath(name, out.OutputDir, out.Prefix, "_histogram", "png")
		if err := writeHistogram(result, name, dst); err != nil {
			return fmt.Errorf("failed to save histogram: %w", err)
		}
		logger.WithField("path", dst).Debug("Saved dark channel histogram")
	}

	return nil
}

func writeHistogram(result imagedehazer.Result, title, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := report.Histogram(result.Estimate, title, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// expandInputs resolves directories to the images they contain. URLs and
// plain files pass through unchanged; duplicates are dropped.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		switch {
		case processing.IsURL(arg):
			inputs = append(inputs, arg)
		case utils.IsDir(arg):
			files, err := utils.ListImages(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", arg, err)
			}
			inputs = append(inputs, files...)
		case utils.IsFile(arg):
			inputs = append(inputs, arg)
		default:
			return nil, fmt.Errorf("input not found: %s", arg)
		}
	}
	return lo.Uniq(inputs), nil
}

// inputName returns the file name an input is saved under. URLs use the
// last element of their path.
func inputName(input string) string {
	if !processing.IsURL(input) {
		return filepath.Base(input)
	}
	u, err := url.Parse(input)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "download"
	}
	return path.Base(u.Path)
}
