// cmd_config.go - Konfiguration aus Umgebung und Flags
// Hauptfunktionen: inferenceConfig, pipelineOptions
package cmd

import (
	"errors"
	"fmt"

	"github.com/7blacky7/seglive/envconfig"
	"github.com/7blacky7/seglive/geometry"
	"github.com/7blacky7/seglive/inference"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/pipeline"
	"github.com/7blacky7/seglive/tensor"
)

// inferenceConfig - Backend-Konfiguration aus SEGLIVE_* Variablen
func inferenceConfig() (inference.Config, error) {
	layout, err := tensor.ParseLayout(envconfig.Layout())
	if err != nil {
		return inference.Config{}, fmt.Errorf("%w: %w", pipeline.ErrConfiguration, err)
	}

	return inference.Config{
		Backend:      envconfig.Backend(),
		ModelPath:    envconfig.Model(),
		InputName:    envconfig.InputName(),
		OutputName:   envconfig.OutputName(),
		CropSize:     int(envconfig.CropSize()),
		Layout:       layout,
		NumThreads:   int(envconfig.NumThreads()),
		CollectStats: envconfig.CollectStats(),
	}, nil
}

// pipelineOptions - Pipeline-Optionen aus SEGLIVE_* Variablen.
// Alle Parse-Fehler werden gemeinsam gemeldet.
func pipelineOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	opts.CropSize = int(envconfig.CropSize())
	opts.Rotation = envconfig.Rotation()
	opts.MaintainAspect = envconfig.MaintainAspect(true)
	opts.Threshold = envconfig.Threshold()
	opts.Normalization = tensor.Uniform(envconfig.ImageMean(), envconfig.ImageStd())
	opts.ConvertWorkers = int(envconfig.ConvertWorkers())
	opts.DumpDir = envconfig.DumpDir()
	opts.DumpEvery = envconfig.DumpEvery()
	opts.KeepCrop = envconfig.KeepCrop()

	var errs []error
	var err error
	if opts.Layout, err = tensor.ParseLayout(envconfig.Layout()); err != nil {
		errs = append(errs, err)
	}
	if opts.Interpolation, err = geometry.ParseInterpolation(envconfig.Interpolation()); err != nil {
		errs = append(errs, err)
	}
	if opts.Origin, err = overlay.ParseCellOrigin(envconfig.CellOrigin()); err != nil {
		errs = append(errs, err)
	}
	if opts.Order, err = overlay.ParseGridOrder(envconfig.GridOrder()); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return opts, fmt.Errorf("%w: %w", pipeline.ErrConfiguration, err)
	}

	return opts, opts.Validate()
}
