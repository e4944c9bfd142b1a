package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/chazu/halfspace/pkg/engine"
	"github.com/chazu/halfspace/pkg/model"
	"github.com/chazu/halfspace/pkg/object"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/scott-cotton/cli"
	"go.uber.org/zap"
)

// ErrInvalidModel is returned by commands that refuse to query a model with
// validation errors.
var ErrInvalidModel = errors.New("invalid model")

func csgqMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	if err := cfg.setup(); err != nil {
		return err
	}
	err = sub.Run(cc, args[1:])
	_ = cfg.Log.Sync()
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

// loadModel evaluates the model file at path with the configured engine.
// Evaluation errors are reported one per line, prefixed with path.
func loadModel(cfg *MainConfig, path string) (*model.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine(
		engine.WithLogger(cfg.Log.Named("engine")),
		engine.WithTimeout(cfg.Conf.Eval.Duration()),
		engine.WithWorld(cfg.Conf.World.Box()),
	)
	m, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = fmt.Errorf("%s: %s", path, e.Error())
		}
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// loadValidModel is loadModel followed by the blocking validation tier.
func loadValidModel(cfg *MainConfig, path string) (*model.Model, error) {
	m, err := loadModel(cfg, path)
	if err != nil {
		return nil, err
	}
	if verrs := model.Validate(m); len(verrs) > 0 {
		return nil, fmt.Errorf("%s: %w: %w (run check for details)", path, ErrInvalidModel, verrs[0])
	}
	return m, nil
}

func parsePoint(args []string) (v3.Vec, error) {
	if len(args) != 3 {
		return v3.Vec{}, fmt.Errorf("%w: a point needs 3 coordinates, got %d", cli.ErrUsage, len(args))
	}
	var c [3]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("%w: coordinate %q: %w", cli.ErrUsage, a, err)
		}
		c[i] = f
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// selectObjects returns every object of m, or just the named one.
func selectObjects(m *model.Model, name string) ([]*object.Object, error) {
	if name == "" {
		return m.Objects(), nil
	}
	o := m.Object(name)
	if o == nil {
		return nil, fmt.Errorf("object %q: %w", name, model.ErrNotFound)
	}
	return []*object.Object{o}, nil
}

func show(cfg *ShowConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Show.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: show requires one argument, a model file", cli.ErrUsage)
	}
	m, err := loadModel(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	if cfg.Simplify {
		if err := simplifyAll(cfg.Log, m); err != nil {
			return err
		}
	}
	renderModel(cc.Out, cfg.palette(cc.Out), m)
	return nil
}

func simplifyAll(log *zap.Logger, m *model.Model) error {
	for _, o := range m.Objects() {
		if !o.HasRule() {
			continue
		}
		before, after, err := o.Simplify()
		if err != nil {
			return err
		}
		if after < before {
			log.Info("simplified", zap.String("object", o.Name()), zap.Int("removed", before-after))
		}
	}
	return nil
}

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: check requires one argument, a model file", cli.ErrUsage)
	}
	m, err := loadModel(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	res := model.ValidateAll(m)
	renderValidation(cc.Out, cfg.palette(cc.Out), res)
	return checkResult(res, cfg.Strict)
}

func checkResult(res model.ValidationResult, strict bool) error {
	switch {
	case !res.OK():
		return fmt.Errorf("%w: %d error(s)", ErrInvalidModel, len(res.Errors))
	case strict && len(res.Warnings) > 0:
		return fmt.Errorf("%w: %d warning(s) with -strict", ErrInvalidModel, len(res.Warnings))
	}
	return nil
}

func classify(cfg *ClassifyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Classify.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 4 {
		return fmt.Errorf("%w: classify requires a model file and 3 coordinates", cli.ErrUsage)
	}
	p, err := parsePoint(args[1:])
	if err != nil {
		return err
	}
	m, err := loadValidModel(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	objs, err := selectObjects(m, cfg.Object)
	if err != nil {
		return err
	}
	renderClassification(cc.Out, cfg.palette(cc.Out), p, m.SignMap(p), objs)
	return nil
}

func bbox(cfg *BBoxConfig, cc *cli.Context, args []string) error {
	args, err := cfg.BBox.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: bbox requires a model file and an optional object name", cli.ErrUsage)
	}
	m, err := loadValidModel(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	name := ""
	if len(args) == 2 {
		name = args[1]
	}
	objs, err := selectObjects(m, name)
	if err != nil {
		return err
	}
	renderBoxes(cc.Out, cfg.palette(cc.Out), m.World, objs)
	return nil
}
