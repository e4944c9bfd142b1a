package main

import (
	"github.com/scott-cotton/cli"
)

const description = `csgq evaluates halfspace model files and queries their objects.

A model file is a Lisp program that defines keyed surfaces and named
objects whose rules combine those surfaces:

  (plane 1 :normal (vec3 0 0 1) :dist 0)
  (plane 2 :normal (vec3 0 0 1) :dist 10)
  (defobject "slab" (inter (surf 1) (surf -2)))

Examples:
  csgq show slab.lisp
  csgq check -strict slab.lisp
  csgq classify slab.lisp 0 0 5
  csgq -color never bbox slab.lisp slab`

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "csgq").
		WithSynopsis("csgq [opts] command [opts]").
		WithDescription(description).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return csgqMain(cfg, cc, args)
		}).
		WithSubs(
			ShowCommand(cfg),
			CheckCommand(cfg),
			ClassifyCommand(cfg),
			BBoxCommand(cfg))
}

func ShowCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ShowConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("show").
		WithOpts(opts...).
		WithSynopsis("show [-s] FILE").
		WithDescription("print the surfaces and object rules of a model").
		WithRun(func(cc *cli.Context, args []string) error {
			return show(cfg, cc, args)
		})
	cfg.Show = cmd
	return cmd
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("check").
		WithOpts(opts...).
		WithSynopsis("check [-strict] FILE").
		WithDescription("validate a model and report errors and warnings").
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
	cfg.Check = cmd
	return cmd
}

func ClassifyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ClassifyConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("classify").
		WithAliases("c").
		WithOpts(opts...).
		WithSynopsis("classify [-object name] FILE x y z").
		WithDescription("report which objects contain a point").
		WithRun(func(cc *cli.Context, args []string) error {
			return classify(cfg, cc, args)
		})
	cfg.Classify = cmd
	return cmd
}

func BBoxCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &BBoxConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("bbox").
		WithOpts(opts...).
		WithSynopsis("bbox FILE [object]").
		WithDescription("print tightened bounding boxes within the world box").
		WithRun(func(cc *cli.Context, args []string) error {
			return bbox(cfg, cc, args)
		})
	cfg.BBox = cmd
	return cmd
}
