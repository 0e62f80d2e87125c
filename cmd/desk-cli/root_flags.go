package main

import (
	"flag"

	"desk-cli/internal/config"
)

type rootArgs struct {
	cfgPath   string
	overrides []string
}

func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("desk-cli", flag.ContinueOnError)
	var overrides stringSlice
	var cfgPath string
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.desk/config.toml)")
	fs.Var(&overrides, "o", "Override config value key=value (repeatable, applied after file and env)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return rootArgs{cfgPath: cfgPath, overrides: overrides}, fs.Args(), nil
}

func (r rootArgs) loadConfig() (config.Config, error) {
	cfg, err := config.Load(r.cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	return config.ApplyKVOverrides(cfg, r.overrides), nil
}
