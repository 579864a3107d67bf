package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cfgconv/cli/cmd"
	"github.com/ardnew/cfgconv/lang"
	"github.com/ardnew/cfgconv/pkg"
)

// configFile is the base name of the configuration file in [pkg.ConfigDir].
const configFile = "config.cfg"

// CLI is the top-level command-line interface.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version  kong.VersionFlag `help:"Print the version and exit." short:"V"`
	MaxDepth int              `default:"${maxDepth}" help:"Maximum nesting depth of dictionaries." placeholder:"N"`

	Convert cmd.Convert `cmd:"" default:"withargs" help:"Convert a document to YAML, JSON, TOML or native syntax."`
	Check   cmd.Check   `cmd:""                    help:"Parse sources and report the first error."`
	Fmt     cmd.Fmt     `cmd:""                    help:"Pretty-print a document."`
	Eval    cmd.Eval    `cmd:""                    help:"Evaluate a value against the constants of a document."`
	Query   cmd.Query   `cmd:""                    help:"Run an expression over a document."`
	Init    cmd.Init    `cmd:""                    help:"Write the current flags as a configuration file."`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive session."`
}

// Run parses args and runs the selected command. Kong calls exit after
// printing help or the version, or when parsing fails.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configPath := pkg.ConfigPath(configFile)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configPath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, configPath+".json"),
		kong.Configuration(resolve(cmd.ConfigIdentifier), configPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()
	defer cli.Pprof.start(ctx)()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithParseOptions(ctx, lang.WithMaxDepth(cli.MaxDepth))

	return ktx.Run(ctx, &cli)
}
