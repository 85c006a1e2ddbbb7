package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lrx/cli/cmd"
	"github.com/ardnew/lrx/log"
	"github.com/ardnew/lrx/pkg"
)

// CLI is the top-level command-line interface for lrx.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Lang  langConfig  `embed:"" group:"lang"`

	Parse  cmd.Parse  `cmd:"" default:"withargs" help:"Build and print the declarations of a template file"`
	Tree   cmd.Tree   `cmd:""                    help:"Print the template trees of widgets"`
	Entity cmd.Entity `cmd:""                    help:"Parse an entity reference"`
	Check  cmd.Check  `cmd:""                    help:"Check widget calls in template files"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
	Repl   cmd.Repl   `cmd:""                    help:"Explore a template file interactively"`
}

// Run executes the lrx CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configPath(baseConfig),
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Lang.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Lang.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseJSON)),
		kong.Configuration(resolve, configPath(baseConfig)),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	opts, err := cli.Lang.options()
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSetup(ctx, cmd.Setup{
		Options: opts,
		Roots:   cli.Lang.Include,
		Logger:  log.Default(),
	})

	return ktx.Run(ctx, &cli)
}
