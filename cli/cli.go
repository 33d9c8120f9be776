package cli

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/twine/cli/cmd"
	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/pkg"
)

// CLI is the top-level command-line interface for twine.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Dir []string `help:"Template search directory, searched in order before ${pathVar}." placeholder:"DIR" short:"d" type:"path"`
	DB  string   `help:"SQLite template store, searched before the directories."          placeholder:"FILE"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render a template (default)."`
	Fmt    cmd.Fmt    `cmd:""                    help:"Print a template's syntax tree as one of: ${formats}."`
	Check  cmd.Check  `cmd:""                    help:"Parse and resolve templates, reporting every failure."`
	Store  cmd.Store  `cmd:""                    help:"Manage the template store."`
	Repl   cmd.Repl   `cmd:""                    help:"Render template text interactively."`
	Init   cmd.Init   `cmd:""                    help:"Write the current global flags to the configuration file."`
}

// Run executes the twine CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, os.Stdout, exit, args...)
}

func run(
	ctx context.Context,
	w io.Writer,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier:   configFilePath,
		cmd.CacheIdentifier:    pkg.CacheDir(),
		cmd.FormatsIdentifier:  strings.Join(lang.Formats, ", "),
		cmd.MaxDepthIdentifier: strconv.Itoa(lang.DefaultMaxDepth),
		"pathVar":              pathVar(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before parsing so that parse errors honor them.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(w, os.Stderr),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
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
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath+".yaml", configFilePath+".yml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOutput(ctx, w)
	ctx = cmd.WithSearchPath(ctx, searchPath(cli.Dir))

	if cli.DB != "" {
		ctx = cmd.WithStorePath(ctx, expandPath(cli.DB))
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
