package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"displaymode/internal/display"
	"displaymode/internal/gateway"
	"displaymode/internal/logger"
)

// app is the state of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	log     zerolog.Logger

	// root form: --list, --list-modes, --display
	list      bool
	listModes bool
	selector  string
	group     bool
	mode      modeFlags
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "displaymode",
		Short: "List display outputs and change their video mode",
		Long: `displaymode enumerates the display outputs of this machine, lists the
video modes each supports, and applies a resolution, refresh rate or
orientation with post-apply verification.

A display is selected by its system handle, its index in "list", or a
unique substring of its name.`,
		Example: `  displaymode list
  displaymode modes 0
  displaymode set DELL --width 2560 --height 1440 --hz 59.95
  displaymode --display 1 --orientation portrait --dry-run`,
		Version:           "0.1.0",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
		RunE:              a.runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.displaymode.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.BoolP("quiet", "q", false, "suppress human-readable messages")
	pf.BoolP("json", "j", false, "output in JSON format")
	pf.StringP("output", "o", formatText, "output format: text, json or yaml")
	pf.String("backend", gateway.BackendAuto, "display backend: auto, native or fixture")
	pf.String("fixture", "", "YAML fixture file for the fixture backend")
	pf.Bool("persist", false, "store the new mode so it survives a restart")
	pf.Bool("safe-mode", true, "refuse resolutions below 800x600")

	for key, flag := range map[string]string{
		"verbose":   "verbose",
		"quiet":     "quiet",
		"json":      "json",
		"output":    "output",
		"backend":   "backend",
		"fixture":   "fixture",
		"persist":   "persist",
		"safe_mode": "safe-mode",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	f := rootCmd.Flags()
	f.BoolVar(&a.list, "list", false, "list displays")
	f.BoolVar(&a.listModes, "list-modes", false, "list the modes of the --display")
	f.StringVar(&a.selector, "display", "", "display handle, index or name substring")
	f.BoolVarP(&a.group, "group", "g", false, "group modes by aspect ratio")
	a.mode.register(f)

	rootCmd.AddCommand(newListCmd(a), newModesCmd(a), newSetCmd(a))
	return rootCmd
}

// Execute runs the CLI on the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes one invocation and returns its exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\nRun 'displaymode --help' for usage.\n", err)
	return ExitUsage
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	v := a.v
	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".displaymode")
	}

	v.SetEnvPrefix("DISPLAYMODE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output", formatText)
	v.SetDefault("backend", gateway.BackendAuto)
	v.SetDefault("persist", false)
	v.SetDefault("safe_mode", true) // Prevent setting resolutions below 800x600

	readErr := v.ReadInConfig()
	if readErr != nil && a.cfgFile != "" {
		return fmt.Errorf("read config: %w", readErr)
	}

	opt, err := logger.FromEnv()
	if err != nil {
		return err
	}
	switch {
	case v.GetBool("verbose"):
		opt.Level = "debug"
	case v.GetBool("quiet"):
		opt.Level = "error"
	}
	opt.Writer = cmd.ErrOrStderr()
	a.log = *logger.Init(opt)

	if readErr == nil {
		a.log.Debug().Str("file", v.ConfigFileUsed()).Msg("using config file")
	}
	if _, err := a.format(); err != nil {
		return err
	}
	return nil
}

// runRoot serves the flag-only form of the tool.
func (a *app) runRoot(cmd *cobra.Command, _ []string) error {
	switch {
	case a.list:
		return a.runList(cmd)
	case a.listModes && a.selector != "":
		return a.runModes(cmd, a.selector, a.group)
	case cmd.Flags().NFlag() == 0:
		return usageError(cmd, ExitUsage)
	}
	return a.runSet(cmd, a.selector, &a.mode)
}

// openCatalog opens the configured gateway.
func (a *app) openCatalog() (*display.Catalog, display.Gateway, error) {
	gw, err := gateway.Open(a.v.GetString("backend"), a.v.GetString("fixture"), a.log)
	if err != nil {
		return nil, nil, display.Wrap(err, display.KindEnumeration, "open gateway", "display backend unavailable")
	}
	a.log.Debug().Str("prefix", gw.HandlePrefix()).Msg("gateway open")
	return display.NewCatalog(gw, *logger.Named("catalog")), gw, nil
}

// fail reports err and returns the exit error for it.
func (a *app) fail(cmd *cobra.Command, err error) error {
	code := exitCodeFor(err)
	f, _ := a.format()
	if f != formatText {
		_ = render(cmd.OutOrStdout(), f, newFailureJSON(err))
	} else if !a.v.GetBool("quiet") {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
	return &exitError{code: code, err: err}
}
