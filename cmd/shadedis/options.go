package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/shade/builtins"
)

const envPrefix = "SHADEDIS"

func newRootCmd(out io.Writer) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     "shadedis [file]",
		Short:   "Disassemble compiled shade programs",
		Long:    "Reads a program encoded with bytecode.Marshal from a file or stdin and prints its instructions.",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if v.GetBool("no-color") || !isTerminal(out) {
				color.NoColor = true
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return disHandler(v, args, out)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.Bool("stdin", false, "Read the program from stdin")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("bindings", "", "TOML manifest of extra host bindings")
	cmd.Flags().StringP("func", "f", "", "Function to disassemble")
	cmd.Flags().Bool("all", false, "Disassemble the body and every function")
	cmd.Flags().Bool("stats", false, "Print program statistics instead of instructions")
	cmd.Flags().Bool("json", false, "Print statistics as JSON (with --stats)")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

// registry returns the default registry plus the bindings named by
// --bindings. Builtin indices do not depend on bindings, so the result
// resolves every BUILTIN instruction of a program compiled with defaults.
func registry(v *viper.Viper) (*builtins.Registry, error) {
	r := builtins.Default()
	if path := v.GetString("bindings"); path != "" {
		path, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		if err := r.LoadBindingsFile(path); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func readProgramData(v *viper.Viper, args []string) ([]byte, error) {
	stdin := v.GetBool("stdin")
	switch {
	case stdin && len(args) > 0:
		return nil, fmt.Errorf("multiple input sources specified")
	case stdin:
		return io.ReadAll(os.Stdin)
	case len(args) > 0:
		path, err := homedir.Expand(args[0])
		if err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	}
	return nil, fmt.Errorf("no input provided")
}
