package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	otpgen "github.com/aaravmaloo/otpgen/src"
	"github.com/aaravmaloo/otpgen/src/config"
	"github.com/aaravmaloo/otpgen/src/ui"
)

var (
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	headColor = color.New(color.FgHiCyan)
	codeColor = color.New(color.FgGreen, color.Bold)
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "totp [name]",
		Short: "Generate TOTP codes for configured services",
		Example: `  totp            list configured services
  totp github     print the current code for github and copy it
  totp show       live view of every code`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := openConfig(cmd, len(args) == 0)
			if len(args) == 0 {
				printNames(s.file)
				return
			}
			printCode(cmd, s, args[0])
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the secrets file (JSON or YAML)")
	rootCmd.PersistentFlags().Bool("no-copy", false, "Do not copy the code to the clipboard")

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List configured services",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s := openConfig(cmd, true)
			printNames(s.file)
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show [name...]",
		Short: "Show TOTP codes with live updates",
		Run: func(cmd *cobra.Command, args []string) {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				errColor.Fprintln(os.Stderr, "show needs a terminal; use 'totp <name>' in scripts.")
				os.Exit(1)
			}

			s := openConfig(cmd, true)
			filter, _ := cmd.Flags().GetString("filter")
			noCopy, _ := cmd.Flags().GetBool("no-copy")

			selectEntries := func(f *config.File) (*config.File, error) {
				return f.Filter(filter).Select(args...)
			}

			file, err := selectEntries(s.file)
			if err != nil {
				errColor.Fprintf(os.Stderr, "Error: %v\n", err)
				printNames(s.file)
				os.Exit(1)
			}
			if len(file.Entries) == 0 {
				fmt.Println("No matching TOTP accounts found.")
				return
			}

			reg, buildErr := config.Build(file)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			opts := ui.Options{
				Registry: reg,
				Failures: buildErr,
				Copy:     copyToClipboard,
				Reload: func() (*otpgen.Registry, error) {
					f, err := config.Load(s.loc.Path)
					if err != nil {
						return nil, err
					}
					if f, err = selectEntries(f); err != nil {
						return nil, err
					}
					return config.Build(f)
				},
			}
			if noCopy {
				opts.Copy = nil
			}

			if w, err := config.Watch(ctx, s.loc.Path); err != nil {
				warnColor.Fprintf(os.Stderr, "Warning: not watching %s for changes: %v\n", s.loc.Path, err)
			} else {
				opts.Changes = w.Changes()
			}

			if err := ui.Run(ctx, opts); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
				errColor.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}
	showCmd.Flags().StringP("filter", "f", "", "Only show names containing this text")

	var pickCmd = &cobra.Command{
		Use:   "pick",
		Short: "Choose a service interactively and copy its code",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				errColor.Fprintln(os.Stderr, "pick needs an interactive terminal.")
				os.Exit(1)
			}

			s := openConfig(cmd, true)
			names := s.file.Names()
			if len(names) == 0 {
				printNames(s.file)
				return
			}

			var choice string
			prompt := &survey.Select{
				Message: "Choose a TOTP account:",
				Options: names,
			}
			if err := survey.AskOne(prompt, &choice); err != nil {
				errColor.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			printCode(cmd, s, choice)
		},
	}

	var infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show where secrets are read from and how each entry is configured",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s := openConfig(cmd, false)

			headColor.Println("TOTP Generator")
			fmt.Printf("Config:   %s\n", orNone(s.loc.Path))
			fmt.Printf("Keys dir: %s\n", s.env.KeysDir)
			if s.file == nil {
				return
			}

			fmt.Printf("Entries:  %d\n\n", len(s.file.Entries))
			for _, e := range s.file.Entries {
				engine, err := e.NewEngine()
				if err != nil {
					errColor.Printf("  %-24s %v\n", e.Name, err)
					continue
				}
				fmt.Printf("  %-24s %s, %d digits, %ds step\n", e.Name, engine.Algorithm(), engine.Digits(), engine.Step())
			}
		},
	}

	rootCmd.AddCommand(listCmd, showCmd, pickCmd, infoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type session struct {
	env  config.Env
	loc  config.Location
	file *config.File
}

// openConfig locates and parses the secrets file. When required is false a
// missing file is tolerated so that side-file secrets still resolve.
func openConfig(cmd *cobra.Command, required bool) *session {
	env, err := config.LoadEnv()
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}
	s := &session{env: env}

	explicit, _ := cmd.Flags().GetString("config")
	if explicit == "" {
		explicit = env.ConfigPath
	}

	loc, err := config.Locator{}.Locate(explicit)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !required {
			warnColor.Fprintf(os.Stderr, "Warning: %v\n", err)
			return s
		}
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, `Create .keys/totp_config.json, for example: {"github": "JBSWY3DPEHPK3PXP"}`)
		os.Exit(1)
	}
	s.loc = loc
	if loc.Created {
		warnColor.Fprintf(os.Stderr, "Created %s from the example file. Edit it to add your TOTP secrets.\n", loc.Path)
	}

	f, err := config.Load(loc.Path)
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	s.file = f
	return s
}

func printCode(cmd *cobra.Command, s *session, name string) {
	entry, err := config.Resolve(s.file, s.env.KeysDir, name)
	if errors.Is(err, config.ErrSecretNotFound) {
		errColor.Fprintf(os.Stderr, "Error: no TOTP key found for '%s'\n\n", name)
		printNames(s.file)
		os.Exit(1)
	}
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error reading key for '%s': %v\n", name, err)
		os.Exit(1)
	}

	engine, err := entry.NewEngine()
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error: invalid TOTP secret for '%s': %v\n", name, err)
		os.Exit(1)
	}

	code := engine.Now()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		codeColor.Println(code)
	} else {
		fmt.Println(code)
	}

	noCopy, _ := cmd.Flags().GetBool("no-copy")
	if noCopy {
		return
	}
	if err := copyToClipboard(code); err != nil {
		warnColor.Fprintf(os.Stderr, "Warning: could not copy to clipboard: %v\n", err)
	}
}

func printNames(f *config.File) {
	if f == nil || len(f.Entries) == 0 {
		fmt.Println("No TOTP types configured. Please check your configuration file.")
		return
	}
	headColor.Println("Available TOTP types:")
	for _, name := range f.Names() {
		fmt.Printf("- %s\n", name)
	}
}

func copyToClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	return clipboard.WriteAll(text)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
