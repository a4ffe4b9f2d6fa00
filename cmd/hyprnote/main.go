package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leonardotrapani/hyprnote/internal/bus"
	"github.com/leonardotrapani/hyprnote/internal/config"
	"github.com/leonardotrapani/hyprnote/internal/daemon"
	"github.com/leonardotrapani/hyprnote/internal/deps"
	"github.com/leonardotrapani/hyprnote/internal/notes"
	"github.com/leonardotrapani/hyprnote/internal/reldate"
	"github.com/leonardotrapani/hyprnote/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "hyprnote",
	Short:        "Speech-to-text notes for Wayland/Hyprland",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		simpleCmd("record", "Start recording a note", bus.VerbRecord),
		simpleCmd("stop", "Stop recording, keeping the transcript for editing", bus.VerbStop),
		simpleCmd("text", "Write a note by typing instead of recording", bus.VerbText),
		draftCmd(),
		simpleCmd("submit", "Save the current draft as a note", bus.VerbSubmit),
		simpleCmd("status", "Show the composer mode and draft", bus.VerbStatus),
		notesCmd(),
		deleteCmd(),
		composeCmd(),
		configureCmd(),
		simpleCmd("quit", "Stop the daemon", bus.VerbQuit),
		simpleCmd("version", "Get protocol version", bus.VerbVersion),
		doctorCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return daemon.New(daemon.Options{Manager: manager}).Run()
		},
	}
}

// simpleCmd sends a verb without argument and prints the daemon's reply.
func simpleCmd(use, short, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendAndPrint(cmd, verb, "")
		},
	}
}

func draftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft <text>",
		Short: "Replace the draft while writing a text note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendAndPrint(cmd, bus.VerbDraft, strings.Join(args, " "))
		},
	}
}

func sendAndPrint(cmd *cobra.Command, verb, arg string) error {
	resp, err := bus.SendCommand(verb, arg)
	if err != nil {
		return describe(verb, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(resp.Kind+" "+resp.Body))
	return nil
}

// describe turns daemon errors into messages for the terminal.
func describe(verb string, err error) error {
	var re *bus.ResponseError
	if errors.As(err, &re) {
		switch re.Code {
		case bus.CodeFeatureUnavailable:
			return fmt.Errorf("O sistema não suporta essa funcionalidade! (%s)", re.Message)
		case bus.CodeUnavailable:
			return fmt.Errorf("%s is not available now: %s", verb, re.Message)
		}
		return re
	}
	return fmt.Errorf("failed to %s: %w (is `hyprnote serve` running?)", verb, err)
}

func fetchNotes(query string) ([]notes.Note, error) {
	resp, err := bus.SendCommand(bus.VerbNotes, query)
	if err != nil {
		return nil, describe(bus.VerbNotes, err)
	}
	var list []notes.Note
	if err := bus.ParseNotes(resp.Body, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func notesCmd() *cobra.Command {
	var (
		search string
		plain  bool
		width  int
	)

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Show notes as cards, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fetchNotes(search)
			if err != nil {
				return err
			}

			if width <= 0 {
				width = terminalWidth()
			}
			grid := tui.NewNoteGrid(cmd.OutOrStdout(), tui.GridOptions{
				Width:  width,
				Locale: dateLocale(),
				Plain:  plain,
				// the new note card only makes sense on the unfiltered board
				HideNewCard: search != "",
			})
			fmt.Fprintln(cmd.OutOrStdout(), grid.Render(list))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only notes containing this text")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	cmd.Flags().IntVar(&width, "width", 0, "grid width in columns (default: terminal width)")

	return cmd
}

func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note by id or id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fetchNotes("")
			if err != nil {
				return err
			}
			note, err := resolveNote(list, args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := tui.ConfirmDelete(preview(note.Content))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			return sendAndPrint(cmd, bus.VerbDelete, note.ID)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

// resolveNote finds the note whose id is or starts with ref.
func resolveNote(list []notes.Note, ref string) (notes.Note, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return notes.Note{}, fmt.Errorf("empty note id")
	}

	var matches []notes.Note
	for _, n := range list {
		if n.ID == ref {
			return n, nil
		}
		if strings.HasPrefix(n.ID, ref) {
			matches = append(matches, n)
		}
	}

	switch len(matches) {
	case 0:
		return notes.Note{}, fmt.Errorf("no note with id %q", ref)
	case 1:
		return matches[0], nil
	}
	return notes.Note{}, fmt.Errorf("id %q is ambiguous (%d notes match)", ref, len(matches))
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) > 60 {
		return string(r[:59]) + "…"
	}
	return content
}

func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return 120
}

// dateLocale reads the card date locale from the config, if any.
func dateLocale() string {
	path, err := config.GetConfigPath()
	if err != nil {
		return reldate.DefaultLocale
	}
	cfg, err := config.LoadFile(path)
	if err != nil || cfg.Notes.DateLocale == "" {
		return reldate.DefaultLocale
	}
	return cfg.Notes.DateLocale
}

func composeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compose",
		Short: "Open the interactive note composer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bus.SendCommand(bus.VerbVersion, ""); err != nil {
				return describe("connect", err)
			}
			_, err := tea.NewProgram(tui.NewComposeModel(tui.BusClient{})).Run()
			return err
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration for hyprnote.
This will guide you through setting up:
- Provider API keys (Deepgram, OpenAI)
- Recognition provider, language and model
- Note date labels and notification preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()
	showNextSteps()

	return nil
}

func showNextSteps() {
	serviceRunning := false
	if err := exec.Command("systemctl", "--user", "is-active", "--quiet", "hyprnote.service").Run(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	if serviceRunning {
		fmt.Println("1. A running daemon picks up the new config automatically")
	} else {
		fmt.Println("1. Start the daemon: hyprnote serve (or systemctl --user start hyprnote.service)")
	}
	fmt.Println("2. Write your first note: hyprnote compose")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range deps.All() {
				if s.Installed {
					fmt.Fprintf(out, "%s %s (%s) %s\n", tui.StyleSuccess.Render("✓"), s.Name, s.Path, s.Version)
				} else {
					fmt.Fprintf(out, "%s %s not found\n", tui.StyleError.Render("✗"), s.Name)
				}
			}

			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(path)
			switch {
			case errors.Is(err, config.ErrConfigNotFound):
				fmt.Fprintf(out, "%s no config at %s, defaults apply\n", tui.StyleWarning.Render("!"), path)
				cfg = config.DefaultConfig()
			case err != nil:
				fmt.Fprintf(out, "%s config: %v\n", tui.StyleError.Render("✗"), err)
				return nil
			default:
				fmt.Fprintf(out, "%s config %s\n", tui.StyleSuccess.Render("✓"), path)
			}

			provider := cfg.Recognition.Provider
			if cfg.ResolveAPIKey(provider) == "" {
				fmt.Fprintf(out, "%s no API key for %s: set it with `hyprnote configure` or $%s\n",
					tui.StyleWarning.Render("!"), provider, config.EnvVarForProvider(provider))
			} else {
				fmt.Fprintf(out, "%s API key for %s\n", tui.StyleSuccess.Render("✓"), provider)
			}

			if _, err := bus.SendCommand(bus.VerbVersion, ""); err != nil {
				fmt.Fprintf(out, "%s daemon not running\n", tui.StyleWarning.Render("!"))
			} else {
				fmt.Fprintf(out, "%s daemon running\n", tui.StyleSuccess.Render("✓"))
			}
			return nil
		},
	}
}
