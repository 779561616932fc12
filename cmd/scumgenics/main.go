package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scumgenics/internal/app"
	"scumgenics/internal/config"
	"scumgenics/internal/save"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig returns the config path, base directory and the settings found
// there (or the defaults when no config file exists).
func loadConfig() (string, string, *config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return "", "", nil, fmt.Errorf("getting defaults: %w", err)
	}
	path, base := defaults["config_path"], defaults["base_dir"]
	cfg, err := config.Load(path, base)
	if err != nil {
		return "", "", nil, fmt.Errorf("reading config: %w", err)
	}
	return path, base, cfg, nil
}

// newApp reads the config, detects the user and creates an App.
// The caller must defer app.Close().
func newApp() (*app.App, error) {
	_, _, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	identity, err := app.DetectIdentity()
	if err != nil {
		return nil, fmt.Errorf("detecting user: %w", err)
	}

	a, err := app.NewApp(cfg, identity)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:           "scumgenics",
	Short:         "Back up and restore Mewgenics save files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		showPaths, _ := cmd.Flags().GetBool("paths")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		printListing(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.ListBackups(), showPaths)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore FILENAME",
	Short: "Replace the main save with a backup",
	Long: `Replace the main save with a backup.

The main save is deleted, the backup is copied into the save directory and
renamed to the main save name. If the copy or rename fails after the delete,
the printed instructions tell you how to finish by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		filename := args[0]

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !yes {
			ok, err := confirm(cmd, fmt.Sprintf("Replace %s with %s?", a.Locations().MainSave, filename))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Restore cancelled.")
				return nil
			}
		}

		return printOutcome(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.Restore(filename))
	},
}

// confirm asks a yes/no question on the terminal. Without a terminal it
// refuses, so scripts must pass --yes.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal: pass --yes to confirm")
	}
	return ask(cmd.InOrStdin(), cmd.OutOrStdout(), question)
}

func ask(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the main save into the local backup directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return printOutcome(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.CreateLocalBackup())
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show save locations and whether the main save exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ack, _ := cmd.Flags().GetBool("ack")
		out := cmd.OutOrStdout()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		locs := a.Locations()
		mainState := "missing"
		if a.MainSaveExists() {
			mainState = "present"
		}
		listing := a.ListBackups()

		fmt.Fprintf(out, "User:           %s\n", a.Identity())
		fmt.Fprintf(out, "Main save:      %s (%s)\n", locs.MainSave, mainState)
		fmt.Fprintf(out, "Game backups:   %s\n", locs.RemoteBackupDir)
		fmt.Fprintf(out, "Local backups:  %s\n", locs.LocalBackupDir)
		fmt.Fprintf(out, "Backups found:  %d\n", len(listing.Records))
		if cfg := a.Config(); cfg.GameExecutable != "" {
			fmt.Fprintf(out, "Game:           %s\n", cfg.GameExecutable)
		}
		for _, d := range listing.Diagnostics {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", d)
		}

		interrupted, err := a.Interrupted()
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if ack {
			n, err := a.AcknowledgeInterrupted()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Acknowledged %d interrupted operation(s).\n", n)
			return nil
		}
		printInterrupted(cmd.ErrOrStderr(), interrupted, locs)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View restore and backup history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), ops)
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print backups as they are written, until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err = a.Watch(ctx,
			func(dirs []string) {
				for _, d := range dirs {
					fmt.Fprintf(out, "Watching %s\n", d)
				}
			},
			func(r save.BackupRecord) {
				fmt.Fprintf(out, "%s  [%-5s]  %s\n", r.DisplayName(), r.Source, r.Name)
			})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", defaults["config_path"])
		fmt.Fprintf(cmd.OutOrStdout(), "Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", path)
		fmt.Fprintf(out, "Save Folder:     %s\n", orDefault(cfg.SaveFolder, "(default location)"))
		fmt.Fprintf(out, "Game Executable: %s\n", orDefault(cfg.GameExecutable, "(not set)"))
		fmt.Fprintf(out, "Users Root:      %s\n", orDefault(cfg.UsersRoot, app.DefaultUsersRoot))
		fmt.Fprintf(out, "Base Dir:        %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:         %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Database:        %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

var configSetSaveFolderCmd = &cobra.Command{
	Use:   "set-save-folder DIR",
	Short: "Use a custom folder for the main save and the game's backups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, base, _, err := loadConfig()
		if err != nil {
			return err
		}
		cfg, err := config.SetSaveFolder(path, base, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Save folder set to %s\n", cfg.SaveFolder)
		return nil
	},
}

var configClearSaveFolderCmd = &cobra.Command{
	Use:   "clear-save-folder",
	Short: "Go back to the default save folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, base, _, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := config.ClearSaveFolder(path, base); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Save folder reset to the default location")
		return nil
	},
}

var configSetGameExeCmd = &cobra.Command{
	Use:   "set-game-exe FILE",
	Short: "Remember the game executable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, base, _, err := loadConfig()
		if err != nil {
			return err
		}
		cfg, err := config.SetGameExecutable(path, base, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Game executable set to %s\n", cfg.GameExecutable)
		return nil
	},
}

var configClearGameExeCmd = &cobra.Command{
	Use:   "clear-game-exe",
	Short: "Forget the game executable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, base, _, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := config.ClearGameExecutable(path, base); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Game executable cleared")
		return nil
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetSaveFolderCmd)
	configCmd.AddCommand(configClearSaveFolderCmd)
	configCmd.AddCommand(configSetGameExeCmd)
	configCmd.AddCommand(configClearGameExeCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("paths", "p", false, "Show full paths instead of filenames")
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("ack", false, "Mark interrupted operations as seen")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(watchCmd)
}
