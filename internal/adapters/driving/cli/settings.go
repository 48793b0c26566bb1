package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the catalog source, the history store and the
polling schedule.

Use subcommands to change a single key or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a single setting",
	Long: `Set a single setting and save the config file.

When the value is omitted it is read from standard input. Secret values
such as tokens are read without echo when standard input is a terminal.

Run 'arrivals settings keys' to list the available keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the catalog and the store step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Catalog]")
	cmd.Printf("  Type: %s\n", settings.Catalog.Type.Description())
	cmd.Printf("  URL: %s\n", valueOrUnset(settings.Catalog.URL))
	cmd.Printf("  Rate: %g req/s\n", settings.Catalog.Rate)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend.Description())
	cmd.Printf("  Key: %s\n", settings.Store.Key)
	cmd.Printf("  Skip unchanged: %t\n", settings.Store.SkipUnchanged)
	if !settings.Store.Backend.IsRemote() {
		cmd.Printf("  Data dir: %s\n", valueOrDefault(settings.Store.DataDir))
	}
	cmd.Println()

	switch settings.Store.Backend {
	case domain.StoreBackendGitHub:
		cmd.Println("[GitHub]")
		cmd.Printf("  Repository: %s/%s@%s\n", settings.GitHub.Owner, settings.GitHub.Repo, settings.GitHub.Branch)
		cmd.Printf("  Token: %s\n", maskedOrUnset(settings.GitHub.Token))
		cmd.Println()
	case domain.StoreBackendDrive:
		cmd.Println("[Google Drive]")
		cmd.Printf("  Folder: %s\n", valueOrDefault(settings.Drive.FolderID))
		cmd.Printf("  Client ID: %s\n", valueOrUnset(settings.Drive.ClientID))
		cmd.Printf("  Refresh token: %s\n", maskedOrUnset(settings.Drive.RefreshToken))
		if !settings.Drive.CanRefresh() {
			cmd.Printf("  Token: %s\n", maskedOrUnset(settings.Drive.Token))
		}
		cmd.Println()
	}

	sched := settingsService.SchedulerConfig()
	task := sched.Effective(domain.TaskIDCatalogReconcile)
	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", task.Enabled)
	cmd.Printf("  Interval: %s\n", task.Interval)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'arrivals settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("%s: ", key)
		if settingsService.IsSecret(key) {
			value = readSecret(cmd.InOrStdin())
			cmd.Println()
		} else {
			value = readLine(bufio.NewReader(cmd.InOrStdin()))
		}
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if settingsService.IsSecret(key) {
		shown = maskSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	out := cmd.OutOrStdout()
	for _, key := range settingsService.Keys() {
		if settingsService.IsSecret(key) {
			fmt.Fprintf(out, "%s (secret)\n", key)
			continue
		}
		fmt.Fprintln(out, key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Arrivals Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	// Step 1: Catalog
	cmd.Println("Step 1: Catalog Source")
	cmd.Println("----------------------")
	types := domain.AllCatalogTypes()
	for i, t := range types {
		cmd.Printf("  %d. %s\n", i+1, t.Description())
	}
	cmd.Printf("\nEnter choice [%d]: ", indexOf(types, current.Catalog.Type)+1)
	catalogType := types[parseChoice(readLine(reader), len(types), indexOf(types, current.Catalog.Type)+1)-1]
	if err := settingsService.Set("catalog.type", catalogType.String()); err != nil {
		return err
	}

	if err := promptSetting(cmd, reader, "catalog.url", "Catalog URL", current.Catalog.URL); err != nil {
		return err
	}
	cmd.Println()

	// Step 2: Store
	cmd.Println("Step 2: History Store")
	cmd.Println("---------------------")
	backends := domain.AllStoreBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	defaultBackend := indexOf(backends, current.Store.Backend) + 1
	cmd.Printf("\nEnter choice [%d]: ", defaultBackend)
	backend := backends[parseChoice(readLine(reader), len(backends), defaultBackend)-1]
	if err := settingsService.Set("store.backend", backend.String()); err != nil {
		return err
	}
	cmd.Println()

	// Step 3: Backend specifics
	switch backend {
	case domain.StoreBackendGitHub:
		cmd.Println("Step 3: GitHub Repository")
		cmd.Println("-------------------------")
		for _, p := range []struct{ key, label, current string }{
			{"github.owner", "Owner", current.GitHub.Owner},
			{"github.repo", "Repository", current.GitHub.Repo},
			{"github.branch", "Branch", current.GitHub.Branch},
		} {
			if err := promptSetting(cmd, reader, p.key, p.label, p.current); err != nil {
				return err
			}
		}
		if err := promptSecret(cmd, reader, in, "github.token", "Token", current.GitHub.Token); err != nil {
			return err
		}
	case domain.StoreBackendDrive:
		cmd.Println("Step 3: Google Drive")
		cmd.Println("--------------------")
		if err := promptSetting(cmd, reader, "drive.folder_id", "Folder ID (empty for root)", current.Drive.FolderID); err != nil {
			return err
		}
		if err := promptSecret(cmd, reader, in, "drive.token", "Access token", current.Drive.Token); err != nil {
			return err
		}
	default:
		cmd.Println("Step 3: Backend options (skipped)")
		cmd.Println("---------------------------------")
		cmd.Println("Local backends need no further setup.")
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

// promptSetting asks for a value, keeping current when the answer is empty.
func promptSetting(cmd *cobra.Command, reader *bufio.Reader, key, label, current string) error {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}
	value := readLine(reader)
	if value == "" {
		return nil
	}
	return settingsService.Set(key, value)
}

// promptSecret is promptSetting without echo.
func promptSecret(cmd *cobra.Command, reader *bufio.Reader, in io.Reader, key, label, current string) error {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, maskSecret(current))
	} else {
		cmd.Printf("%s: ", label)
	}
	var value string
	if in == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		value = readSecret(in)
		cmd.Println()
	} else {
		value = readLine(reader)
	}
	if value == "" {
		return nil
	}
	return settingsService.Set(key, value)
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads a line without echo when in is the terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if in == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(bufio.NewReader(in))
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func maskedOrUnset(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return maskSecret(secret)
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func valueOrDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

func indexOf[T comparable](values []T, v T) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}
