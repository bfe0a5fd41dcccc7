package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/config"
)

const adminCachePath = "/api/v1/admin/cache"

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive configuration wizard",
		Long: `Interactive setup wizard to configure careerprep profiles.

You can also set up profiles manually by editing:
  ~/.config/careerprep/config.toml (Linux/others)
  ~/Library/Application Support/careerprep/config.toml (macOS)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "careerprep Setup Wizard")
			fmt.Fprintln(out, "=======================")
			fmt.Fprintln(out)

			cfg, err := loadConfig()
			if err != nil {
				cfg = config.Default()
			}

			fmt.Fprintln(out, "Select a provider:")
			fmt.Fprintln(out, "  1) Gemini")
			fmt.Fprintln(out, "  2) OpenAI")
			fmt.Fprintln(out, "  3) Anthropic")
			fmt.Fprintln(out, "  4) Ollama (local)")
			fmt.Fprint(out, "\nChoice [1-4]: ")

			var choice string
			fmt.Fscanln(cmd.InOrStdin(), &choice)

			var provider, model, profileName string

			switch choice {
			case "1":
				provider = "gemini"
				model = "gemini-2.0-flash"
				profileName = "gemini-flash"
				fmt.Fprintln(out, "\nUsing Gemini with gemini-2.0-flash")
				fmt.Fprintln(out, "Set your API key with: export GEMINI_API_KEY=...")
			case "2":
				provider = "openai"
				model = "gpt-4o-mini"
				profileName = "openai-gpt4o-mini"
				fmt.Fprintln(out, "\nUsing OpenAI with gpt-4o-mini")
				fmt.Fprintln(out, "Set your API key with: export OPENAI_API_KEY=sk-...")
			case "3":
				provider = "anthropic"
				model = "claude-3-5-haiku-20241022"
				profileName = "anthropic-haiku"
				fmt.Fprintln(out, "\nUsing Anthropic with Claude 3.5 Haiku")
				fmt.Fprintln(out, "Set your API key with: export ANTHROPIC_API_KEY=sk-...")
			case "4":
				provider = "ollama"
				fmt.Fprint(out, "\nEnter model name (e.g., llama3.2:latest): ")
				fmt.Fscanln(cmd.InOrStdin(), &model)
				if model == "" {
					model = "llama3.2:latest"
				}
				if !validModelName.MatchString(model) {
					return fmt.Errorf("invalid model name: only alphanumeric, dots, colons, hyphens, and underscores allowed")
				}
				baseProfileName := strings.Split(model, ":")[0]
				profileName = fmt.Sprintf("ollama-%s", sanitizeProfileName(baseProfileName))
				fmt.Fprintln(out, "\nUsing Ollama with", model)
				fmt.Fprintln(out, "Make sure Ollama is running: ollama serve")
			default:
				return fmt.Errorf("invalid choice: must be 1, 2, 3, or 4")
			}

			cfg.AddProfile(profileName, config.Profile{
				Provider: provider,
				Model:    model,
			})
			cfg.DefaultProfile = profileName

			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(out, "\n✓ Configuration saved to %s\n", cfg.Path())
			fmt.Fprintf(out, "  Profile: %s\n", profileName)
			fmt.Fprintf(out, "  Provider: %s\n", provider)
			fmt.Fprintf(out, "  Model: %s\n", model)
			fmt.Fprintf(out, "\nTry it out:\n")
			fmt.Fprintf(out, "  careerprep profile set --industry \"Software Development\" --skills Go,SQL\n")
			fmt.Fprintf(out, "  careerprep quiz\n")

			return nil
		},
	}
}

func setProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-profile <profile-name>",
		Short: "Set the default profile",
		Long: `Set the default LLM profile.

Example:
  careerprep set-profile gemini-flash
  careerprep set-profile ollama-llama3.2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileName := args[0]
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			profile, ok := cfg.Profiles[profileName]
			if !ok {
				fmt.Fprintf(out, "Profile '%s' not found.\n\n", profileName)
				fmt.Fprintln(out, "Available profiles:")
				for _, name := range profileNames(cfg) {
					fmt.Fprintf(out, "  - %s\n", name)
				}
				return fmt.Errorf("profile not found")
			}

			cfg.DefaultProfile = profileName
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(out, "✓ Default profile set to: %s\n", profileName)
			fmt.Fprintf(out, "  Provider: %s\n", profile.Provider)
			fmt.Fprintf(out, "  Model:    %s\n", profile.Model)
			return nil
		},
	}
}

func listProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-profiles",
		Short: "Show all configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if len(cfg.Profiles) == 0 {
				fmt.Fprintln(out, "No profiles configured. Run 'careerprep setup' to create one.")
				return nil
			}

			fmt.Fprintln(out, "Configured Profiles:")
			fmt.Fprintln(out)

			for _, name := range profileNames(cfg) {
				profile := cfg.Profiles[name]
				marker := " "
				if name == cfg.DefaultProfile {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
				fmt.Fprintf(out, "    Provider: %s\n", profile.Provider)
				fmt.Fprintf(out, "    Model:    %s\n", profile.Model)
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, "* = default profile")
			return nil
		},
	}
}

func testConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-config",
		Short: "Validate the configuration and all profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if len(cfg.Profiles) == 0 {
				return fmt.Errorf("no profiles configured")
			}

			fmt.Fprintf(out, "Config:   %s\n", cfg.Path())
			fmt.Fprintf(out, "Database: %s (%s)\n", cfg.Database.Driver, cfg.DatabaseDSN())
			fmt.Fprintf(out, "Cache:    ttl=%s max_entries=%d coalesce=%t\n", cfg.CacheTTL(), cfg.Cache.MaxEntries, cfg.Cache.Coalesce)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Testing profiles...")
			fmt.Fprintln(out)

			hasErrors := false
			envVars := map[string]string{
				"gemini":    "GEMINI_API_KEY",
				"openai":    "OPENAI_API_KEY",
				"anthropic": "ANTHROPIC_API_KEY",
			}

			for _, name := range profileNames(cfg) {
				profile := cfg.Profiles[name]
				fmt.Fprintf(out, "Testing %s (%s %s)... ", name, profile.Provider, profile.Model)

				switch profile.Provider {
				case "gemini", "openai", "anthropic":
					if cfg.GetAPIKey(profile.Provider) == "" {
						fmt.Fprintf(out, "❌ Missing %s\n", envVars[profile.Provider])
						hasErrors = true
						continue
					}
				case "ollama":
					// Reachability is checked on first use
				default:
					fmt.Fprintf(out, "❌ Unsupported provider %q\n", profile.Provider)
					hasErrors = true
					continue
				}

				fmt.Fprintln(out, "✓")
			}

			if hasErrors {
				return fmt.Errorf("some profiles have configuration issues")
			}

			fmt.Fprintln(out, "\n✓ All profiles configured correctly")
			return nil
		},
	}
}

func cacheStatsCmd() *cobra.Command {
	var server, token string
	cmd := &cobra.Command{
		Use:   "cache-stats",
		Short: "Show generation cache statistics of a running server",
		Long: `Show generation cache statistics. The cache lives in memory, so this
queries a running 'careerprep serve' process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveAdminTarget(server, token)
			if err != nil {
				return err
			}

			var stats cache.Stats
			if err := adminRequest(cmd.Context(), http.MethodGet, target, &stats); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache Statistics:\n")
			fmt.Fprintf(out, "  Entries:          %d\n", stats.Count)
			fmt.Fprintf(out, "  Hits:             %d\n", stats.Hits)
			fmt.Fprintf(out, "  Misses:           %d\n", stats.Misses)
			fmt.Fprintf(out, "  Expired:          %d\n", stats.Expired)
			fmt.Fprintf(out, "  Evictions:        %d\n", stats.Evictions)

			if stats.OldestEntry != nil {
				fmt.Fprintf(out, "  Oldest entry:     %s\n", stats.OldestEntry.Format("2006-01-02 15:04:05"))
			}
			if stats.NewestEntry != nil {
				fmt.Fprintf(out, "  Newest entry:     %s\n", stats.NewestEntry.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "  Server:           %s\n", target.base)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from server.listen)")
	cmd.Flags().StringVar(&token, "token", "", "admin token (default: server.admin_token or CAREERPREP_ADMIN_TOKEN)")
	return cmd
}

func clearCacheCmd() *cobra.Command {
	var server, token string
	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Clear the generation cache of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveAdminTarget(server, token)
			if err != nil {
				return err
			}

			var resp struct {
				Cleared int `json:"cleared"`
			}
			if err := adminRequest(cmd.Context(), http.MethodDelete, target, &resp); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached entries\n", resp.Cleared)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from server.listen)")
	cmd.Flags().StringVar(&token, "token", "", "admin token (default: server.admin_token or CAREERPREP_ADMIN_TOKEN)")
	return cmd
}

// adminTarget is a running server's base URL and admin token
type adminTarget struct {
	base  string
	token string
}

func resolveAdminTarget(server, token string) (adminTarget, error) {
	cfg, err := loadConfig()
	if err != nil {
		return adminTarget{}, err
	}

	target := adminTarget{base: serverURL(cfg.Server.Listen), token: cfg.Server.AdminToken}
	if server != "" {
		target.base = serverURL(server)
	}
	if token != "" {
		target.token = token
	}
	if target.token == "" {
		return adminTarget{}, fmt.Errorf("no admin token configured\nSet server.admin_token (or CAREERPREP_ADMIN_TOKEN) for both the server and this command")
	}
	return target, nil
}

// adminRequest calls the admin cache endpoint and decodes its JSON body
func adminRequest(ctx context.Context, method string, target adminTarget, v any) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target.base+adminCachePath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+target.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s (is 'careerprep serve' running?): %w", target.base, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("server rejected the admin token")
	case http.StatusNotFound:
		return fmt.Errorf("admin routes are disabled on %s\nStart the server with server.admin_token set", target.base)
	default:
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode server response: %w", err)
	}
	return nil
}

func profileNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
