package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moonbound/moonbound/internal/auth"
	"github.com/moonbound/moonbound/internal/config"
	"github.com/moonbound/moonbound/internal/logging"
	"github.com/moonbound/moonbound/internal/tui"
	"github.com/moonbound/moonbound/pkg/api"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

type env struct {
	cfg    *config.Config
	client *api.Client
	store  *auth.Store
}

// setup wires config, logging, the API client and the auth store. Every
// command goes through it.
func setup() (*env, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(dir, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	client := api.New(cfg.APIBaseURL, log)
	store := auth.NewStore(client, auth.NewTokenFile(dir), log)
	return &env{cfg: cfg, client: client, store: store}, nil
}

var rootCmd = &cobra.Command{
	Use:   "moonbound",
	Short: "Interpret your dreams from the terminal",
	Long: "MoonBound is a terminal client for the dream interpretation service: " +
		"describe a dream, read its interpretation, ask follow-up questions and " +
		"browse your saved sessions.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		app := tui.NewApp(e.client, e.store, e.cfg, version)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui error: %w", err)
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		email, password, err := promptCredentials()
		if err != nil {
			return err
		}
		if err := e.store.Login(cmd.Context(), email, password); err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", e.store.User().DisplayName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		e.store.Logout()
		fmt.Println("signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the currently signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		if e.store.Hydrate(cmd.Context()) != auth.StateAuthenticated {
			return fmt.Errorf("not signed in (run `moonbound login`)")
		}
		u := e.store.User()
		if u.Nombre != "" {
			fmt.Printf("Name:  %s\n", u.Nombre)
		}
		fmt.Printf("Email: %s\n", u.Email)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		if err := e.client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("api unreachable: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the moonbound version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("moonbound " + version)
	},
}

// promptCredentials reads an email from stdin and a password without echo.
func promptCredentials() (string, string, error) {
	fmt.Print("email: ")
	reader := bufio.NewReader(os.Stdin)
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read email: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	return email, strings.TrimSpace(string(raw)), nil
}

func main() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, healthCmd, versionCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
