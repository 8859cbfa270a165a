// Command redd obtains Reddit OAuth tokens and queries the account endpoints.
//
// Settings come from flags, a YAML config file (default ./redd.yaml or
// ~/.redd/config.yaml) and REDD_* environment variables, in that order of
// precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	redd "github.com/jamesprial/go-redd"
	"github.com/jamesprial/go-redd/pkg/model"
	"github.com/jamesprial/go-redd/pkg/options"
)

// Config keys shared by flags, the config file and the environment.
const (
	keyUserAgent    = "user_agent"
	keyClientID     = "client_id"
	keySecret       = "secret"
	keyUsername     = "username"
	keyPassword     = "password"
	keyAuthEndpoint = "auth_endpoint"
	keyAPIEndpoint  = "api_endpoint"
	keyLogLevel     = "log_level"
	keyTimeout      = "timeout"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:          "redd",
		Short:        "Reddit OAuth2 API client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default ./redd.yaml or ~/.redd/config.yaml)")
	flags.String("user-agent", "", "User-Agent sent with every request")
	flags.String("client-id", "", "OAuth client ID")
	flags.String("secret", "", "OAuth client secret")
	flags.String("username", "", "Reddit username (selects the password grant)")
	flags.String("password", "", "Reddit password (selects the password grant)")
	flags.String("auth-endpoint", "", "authorization host (default "+options.DefaultAuthEndpoint+")")
	flags.String("api-endpoint", "", "API host (default "+options.DefaultAPIEndpoint+")")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.Duration("timeout", 30*time.Second, "HTTP request timeout")

	for key, flag := range map[string]string{
		keyUserAgent:    "user-agent",
		keyClientID:     "client-id",
		keySecret:       "secret",
		keyUsername:     "username",
		keyPassword:     "password",
		keyAuthEndpoint: "auth-endpoint",
		keyAPIEndpoint:  "api-endpoint",
		keyLogLevel:     "log-level",
		keyTimeout:      "timeout",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(c.tokenCmd(), c.meCmd(), c.versionCmd())
	return root
}

func (c *cli) loadConfig() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		c.v.SetConfigName("redd")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(home + "/.redd")
		}
	}
	c.v.SetEnvPrefix("redd")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.v.GetString(keyLogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
	return nil
}

func (c *cli) clientOptions() []redd.ClientOption {
	return []redd.ClientOption{
		redd.WithLogger(c.logger),
		redd.WithHTTPClient(&http.Client{Timeout: c.v.GetDuration(keyTimeout)}),
	}
}

// settings copies the non-empty string settings into an option map.
func (c *cli) settings(keys map[string]string) map[string]any {
	attrs := make(map[string]any, len(keys))
	for option, key := range keys {
		if s := c.v.GetString(key); s != "" {
			attrs[option] = s
		}
	}
	return attrs
}

// strategy picks the password grant when a username and password are
// configured and the client credentials grant otherwise.
func (c *cli) strategy() (redd.Strategy, error) {
	opts, err := options.NewAuthorization(c.settings(map[string]string{
		options.KeyUserAgent: keyUserAgent,
		options.KeyEndpoint:  keyAuthEndpoint,
		options.KeyClientID:  keyClientID,
		options.KeySecret:    keySecret,
		options.KeyUsername:  keyUsername,
		options.KeyPassword:  keyPassword,
	}))
	if err != nil {
		return nil, err
	}

	if opts.Username() != "" && opts.Password() != "" {
		c.logger.Debug("using password grant", "options", opts)
		return redd.NewScript(opts, c.clientOptions()...)
	}
	c.logger.Debug("using client credentials grant", "options", opts)
	return redd.NewUserless(opts, c.clientOptions()...)
}

func (c *cli) authorize(ctx context.Context) (*model.Access, error) {
	strategy, err := c.strategy()
	if err != nil {
		return nil, fmt.Errorf("configure authorization: %w", err)
	}
	access, err := strategy.Authorize(ctx)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	return access, nil
}

func (c *cli) tokenCmd() *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain an access token and print its metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			access, err := c.authorize(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "token_type:  %s\n", access.TokenType())
			fmt.Fprintf(c.out, "scope:       %s\n", access.Scope())
			fmt.Fprintf(c.out, "expires_at:  %s\n", access.ExpiresAt().Format(time.RFC3339))
			fmt.Fprintf(c.out, "refreshable: %t\n", access.IsRefreshable())
			if showToken {
				fmt.Fprintf(c.out, "access_token: %s\n", access.AccessToken())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showToken, "show-token", false, "also print the access token")
	return cmd
}

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Print the name of the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			access, err := c.authorize(cmd.Context())
			if err != nil {
				return err
			}

			attrs := c.settings(map[string]string{
				options.KeyUserAgent: keyUserAgent,
				options.KeyEndpoint:  keyAPIEndpoint,
			})
			attrs[options.KeyAccess] = access
			opts, err := options.NewAPI(attrs)
			if err != nil {
				return fmt.Errorf("configure API: %w", err)
			}

			api, err := redd.NewAPI(opts, c.clientOptions()...)
			if err != nil {
				return fmt.Errorf("configure API: %w", err)
			}
			defer api.Close()

			user, err := api.Account().Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch current user: %w", err)
			}
			fmt.Fprintln(c.out, user)
			return nil
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the redd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "redd %s\n", redd.Version)
		},
	}
}
