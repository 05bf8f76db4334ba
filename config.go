package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind      string
	port      int
	prefix    string
	profile   bool
	publicURL string
	tlsCert   string
	tlsKey    string
	verbose   bool
	version   bool

	lobbyGrace       time.Duration
	gameGrace        time.Duration
	turnSeconds      int
	maxRounds        int
	strictHostChecks bool

	geminiAPIKey string
	geminiModel  string
	dummyCards   bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.turnSeconds < 1 {
		return fmt.Errorf("invalid turn length: %d", c.turnSeconds)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CHARADES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "charades",
		Short:         "AI-assisted charades party game, with multiplayer rooms over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CHARADES_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 3001, "port to listen on (env: CHARADES_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: CHARADES_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: CHARADES_PROFILE)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "external base URL used in room share links (env: CHARADES_PUBLIC_URL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: CHARADES_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: CHARADES_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CHARADES_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: CHARADES_VERSION)")

	fs.DurationVar(&cfg.lobbyGrace, "lobby-grace", 30*time.Second, "reconnect window for players who drop before the game starts (env: CHARADES_LOBBY_GRACE)")
	fs.DurationVar(&cfg.gameGrace, "game-grace", 120*time.Second, "reconnect window for players who drop mid-game (env: CHARADES_GAME_GRACE)")
	fs.IntVar(&cfg.turnSeconds, "turn-seconds", 60, "seconds on the clock at the start of each turn (env: CHARADES_TURN_SECONDS)")
	fs.IntVar(&cfg.maxRounds, "max-rounds", 3, "number of rounds new rooms are configured with (env: CHARADES_MAX_ROUNDS)")
	fs.BoolVar(&cfg.strictHostChecks, "strict-host-checks", false, "reply with an error when a non-host sends a host-only action, instead of ignoring it (env: CHARADES_STRICT_HOST_CHECKS)")

	fs.StringVar(&cfg.geminiAPIKey, "gemini-api-key", "", "API key for the Gemini card generator (env: CHARADES_GEMINI_API_KEY)")
	fs.StringVar(&cfg.geminiModel, "gemini-model", "gemini-1.5-flash", "Gemini model used for card generation (env: CHARADES_GEMINI_MODEL)")
	fs.BoolVar(&cfg.dummyCards, "dummy-cards", false, "serve canned cards instead of calling the Gemini API (env: CHARADES_DUMMY_CARDS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("charades v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
