// Command tonewise-admin performs administrative tasks against the ToneWise database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/elucidare/tonewise/config"
	"github.com/elucidare/tonewise/internal/db"
	"github.com/elucidare/tonewise/internal/entitlement"
	"github.com/elucidare/tonewise/internal/events"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/model/timestamp"
	"github.com/elucidare/tonewise/internal/tiers"
	"github.com/elucidare/tonewise/utils"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const envPrefix = "TONEWISE_"

var version = "dev"

type Config struct {
	DatabaseURI   string
	DemoUserID    string
	NatsCluster   string
	CredsPath     string
	BaseSubject   string
	BaseQueueName string
}

// loadConfig loads configuration settings from the environment. We're using koanf directly here so that the
// configuration files don't have to be present to run the administrative utility.
func loadConfig() (*Config, error) {
	k := koanf.New(".")

	// Load the configuration settings from the environment.
	err := k.Load(
		env.Provider(envPrefix, ".",
			func(s string) string {
				return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
			},
		),
		nil,
	)
	if err != nil {
		return nil, err
	}

	// Verify that the database URI is specified.
	databaseURI := k.String("database.uri")
	if databaseURI == "" {
		return nil, fmt.Errorf("%sDATABASE_URI must be defined", envPrefix)
	}

	c := &Config{
		DatabaseURI:   databaseURI,
		DemoUserID:    k.String("demo.user.id"),
		NatsCluster:   k.String("nats.cluster"),
		CredsPath:     k.String("nats.creds.path"),
		BaseSubject:   k.String("nats.base.subject"),
		BaseQueueName: k.String("nats.base.queue"),
	}
	if c.BaseSubject == "" {
		c.BaseSubject = config.DefaultBaseSubject
	}
	if c.BaseQueueName == "" {
		c.BaseQueueName = config.DefaultBaseQueueName
	}

	return c, nil
}

// app holds the services used by the commands.
type app struct {
	Tiers *tiers.Manager
	Gate  *entitlement.Gate
	Close func()
}

type opener func() (*app, error)

// openApp connects to the database and, if it's configured, to NATS so that tier changes are announced.
func openApp() (*app, error) {
	wrapMsg := "unable to initialize the administrative utility"

	c, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	sqlDB, gormDB, err := db.Init("postgres", c.DatabaseURI)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	store := db.NewStore(gormDB)

	var publisher events.Publisher = events.Noop{}
	closers := []func(){func() { _ = sqlDB.Close() }}
	if c.NatsCluster != "" {
		bus, err := events.Connect(&config.Specification{
			NatsCluster:   c.NatsCluster,
			CredsPath:     c.CredsPath,
			BaseSubject:   c.BaseSubject,
			BaseQueueName: c.BaseQueueName,
			MaxReconnects: config.DefaultNATSMaxReconnects,
			ReconnectWait: config.DefaultNATSReconnectWait,
		})
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		publisher = bus
		closers = append(closers, bus.Close)
	}

	return &app{
		Tiers: tiers.NewManager(store, publisher),
		Gate:  entitlement.NewGate(store, store, c.DemoUserID),
		Close: func() {
			for _, closeFn := range closers {
				closeFn()
			}
		},
	}, nil
}

func main() {
	if err := rootCmd(openApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tonewise-admin",
		Short:         "ToneWise administration tool",
		Long:          `tonewise-admin changes subscription tiers and reports usage. Settings are read from TONEWISE_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(setTierCmd(open))
	cmd.AddCommand(usageCmd(open))
	cmd.AddCommand(limitsCmd())

	return cmd
}

// setTierCmd returns the command that changes a user's subscription tier.
func setTierCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "set-tier <user-id> <free|premium>",
		Short: "Set the subscription tier of a user",
		Long: `Set the subscription tier of a user, creating the user's profile if necessary.

Examples:
  tonewise-admin set-tier auth0|12345 premium
  tonewise-admin set-tier auth0|12345 free`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := strings.TrimSpace(args[0])
			if userID == "" {
				return fmt.Errorf("a user ID is required")
			}

			tier, err := model.ParseTier(strings.ToLower(strings.TrimSpace(args[1])))
			if err != nil {
				return err
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			if err = a.Tiers.Set(cmd.Context(), userID, tier, tiers.SourceAdmin); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now on the %s tier\n", userID, tier)
			return nil
		},
	}
}

// usageCmd returns the command that summarizes a user's usage.
func usageCmd(open opener) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "usage <user-id>",
		Short: "Summarize the usage of a user",
		Long: `Summarize the usage of each feature by a user, along with the limits of the user's tier.

Examples:
  tonewise-admin usage auth0|12345
  tonewise-admin usage auth0|12345 --date 2026-03-14`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := utils.Today()
			if date != "" {
				parsed, err := timestamp.Parse(date)
				if err != nil {
					return errors.Wrap(err, "invalid --date")
				}
				day = parsed.Time()
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			summary, err := a.Gate.Summarize(ctx, args[0], day)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(summary)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "The UTC day to summarize (YYYY-MM-DD); defaults to today")

	return cmd
}

// limitsCmd returns the command that lists the usage limits of each tier.
func limitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "List the usage limits of each tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			tierNames := make([]string, 0, len(entitlement.DefaultPolicy))
			for tier := range entitlement.DefaultPolicy {
				tierNames = append(tierNames, string(tier))
			}
			sort.Strings(tierNames)

			for _, name := range tierNames {
				fmt.Fprintf(out, "%s:\n", name)
				for _, feature := range model.FeatureKinds {
					fmt.Fprintf(out, "  %-18s %s\n", feature, describeRule(entitlement.DefaultPolicy.Rule(model.Tier(name), feature)))
				}
			}
			return nil
		},
	}
}

func describeRule(rule entitlement.Rule) string {
	switch {
	case !rule.Available:
		return "not available"
	case rule.Unlimited():
		return "unlimited"
	default:
		return fmt.Sprintf("%d per %s", rule.Ceiling, rule.Period)
	}
}
