// Command migrate applies the embedded schema migrations.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/saurav0523/liaplusAI-Backend/internal/migrations"
	"github.com/saurav0523/liaplusAI-Backend/pkg/config"
	"github.com/spf13/cobra"
)

// migrator is the part of *migrations.Migrator the commands drive
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

type openFunc func(databaseURL string) (migrator, error)

func main() {
	open := func(databaseURL string) (migrator, error) {
		return migrations.NewMigrator(databaseURL)
	}
	if err := newRootCmd(open).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the auth database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "",
		"PostgreSQL URL; defaults to the DATABASE_* environment")

	// withMigrator resolves the database URL and closes the migrator after fn
	withMigrator := func(fn func(cmd *cobra.Command, m migrator, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			url := databaseURL
			if url == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				url = cfg.Database.URL()
			}

			m, err := open(url)
			if err != nil {
				return err
			}
			defer m.Close()

			return fn(cmd, m, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Migrations rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Migrate N steps up, or down when N is negative",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
				n, err := parseInt(args[0])
				if err != nil {
					return err
				}
				if err := m.Steps(n); err != nil {
					return err
				}
				cmd.Printf("Migrated %d steps\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				cmd.Printf("version=%d dirty=%t\n", version, dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
				version, err := parseInt(args[0])
				if err != nil {
					return err
				}
				if err := m.Force(version); err != nil {
					return err
				}
				cmd.Printf("Forced version %d\n", version)
				return nil
			}),
		},
	)

	return root
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}
