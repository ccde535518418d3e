package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lenslock/internal/app"
	"lenslock/internal/domain"
)

var (
	home         string
	directoryURL string
	user         string
	passphrase   string
	timeout      time.Duration
	verbose      bool

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "lenslock",
		Short: "End-to-end encrypted thread messaging CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user required")
			}
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".lenslock")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()

			var err error
			wire, err = app.NewWire(app.Config{
				Home:         home,
				DirectoryURL: directoryURL,
				UserID:       domain.UserID(user),
				Passphrase:   passphrase,
				Logger:       log,
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.lenslock)")
	root.PersistentFlags().StringVar(&directoryURL, "directory", "http://127.0.0.1:8080", "key-directory base URL")
	root.PersistentFlags().StringVar(&user, "user", "", "your user id")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing the local key store")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per-command deadline")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(initCmd(), fingerprintCmd(), sendCmd(), recvCmd())
	return root.Execute()
}

// opCtx bounds a subcommand by --timeout.
func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
