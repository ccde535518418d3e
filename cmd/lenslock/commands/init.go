package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Resolve or create the local identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()

			if err := wire.Session.Init(ctx); err != nil {
				return err
			}
			fp, err := wire.Session.Fingerprint()
			if err != nil {
				return err
			}
			fmt.Printf("Identity ready.\nFingerprint: %s\n", fp)
			return nil
		},
	}
}
