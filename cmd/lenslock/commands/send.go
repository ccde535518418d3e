package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lenslock/internal/domain"
)

// send <thread> <message>: encrypt and post a message to <thread>.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <thread> <message>",
		Short: "Encrypt and send a message to a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()

			threadID := domain.ThreadID(args[0])
			plaintext := args[1]

			if err := wire.Session.Init(ctx); err != nil {
				return err
			}
			recipients, err := wire.Directory.FetchThreadRecipients(ctx, threadID)
			if err != nil {
				return err
			}
			if err := wire.Session.Send(ctx, threadID, plaintext, recipients); err != nil {
				return err
			}
			fmt.Println("sent")
			return nil
		},
	}
}
