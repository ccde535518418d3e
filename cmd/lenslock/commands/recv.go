package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lenslock/internal/domain"
)

// recv <thread>: fetch and decrypt a thread's stored messages.
func recvCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recv <thread>",
		Short: "Fetch and decrypt a thread's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()

			threadID := domain.ThreadID(args[0])

			if err := wire.Session.Init(ctx); err != nil {
				return err
			}
			msgs, err := wire.Session.Receive(ctx, threadID, limit)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s\n", m.SenderUserID, m.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max messages to fetch (0 = all)")
	return cmd
}
