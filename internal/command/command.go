package command

import (
	commandHandler "meridian/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewEnsureIndexesHandler)

type Command struct {
	ensureIndexesHandler *commandHandler.EnsureIndexesHandler
}

// NewCommand .
func NewCommand(
	ensureIndexesHandler *commandHandler.EnsureIndexesHandler,
) *Command {
	return &Command{
		ensureIndexesHandler: ensureIndexesHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "ensure-indexes",
			Short: "apply index definitions to all MongoDB collections",
			Run: func(cmd *cobra.Command, args []string) {
				command, cleanup, err := newCmd()
				if err != nil {
					panic(err)
				}
				defer cleanup()

				command.ensureIndexesHandler.Run(cmd, args)
			},
		},
	)
}
