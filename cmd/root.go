package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "parkbot",
		Short: "Books the office parking spot before anyone else gets to it",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "parkbot.yaml", "path to the config file (optional)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newReserveCmd(&configPath))
	root.AddCommand(newStatusCmd(&configPath))
	root.AddCommand(newDaemonCmd(&configPath))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
