package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catalab-ai/catalab/cmd/service"
)

func main() {
	root := &cobra.Command{
		Use:   "catalab",
		Short: "catalab catalog question answering service",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand(), service.NewInstallCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
