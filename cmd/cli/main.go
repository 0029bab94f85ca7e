package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/sherlockchat/cmd/cli/casescmd"
	"github.com/myrjola/sherlockchat/cmd/cli/rulescmd"
	"github.com/spf13/cobra"
)

func init() {
	// The .env file is optional, flags and the environment work without it.
	_ = godotenv.Load()
	rootCmd.PersistentFlags().String("cases-dir", "./cases", "directory with case files")
	rootCmd.PersistentFlags().String("rules-dir", "./cases/rules", "directory with rule files")
	rootCmd.AddGroup(rulescmd.Group)
	rootCmd.AddCommand(rulescmd.Command)
	rootCmd.AddGroup(casescmd.Group)
	rootCmd.AddCommand(casescmd.Command)
}

var rootCmd = &cobra.Command{
	Use:          "sherlockchat-cli",
	Long:         `Authoring utilities for SherlockChat cases and clue rules`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
