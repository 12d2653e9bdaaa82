package main

import (
	"github.com/spf13/cobra"

	"github.com/calehh/hac-market/config"
)

var homeDir string

var rootCmd = &cobra.Command{
	Use:   "market",
	Short: "market posts listings and proposals to a message network",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func home() string {
	if homeDir == "" {
		return config.DefaultHome()
	}
	return homeDir
}

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", "http://127.0.0.1:3100", "market service url")
}
