package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgPath  string
	logLevel string
}

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	opts := &rootOptions{}
	var root = &cobra.Command{
		Use:           "newsreel",
		Short:         "Turn trending headlines into short narrated news videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "config file (default is ./config/config.json or ./config.json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override general.log_level")

	root.AddCommand(
		studioCMD(opts),
		headlinesCMD(opts),
		produceCMD(opts),
		serveCMD(opts),
		migrateCMD(opts),
		eventsCMD(opts),
	)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
