//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"qubic/app"
	"qubic/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var console bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&cfg.Listen, "listen", "", "TCP address for the line transport (empty = off).")
	flag.BoolVar(&console, "console", false, "Show the scrolling event console instead of the panel.")
	flag.Parse()

	newApp := func(h hal.HAL) func() error {
		return app.NewWithConfig(h, app.Config{Console: console})
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp, hal.HostConfig{Listen: cfg.Listen}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
