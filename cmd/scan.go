// Copyright 2024 The OpenIndex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/openindex/openindex"
	"github.com/openindex/openindex/crawler"
)

func init() {
	scanCmd.Flags().String("config", "", "TOML config file; flags override its values")
	scanCmd.Flags().Int("threads", 0, "initial number of crawl workers")
	scanCmd.Flags().Int("timeout", 0, "per-request timeout in seconds")
	scanCmd.Flags().Int("max-depth", 0, "recursion depth limit (0 = unbounded)")
	scanCmd.Flags().String("user-agent", "", "User-Agent header for all requests")
	scanCmd.Flags().Bool("debug", false, "verbose, human-readable logging")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [--config file] [url...]",
	Short: "Index one or more open directories",
	Long: `Crawls the given open-directory URLs breadth-first, parses every
listing page, and prints a summary of what was found. Interrupting the
crawl (Ctrl-C) stops cleanly and reports the partial result.`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := scanConfig(cmd.Flags(), args)
	if err != nil {
		return err
	}

	logger := openindex.SetupLogging(cfg.Debug)
	defer logger.Sync() //nolint:errcheck

	c, err := crawler.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	roots, runErr := c.Run(ctx)
	stats := crawler.Collect(roots)
	fmt.Println(stats.Summary())

	if runErr != nil {
		logger.Warn("crawl interrupted", zap.Error(runErr))
	}
	return nil
}

// scanConfig layers config sources: defaults, then the config file,
// then any explicitly set flags, then positional roots.
func scanConfig(flags *pflag.FlagSet, args []string) (*crawler.Config, error) {
	cfg := crawler.DefaultConfig()

	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := crawler.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("threads") {
		cfg.Threads, _ = flags.GetInt("threads")
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds, _ = flags.GetInt("timeout")
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}

	cfg.Roots = append(cfg.Roots, args...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
