// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "pgm",
	Short:        "A toolbox for discrete table algebra.",
	Long:         "Plans and executes combinations and projections of tables over discrete variables.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging(GetFlag(cmd, "verbose"), GetString(cmd, "log-format"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Println(versionString())
		} else {
			_ = cmd.Help()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Determine the version of this executable.  This is set explicitly when built
// via "make", and comes from the module when built via "go install".
func versionString() string {
	info, ok := debug.ReadBuildInfo()
	//
	switch {
	case Version != "":
		return "pgm " + Version
	case ok && info.Main.Version != "":
		return "pgm " + info.Main.Version
	default:
		// Perhaps "go run"
		return "pgm (unknown version)"
	}
}

// Set the level and format of log messages.  Scheduler and planner traces
// appear only at debug level.
func configureLogging(verbose bool, format string) error {
	switch format {
	case "text":
		log.SetFormatter(&log.TextFormatter{})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q (expected text or json)", format)
	}
	//
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	//
	return nil
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().String("log-format", "text", "format of log messages (text or json)")
	rootCmd.PersistentFlags().Bool("parallel", false, "execute independent operations concurrently")
	rootCmd.PersistentFlags().Uint("workers", 0, "number of parallel workers (0 for one per CPU)")
	rootCmd.PersistentFlags().Uint("steps", 0, "number of operations to consider (0 for all)")
}
