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

	"github.com/consensys/go-pgm/pkg/config"
	"github.com/consensys/go-pgm/pkg/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// planCmd reports the operations of a workload and their estimated costs.
var planCmd = &cobra.Command{
	Use:   "plan [flags] workload_file",
	Short: "estimate the cost of a workload without executing it.",
	Long: `Compile a workload into a schedule of operations, and report the number of
elementary operations and the memory required to execute it.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWorkloadCmd(cmd, args, false)
	},
}

// runCmd executes a workload and reports its output tables.
var runCmd = &cobra.Command{
	Use:   "run [flags] workload_file",
	Short: "execute a workload.",
	Long: `Compile a workload into a schedule of operations, execute (some or all of)
them, and report the resulting tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWorkloadCmd(cmd, args, true)
	},
}

func runWorkloadCmd(cmd *cobra.Command, args []string, execute bool) {
	if len(args) != 1 {
		fmt.Println(cmd.UsageString())
		os.Exit(1)
	}
	//
	opts := options{
		execute:  execute,
		parallel: GetFlag(cmd, "parallel"),
		workers:  GetUint(cmd, "workers"),
		steps:    GetUint(cmd, "steps"),
		escapes:  term.IsTerminal(int(os.Stdout.Fd())),
	}
	//
	if execute {
		opts.metrics = GetFlag(cmd, "metrics")
	}
	//
	stats := util.NewPerfStats()
	//
	workload, err := config.Load(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	if err := process(os.Stdout, workload, opts); err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	stats.Log(cmd.Name())
}

func init() {
	runCmd.Flags().Bool("metrics", false, "report scheduler metrics after execution")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
}
