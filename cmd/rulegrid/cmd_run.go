/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rulegrid/rulegrid/checkpoint"
	"github.com/rulegrid/rulegrid/gen"
	"github.com/rulegrid/rulegrid/model"
)

var (
	runSeed      uint64
	runBudget    int
	runDB        string
	runSaveEvery int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run a model to completion and print the grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := model.LoadFile(modelFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			def.Seed = runSeed
		}

		if len(def.Pipeline) > 0 {
			return runPipeline(cmd, def)
		}
		return runTree(cmd, def)
	},
}

func init() {
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "override the model's seed")
	runCmd.Flags().IntVar(&runBudget, "budget", 0, "stop after this many rule applications (0 = run to exhaustion)")
	runCmd.Flags().StringVar(&runDB, "db", "", "checkpoint database file")
	runCmd.Flags().IntVar(&runSaveEvery, "save-every", 0, "snapshot every N applications (needs --db)")
}

func runTree(cmd *cobra.Command, def *model.Def) error {
	ip, err := def.CompileInterpreter()
	if err != nil {
		return err
	}

	var store *checkpoint.Store
	if runDB != "" {
		store = checkpoint.NewStore(runDB, logger)
		if err := store.Open(); err != nil {
			return err
		}
		defer store.Close()
	}

	ctx := cmd.Context()
	for ip.Running() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if runBudget > 0 && runBudget <= ip.Ctx.Counter {
			break
		}
		budget := runSaveEvery
		if budget <= 0 {
			budget = 1024
		}
		if runBudget > 0 && runBudget-ip.Ctx.Counter < budget {
			budget = runBudget - ip.Ctx.Counter
		}
		ip.StepN(ctx, budget)
		if store != nil && runSaveEvery > 0 {
			snap := checkpoint.TakeTree(ip)
			if err := store.Put(ctx, snap); err != nil {
				return err
			}
			logger.Info("snapshot", zap.String("id", snap.ID), zap.Int("counter", snap.Counter))
		}
	}

	logger.Info("run complete",
		zap.String("model", def.Name),
		zap.Uint64("seed", ip.Seed()),
		zap.Int("applications", ip.Ctx.Counter))
	fmt.Println(ip.Ctx.Grid.Render())
	return nil
}

func runPipeline(cmd *cobra.Command, def *model.Def) error {
	g, err := def.NewGrid()
	if err != nil {
		return err
	}
	root, err := def.CompilePipeline(g)
	if err != nil {
		return err
	}
	runner, err := gen.NewRunner(root, g, def.Seed, logger)
	if err != nil {
		return err
	}
	if err := runner.Run(cmd.Context()); err != nil {
		return err
	}
	fmt.Println(g.Render())
	return nil
}
