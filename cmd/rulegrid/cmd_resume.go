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
	"github.com/rulegrid/rulegrid/model"
)

var (
	resumeDB string
	resumeID string
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "resume a checkpointed run and finish it",
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := model.LoadFile(modelFile)
		if err != nil {
			return err
		}
		ip, err := def.CompileInterpreter()
		if err != nil {
			return err
		}

		store := checkpoint.NewStore(resumeDB, logger)
		if err := store.Open(); err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		id := resumeID
		if id == "" {
			// Latest by capture time.
			ids, err := store.List(ctx)
			if err != nil {
				return err
			}
			var latest *checkpoint.Snapshot
			for _, candidate := range ids {
				snap, err := store.Get(ctx, candidate)
				if err != nil {
					return err
				}
				if latest == nil || latest.TakenAt.Before(snap.TakenAt) {
					latest = snap
				}
			}
			if latest == nil {
				return &checkpoint.NotFound{ID: "(any)"}
			}
			id = latest.ID
		}

		snap, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := checkpoint.Restore(ip, snap); err != nil {
			return err
		}
		logger.Info("resumed",
			zap.String("id", snap.ID),
			zap.Int("counter", snap.Counter))

		ip.Run(ctx)
		logger.Info("run complete", zap.Int("applications", ip.Ctx.Counter))
		fmt.Println(ip.Ctx.Grid.Render())
		return nil
	},
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDB, "db", "", "checkpoint database file")
	resumeCmd.Flags().StringVar(&resumeID, "id", "", "snapshot ID (default: most recent)")
}
