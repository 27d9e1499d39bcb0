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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rulegrid/rulegrid/gen"
	"github.com/rulegrid/rulegrid/model"
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "print a model's tree structure as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := model.LoadFile(modelFile)
		if err != nil {
			return err
		}

		var structure interface{}
		if len(def.Pipeline) > 0 {
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
			structure = runner.Structure()
		} else {
			ip, err := def.CompileInterpreter()
			if err != nil {
				return err
			}
			structure = ip.Structure()
		}

		js, err := json.MarshalIndent(structure, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(js))
		return nil
	},
}
