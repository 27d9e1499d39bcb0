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
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rulegrid/rulegrid/core"
	"github.com/rulegrid/rulegrid/model"
)

var (
	serveAddr     string
	serveInterval time.Duration
)

// serveCmd runs a model slowly and feeds every rule application to
// websocket subscribers, so a front end can watch the grid grow.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run a model and stream step records over websockets",
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := model.LoadFile(modelFile)
		if err != nil {
			return err
		}
		ip, err := def.CompileInterpreter()
		if err != nil {
			return err
		}

		feed := newFeed()
		ctx := cmd.Context()

		go func() {
			for ip.Running() {
				if ctx.Err() != nil {
					return
				}
				_, _, infos := ip.StepN(ctx, 1)
				for _, info := range infos {
					feed.publish(info)
				}
				time.Sleep(serveInterval)
			}
			logger.Info("model exhausted", zap.Int("applications", ip.Ctx.Counter))
		}()

		mux := http.NewServeMux()
		mux.HandleFunc("/feed", feed.handle)
		mux.HandleFunc("/grid", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte(ip.Ctx.Grid.Render()))
		})

		logger.Info("serving", zap.String("addr", serveAddr))
		return http.ListenAndServe(serveAddr, mux)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 50*time.Millisecond, "delay between applications")
}

// feed fans StepInfo records out to websocket subscribers.
type feed struct {
	upgrader websocket.Upgrader
	conns    sync.Map
}

func newFeed() *feed {
	return &feed{}
}

func (f *feed) publish(info core.StepInfo) {
	f.conns.Range(func(k, v interface{}) bool {
		c := v.(chan core.StepInfo)
		select {
		case c <- info:
		default:
			logger.Warn("subscriber blocked", zap.Any("conn", k))
		}
		return true
	})
}

func (f *feed) handle(w http.ResponseWriter, r *http.Request) {
	c, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("upgrade error", zap.Error(err))
		return
	}
	defer c.Close()

	in := make(chan core.StepInfo, 256)
	id := c.RemoteAddr().String()
	f.conns.Store(id, in)
	defer f.conns.Delete(id)

	logger.Info("subscriber connected", zap.String("addr", id))
	for info := range in {
		js, err := json.Marshal(&info)
		if err != nil {
			continue
		}
		if err := c.WriteMessage(websocket.TextMessage, js); err != nil {
			logger.Info("subscriber gone", zap.String("addr", id))
			return
		}
	}
}
