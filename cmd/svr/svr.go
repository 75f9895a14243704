// Copyright 2025 Zintix Labs
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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/dartlab"
	"github.com/zintix-labs/dartlab/games"
	"github.com/zintix-labs/dartlab/server"
	"github.com/zintix-labs/dartlab/server/logger"
	"github.com/zintix-labs/dartlab/server/svrcfg"
	"github.com/zintix-labs/dartlab/store"
	"github.com/zintix-labs/dartlab/store/sqlite"
)

// 旗標先決定預設值，DARTLAB_* 環境變數再覆蓋。
func main() {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = server.Run(cfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*svrcfg.SvrCfg, func(), error) {
	sCfg := new(svrcfg.SvrCfg)
	o := &sCfg.Opt
	flag.StringVar(&o.Addr, "addr", ":5808", "listen address")
	flag.StringVar(&o.DBPath, "db", "", "sqlite database path (empty: in-memory store)")
	flag.StringVar(&o.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.DurationVar(&o.SessionTTL, "session-ttl", dartlab.DefaultSessionTTL, "idle time before a session is evicted")
	flag.DurationVar(&o.SweepEvery, "sweep", dartlab.DefaultSweepEvery, "janitor sweep interval")
	flag.IntVar(&o.MaxSessions, "max-sessions", dartlab.DefaultMaxSessions, "max live sessions")
	flag.IntVar(&o.MaxSimWorkers, "sim-workers", 4, "max workers for /v1/sim")
	flag.DurationVar(&o.RequestTimeout, "timeout", 0, "per-request timeout (0: default)")
	flag.Parse()

	if err := sCfg.LoadEnv(); err != nil {
		return nil, func() {}, err
	}

	log, ah := logger.NewAsync(4096, logger.ParseMode(o.LogMode))
	sCfg.Log = log

	lab, err := dartlab.NewAuto(
		dartlab.Tables(games.Tables),
		dartlab.Games(games.Games),
	)
	if err != nil {
		return nil, ah.Close, err
	}
	sCfg.Lab = lab

	if o.DBPath == "" {
		sCfg.Store = store.NewMemory()
		return sCfg, ah.Close, nil
	}
	st, err := sqlite.Open(context.Background(), o.DBPath)
	if err != nil {
		return nil, ah.Close, err
	}
	sCfg.Store = st
	return sCfg, ah.Close, nil
}
