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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/zintix-labs/dartlab"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/server/logger"
	"github.com/zintix-labs/dartlab/store"
)

// EnvPrefix 環境變數前綴。
const EnvPrefix = "DARTLAB_"

// Options 可由 flag 或 DARTLAB_* 環境變數設定的數值。
type Options struct {
	Addr           string        `env:"ADDR"`            // 監聽位址，例如 :5808
	DBPath         string        `env:"DB"`              // sqlite 檔案路徑；空字串使用記憶體 store
	LogMode        string        `env:"LOG_MODE"`        // ModeDev|ModeProd|ModeSilence
	SessionTTL     time.Duration `env:"SESSION_TTL"`     // session 閒置淘汰時間
	SweepEvery     time.Duration `env:"SWEEP_EVERY"`     // janitor 掃描間隔
	MaxSessions    int           `env:"MAX_SESSIONS"`    // 同時存活 session 上限
	MaxSimWorkers  int           `env:"MAX_SIM_WORKERS"` // /v1/sim 的 workers 上限
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"` // 單一請求逾時
}

type SvrCfg struct {
	Log   *slog.Logger
	Lab   *dartlab.Lab
	Store store.Store
	Opt   Options
}

// LoadEnv 以 DARTLAB_* 環境變數覆蓋 Opt；未設定的變數保留原值。
func (sc *SvrCfg) LoadEnv() error {
	if err := env.ParseWithOptions(&sc.Opt, env.Options{Prefix: EnvPrefix}); err != nil {
		return errs.Wrap(err, "parse env")
	}
	return nil
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	if sc.Store == nil {
		sc.Store = store.NewMemory()
	}
	if sc.Opt.Addr == "" {
		sc.Opt.Addr = ":5808"
	}
	// 1 <= MaxSimWorkers <= 32
	// for 資源管理
	sc.Opt.MaxSimWorkers = max(1, sc.Opt.MaxSimWorkers)
	sc.Opt.MaxSimWorkers = min(32, sc.Opt.MaxSimWorkers)
	if sc.Opt.RequestTimeout <= 0 {
		sc.Opt.RequestTimeout = 5 * time.Second
	}
	if sc.Opt.SessionTTL < 0 || sc.Opt.SweepEvery < 0 || sc.Opt.MaxSessions < 0 {
		return errs.NewWarn("session options must not be negative")
	}
	return nil
}

// RuntimeOptions 轉成 session 管理器設定。
func (sc *SvrCfg) RuntimeOptions() dartlab.RuntimeOptions {
	return dartlab.RuntimeOptions{
		TTL:         sc.Opt.SessionTTL,
		SweepEvery:  sc.Opt.SweepEvery,
		MaxSessions: sc.Opt.MaxSessions,
	}
}
