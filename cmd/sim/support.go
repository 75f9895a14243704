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
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"os"

	"github.com/zintix-labs/dartlab"
	"github.com/zintix-labs/dartlab/games"
	"github.com/zintix-labs/dartlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	game      string
	level     int
	training  bool
	worker    int
	matches   int
	skill     float64
	maxRounds int
	seed      int64
	curve     bool
	target    float64
	out       string
	format    stats.Format
	pprofmode string
}

func bindVar() {
	flag.StringVar(&cfg.game, "game", "atc", "game id or title")
	flag.IntVar(&cfg.level, "level", 1, "game level")
	flag.BoolVar(&cfg.training, "training", false, "training mode with default settings")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.matches, "n", 10000, "matches per worker")
	flag.Float64Var(&cfg.skill, "skill", 0.5, "bot skill in [0,1]")
	flag.IntVar(&cfg.maxRounds, "max-rounds", 0, "rounds before the bot gives up (0: default)")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.BoolVar(&cfg.curve, "curve", false, "simulate every level and print the difficulty curve")
	flag.Float64Var(&cfg.target, "target", 0.5, "target win rate for level recommendation (with -curve)")
	flag.StringVar(&cfg.out, "out", "table", "output: table, json, yaml")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = max(1, seed.Int64())
	}
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	cfg.valid() // 基本檢查

	lab, err := dartlab.NewAuto(
		dartlab.Tables(games.Tables),
		dartlab.Games(games.Games),
	)
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulator(cfg.game, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	showpb := cfg.format == stats.FormatTable

	if cfg.curve {
		if showpb {
			p.Printf("%s[WORKERS:%d] [GAME:%s] [SKILL:%.2f] [MATCHES/LEVEL:%d] [SEED:%d]%s\n", green, cfg.worker, s.Title, cfg.skill, cfg.worker*cfg.matches, cfg.seed, reset)
		}
		c, _, err := s.SimLevels(cfg.skill, cfg.matches, cfg.worker, showpb)
		if err != nil {
			log.Fatal(err)
		}
		if r := stats.RenderOf[stats.LevelCurve](cfg.format); r != nil {
			err = r.Write(os.Stdout, c)
		} else {
			c.Out(os.Stdout)
			p.Printf("recommended level for %.0f%% win rate: %d\n", 100*cfg.target, c.Recommend(cfg.target))
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	if showpb {
		p.Printf("%s[WORKERS:%d] [GAME:%s] [LEVEL:%d] [SKILL:%.2f] [MATCHES:%d] [SEED:%d]%s\n", green, cfg.worker, s.Title, cfg.level, cfg.skill, cfg.worker*cfg.matches, cfg.seed, reset)
	}
	st, used, err := s.SimMP(dartlab.SimParams{
		Level:     cfg.level,
		Training:  cfg.training,
		Skill:     cfg.skill,
		MaxRounds: cfg.maxRounds,
	}, cfg.matches, cfg.worker, showpb)
	if err != nil {
		log.Fatal(err)
	}
	if r := stats.RenderOf[stats.SimReport](cfg.format); r != nil {
		err = st.WriteWith(os.Stdout, r)
	} else {
		st.StdOut(os.Stdout, used)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}
	if cfg.matches < 1 {
		log.Fatal("value err : n must > 0")
	}
	if cfg.skill < 0 || cfg.skill > 1 {
		log.Fatal("value err : skill must be in [0,1]")
	}
	if cfg.level < 1 {
		log.Fatal("value err : level must > 0")
	}
	f, err := stats.ParseFormat(cfg.out)
	if err != nil {
		log.Fatal(err)
	}
	cfg.format = f
	// 難度曲線每個等級都要跑一次，總場數過大時縮減
	if cfg.curve && cfg.matches*cfg.worker > 100000 {
		cfg.matches = max(1, 100000/cfg.worker)
		p.Printf("too many matches per level: resized to %d per worker\n", cfg.matches)
	}
}
