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

package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

const pprofDir = "build/profiling" // pprof檔案寫入路徑

// RunPProf 依 mode 決定執行哪種 Profiling；空字串或未知 mode 直接執行 exe。
//
//	go run ./cmd/sim -p cpu
//	go run ./cmd/sim -p mutex -worker 8
//
// 模式：cpu、heap（in-use 快照）、allocs（累積配置）、mutex 與 block（併發 worker 的鎖競爭）。
func RunPProf(exe func(), mode string) {
	switch mode {
	case "cpu":
		PProfCPU(exe)
	case "heap":
		exe()
		// 盡量讓快照貼近最新狀態
		runtime.GC()
		writeProfile("heap")
	case "allocs":
		exe()
		writeProfile("allocs")
	case "mutex":
		runtime.SetMutexProfileFraction(1)
		exe()
		writeProfile("mutex")
		runtime.SetMutexProfileFraction(0)
	case "block":
		runtime.SetBlockProfileRate(1)
		exe()
		writeProfile("block")
		runtime.SetBlockProfileRate(0)
	default:
		exe()
	}
}

// PProfCPU 對 exe 做 CPU profiling，可作性能分析，也可以拿來做構建時給 pgo 的優化 blueprint。
// 輸出檔：build/profiling/cpu.pprof
func PProfCPU(exe func()) {
	f := create("cpu")
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		panic("failed to start pprof : " + err.Error())
	}
	defer pprof.StopCPUProfile()

	exe()
}

func writeProfile(name string) {
	prof := pprof.Lookup(name)
	if prof == nil {
		return
	}
	f := create(name)
	defer f.Close()
	if err := prof.WriteTo(f, 0); err != nil {
		panic(fmt.Sprintf("failed to write %s profile : %v", name, err))
	}
}

func create(name string) *os.File {
	_ = os.MkdirAll(pprofDir, 0o755)
	f, err := os.Create(filepath.Join(pprofDir, name+".pprof"))
	if err != nil {
		panic(fmt.Sprintf("failed to create %s.pprof : %v", name, err))
	}
	return f
}
