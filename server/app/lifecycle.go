// Package app 定義應用程式根目錄用以管理長期運行元件的最小生命週期抽象。
package app

import (
	"context"
	"sync"
)

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
// - Run() 應該是阻塞呼叫，直到元件停止為止（正常或錯誤）。
// - Shutdown(ctx) 用於要求優雅關閉；實作方應該尊重 ctx deadline/cancel。
// 典型實例：HTTP Server、session janitor。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Worker 把「跑到 ctx 結束」的背景迴圈包成 Component。
//
// Shutdown 會取消 ctx、等 run 返回，再呼叫 stop（可為 nil）。
type Worker struct {
	run    func(ctx context.Context)
	stop   func(ctx context.Context) error
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewWorker(run func(ctx context.Context), stop func(ctx context.Context) error) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{run: run, stop: stop, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

func (w *Worker) Run() error {
	defer close(w.done)
	w.run(w.ctx)
	return nil
}

func (w *Worker) Shutdown(ctx context.Context) error {
	var err error
	w.once.Do(func() {
		w.cancel()
		select {
		case <-w.done:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
		if w.stop != nil {
			err = w.stop(ctx)
		}
	})
	return err
}
