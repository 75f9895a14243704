package netsvr

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	DefaultAddr         = ":5808"
	DefaultWriteTimeout = 60 * time.Second
)

// ChiAdapter 以 chi 實作 NetSvr，handler 與 middleware 都是標準 net/http。
//
// /v1/sessions/{id}/live 走 Hijack，middleware 包裝的 ResponseWriter 必須實作 http.Hijacker。
type ChiAdapter struct {
	router chi.Router
	server *http.Server
	addr   string
}

// NewChiServer writeTimeout 需大於單一請求的處理逾時，逾時的 504 才寫得出去；<= 0 時用 DefaultWriteTimeout。
func NewChiServer(addr string, writeTimeout time.Duration) *ChiAdapter {
	if addr == "" {
		addr = DefaultAddr
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
		addr: addr,
	}
}

func (c *ChiAdapter) Ready() bool {
	return c != nil && c.router != nil && c.server != nil &&
		strings.Contains(c.addr, ":") && c.server.Handler == c.router
}

func (c *ChiAdapter) Run() error {
	if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接受新連線並等待進行中的請求；已 Hijack 的 websocket 連線不在等待之列。
func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) {
	c.router.Use(mw)
}

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) {
	c.router.Get(path, h)
}

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) {
	c.router.Post(path, h)
}

func (c *ChiAdapter) Delete(path string, h http.HandlerFunc) {
	c.router.Delete(path, h)
}

func (c *ChiAdapter) Group(path string, fn func(NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&ChiAdapter{router: r})
	})
}

func (c *ChiAdapter) Addr() string {
	return c.addr
}

// Handler 路由本身，給 httptest 或外部 server 掛載。
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}
