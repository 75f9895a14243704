package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content, 304 Not Modified, 1xx Informational
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// CompressConfig 壓縮等級。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// Compressor 依 Accept-Encoding 選 zstd 或 gzip，encoder 以 sync.Pool 重用。
type Compressor struct {
	cfg      CompressConfig
	gzipPool sync.Pool
	zstdPool sync.Pool
}

func NewCompressor(cfg CompressConfig) *Compressor {
	return &Compressor{cfg: cfg}
}

var defaultCompressor = NewCompressor(DefaultCompressConfig)

// Compression 以預設設定壓縮回應。
func Compression(next http.Handler) http.Handler {
	return defaultCompressor.Handler(next)
}

// --- Zstd ---
func (c *Compressor) getZstd(w io.Writer) (*zstd.Encoder, error) {
	if v := c.zstdPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return zw, nil
	}
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(c.cfg.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
}

func (c *Compressor) putZstd(zw *zstd.Encoder, discard bool) {
	if discard {
		// 204/304 不得帶 footer
		zw.Reset(io.Discard)
	}
	_ = zw.Close()
	c.zstdPool.Put(zw)
}

// --- Gzip ---
func (c *Compressor) getGzip(w io.Writer) (*gzip.Writer, error) {
	if v := c.gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw, nil
	}
	return gzip.NewWriterLevel(w, c.cfg.GzipLevel)
}

func (c *Compressor) putGzip(gw *gzip.Writer, discard bool) {
	if discard {
		gw.Reset(io.Discard)
	}
	_ = gw.Close()
	c.gzipPool.Put(gw)
}

// --- ResponseWriter Wrapper ---

type compressResponseWriter struct {
	http.ResponseWriter
	w        io.Writer // 指向 gzip.Writer 或 zstd.Encoder
	disabled bool      // 標記是否動態取消壓縮
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.w.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		if f, ok := cw.w.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// --- Middleware 入口 ---

func (c *Compressor) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// websocket 與 HEAD 不壓縮；避免二次壓縮
		if r.Method == http.MethodHead || isWebSocketUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}

		encoding := r.Header.Get("Accept-Encoding")
		switch {
		case strings.Contains(encoding, "zstd"):
			zw, err := c.getZstd(w)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Encoding", "zstd")
			w.Header().Add("Vary", "Accept-Encoding")
			cw := &compressResponseWriter{ResponseWriter: w, w: zw}
			defer func() { c.putZstd(zw, cw.disabled) }()
			next.ServeHTTP(cw, r)

		case strings.Contains(encoding, "gzip"):
			gw, err := c.getGzip(w)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")
			cw := &compressResponseWriter{ResponseWriter: w, w: gw}
			defer func() { c.putGzip(gw, cw.disabled) }()
			next.ServeHTTP(cw, r)

		default:
			next.ServeHTTP(w, r)
		}
	})
}
