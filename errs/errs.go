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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : 錯誤分級，讓邊界層（HTTP / CLI）決定如何回應。
//
// 規則引擎本身不回傳錯誤；會用到這裡的只有設定解析、註冊表、session 管理與持久層。
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
	NotFound
	Conflict
)

var errLvMap = map[ErrLevel]string{
	None:     "",
	Fatal:    "fatal",
	Warn:     "warn",
	Log:      "log",
	NotFound: "not_found",
	Conflict: "conflict",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為額外上下文（例如 game id / session id）；
// Cause 串接下層錯誤；ErrLv 為嚴重度。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

// Error 實作 error 介面。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewNotFound(msg string) *E {
	return &E{Message: msg, ErrLv: NotFound}
}

func NewConflict(msg string) *E {
	return &E{Message: msg, ErrLv: Conflict}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func NotFoundf(format string, a ...any) *E {
	return NewNotFound(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但附加上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 以訊息包裝底層錯誤。
//
//   - cause 已經是 *E：沿用其 ErrLv。
//   - cause 來自標準庫或三方依賴（yaml / sqlite / websocket ...）：一律視為 Fatal。
//
// 可預期、可處理的情境請直接 New 一個 *E 並自行指定等級，不要 Wrap。
func Wrap(cause error, msg string) *E {
	r := New(levelOf(cause), msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 同 Wrap，並附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := NewWithExtra(levelOf(cause), msg, extra)
	r.Cause = cause
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// Is 判斷 err 鏈上是否有指定等級的 *E。
func Is(err error, lv ErrLevel) bool {
	e, ok := AsErr(err)
	return ok && e.ErrLv == lv
}

func levelOf(cause error) ErrLevel {
	if e, ok := AsErr(cause); ok {
		return e.ErrLv
	}
	return Fatal
}
