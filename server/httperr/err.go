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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel → 504/408（請求生命週期問題）
//   - errs.Warn         → 400（請求/參數問題）
//   - errs.NotFound     → 404（遊戲、session、玩家不存在）
//   - errs.Conflict     → 409（對局未結束、重複存檔、容量已滿）
//   - errs.Fatal        → 500（系統/不可恢復問題）
//
// 本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	}

	if e, ok := errs.AsErr(err); ok {
		switch e.ErrLv {
		case errs.Warn:
			return http.StatusBadRequest // 400
		case errs.NotFound:
			return http.StatusNotFound // 404
		case errs.Conflict:
			return http.StatusConflict // 409
		}
	}
	return http.StatusInternalServerError
}

// Reply 錯誤回覆內容；level 取自 errs 分級，非 errs 錯誤一律為 fatal。
func Reply(err error) dto.ErrorReply {
	lv := errs.ErrLv(errs.Fatal)
	if e, ok := errs.AsErr(err); ok {
		lv = errs.ErrLv(e.ErrLv)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		lv = "timeout"
	case errors.Is(err, context.Canceled):
		lv = "canceled"
	}
	return dto.ErrorReply{Error: err.Error(), Level: lv}
}

// Errs 寫回 JSON 錯誤。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Reply(err))
}

// Log 只記錄值得注意的錯誤：408/409/429 為 warn，5xx 為 error，其餘不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
