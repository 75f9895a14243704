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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		code int
		lv   string
	}{
		{errs.NewWarn("bad"), http.StatusBadRequest, "warn"},
		{errs.NotFoundf("session %s", "x"), http.StatusNotFound, "not_found"},
		{errs.NewConflict("dup"), http.StatusConflict, "conflict"},
		{errs.NewFatal("boom"), http.StatusInternalServerError, "fatal"},
		{errors.New("plain"), http.StatusInternalServerError, "fatal"},
		{errs.Wrap(context.DeadlineExceeded, "slow"), http.StatusGatewayTimeout, "timeout"},
		{context.Canceled, http.StatusRequestTimeout, "canceled"},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.code {
			t.Fatalf("%v: status %d, want %d", c.err, got, c.code)
		}
		if got := Reply(c.err).Level; got != c.lv {
			t.Fatalf("%v: level %q, want %q", c.err, got, c.lv)
		}
	}
}

func TestErrs(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, errs.NewConflict("session already saved"))
	if rec.Code != http.StatusConflict || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("code=%d header=%v", rec.Code, rec.Header())
	}
	var r dto.ErrorReply
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Level != "conflict" || r.Error == "" {
		t.Fatalf("unexpected reply: %+v", r)
	}

	rec = httptest.NewRecorder()
	Errs(rec, nil)
	if rec.Body.Len() != 0 {
		t.Fatalf("nil error should write nothing")
	}
}
