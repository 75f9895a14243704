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

package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestLivePumpExitUnblocksReader(t *testing.T) {
	ready := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ready <- c
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	conn := <-ready

	out := make(chan any, 1)
	done := make(chan struct{})
	pumped := runLivePump(conn, out, done)

	readErr := make(chan error, 1)
	go func() {
		var v map[string]any
		readErr <- conn.ReadJSON(&v)
	}()

	close(done)
	<-pumped
	select {
	case err := <-readErr:
		if err == nil {
			t.Fatalf("expected read error once the writer is gone")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("reader still blocked after writer exit")
	}
}

func TestLivePumpFlushesQueuedReplies(t *testing.T) {
	ready := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ready <- c
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	conn := <-ready

	out := make(chan any, 2)
	out <- map[string]int{"n": 1}
	out <- map[string]int{"n": 2}
	done := make(chan struct{})
	close(done)
	<-runLivePump(conn, out, done)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for want := 1; want <= 2; want++ {
		var got map[string]int
		if err := client.ReadJSON(&got); err != nil {
			t.Fatalf("read %d: %v", want, err)
		}
		if got["n"] != want {
			t.Fatalf("expected n=%d, got %v", want, got)
		}
	}
	var tail map[string]int
	if err := client.ReadJSON(&tail); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}
