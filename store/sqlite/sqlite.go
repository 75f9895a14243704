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

// Package sqlite 以 modernc.org/sqlite（純 Go，不需 cgo）實作 store.Store。
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/levelsys"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/store"
	"github.com/zintix-labs/dartlab/store/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store SQLite 版的對局紀錄。
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open 開啟（或建立）資料庫並套用內嵌的 migrations。
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errs.NewFatal("sqlite path required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(err, "open sqlite db")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "run migrations")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveMatch(ctx context.Context, m store.MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Valid(); err != nil {
		return err
	}
	stats, err := json.Marshal(m.Stats)
	if err != nil {
		return errs.Wrap(err, "encode match stats")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (
		   id, player, game_id, category, level, training, seed, mode,
		   xp, sr, won, darts, rounds, stats, played_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Player, m.GameID, string(m.Category), m.Level, boolInt(m.Training), m.Seed, m.Mode,
		m.XP, m.SR, boolInt(m.Won), m.Darts, m.Rounds, string(stats), m.PlayedAt.UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.NewConflict("match already saved: " + m.ID)
		}
		return errs.Wrap(err, "insert match")
	}
	return nil
}

func (s *Store) Profile(ctx context.Context, player string) (store.Profile, error) {
	if err := ctx.Err(); err != nil {
		return store.Profile{}, err
	}
	player = strings.TrimSpace(player)
	p := store.Profile{Player: player, BestSR: map[dart.Category]int{}}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(xp), 0),
		        COALESCE(SUM(CASE WHEN training = 0 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN training = 0 AND won = 1 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN training = 0 THEN darts ELSE 0 END), 0)
		   FROM matches WHERE player = ?`, player,
	).Scan(&total, &p.TotalXP, &p.Games, &p.Wins, &p.Darts)
	if err != nil {
		return store.Profile{}, errs.Wrap(err, "query profile")
	}
	if total == 0 {
		return store.Profile{}, errs.NotFoundf("player %q has no matches", player)
	}
	p.Training = total - p.Games

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, MAX(sr) FROM matches
		  WHERE player = ? AND training = 0
		  GROUP BY category`, player)
	if err != nil {
		return store.Profile{}, errs.Wrap(err, "query best sr")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cat string
			sr  int
		)
		if err := rows.Scan(&cat, &sr); err != nil {
			return store.Profile{}, errs.Wrap(err, "scan best sr")
		}
		p.BestSR[dart.Category(cat)] = sr
	}
	if err := rows.Err(); err != nil {
		return store.Profile{}, errs.Wrap(err, "iterate best sr")
	}
	p.Level = levelsys.Level(p.TotalXP)
	p.Progress = levelsys.Progress(p.TotalXP)
	return p, nil
}

func (s *Store) Matches(ctx context.Context, player string, limit int) ([]store.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player, game_id, category, level, training, seed, mode,
		        xp, sr, won, darts, rounds, stats, played_at
		   FROM matches WHERE player = ?
		  ORDER BY played_at DESC, rowid DESC
		  LIMIT ?`, strings.TrimSpace(player), min(limit, 500))
	if err != nil {
		return nil, errs.Wrap(err, "query matches")
	}
	defer rows.Close()

	out := make([]store.MatchRecord, 0, limit)
	for rows.Next() {
		var (
			m         store.MatchRecord
			cat       string
			training  int
			won       int
			statsJSON string
			playedAt  int64
		)
		if err := rows.Scan(&m.ID, &m.Player, &m.GameID, &cat, &m.Level, &training, &m.Seed, &m.Mode,
			&m.XP, &m.SR, &won, &m.Darts, &m.Rounds, &statsJSON, &playedAt); err != nil {
			return nil, errs.Wrap(err, "scan match")
		}
		m.Category = dart.Category(cat)
		m.Training = training != 0
		m.Won = won != 0
		m.PlayedAt = time.UnixMilli(playedAt).UTC()
		if err := json.Unmarshal([]byte(statsJSON), &m.Stats); err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("decode stats of match %s", m.ID))
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "iterate matches")
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
