// Package sqlite provides a SQLite-backed archive of finished darts matches.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"darts/internal/ports"
	"darts/internal/storage/sqlite/migrations"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists finished matches in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite archive at path, creating parent directories, and
// applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveFinishedMatch inserts a match and its player rows in one transaction.
func (s *Store) SaveFinishedMatch(ctx context.Context, match ports.FinishedMatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	matchID := strings.TrimSpace(match.MatchID)
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}
	endedAt := match.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save finished match: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO finished_matches (match_id, starting_score, winner_id, ended_at)
		 VALUES (?, ?, ?, ?)`,
		matchID,
		match.StartingScore,
		match.WinnerID,
		toMillis(endedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAlreadyArchived
		}
		return fmt.Errorf("insert finished match: %w", err)
	}

	for seat, p := range match.Players {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO match_players (
			   match_id,
			   seat,
			   player_id,
			   throws,
			   total_score,
			   average_score,
			   doubles_hit,
			   doubles_attempted,
			   highest_round
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			matchID,
			seat,
			p.PlayerID,
			p.Throws,
			p.TotalScore,
			p.AverageScore,
			p.DoublesHit,
			p.DoublesAttempted,
			p.HighestRound,
		)
		if err != nil {
			return fmt.Errorf("insert match player %s: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finished match: %w", err)
	}
	return nil
}

// ListFinishedMatches returns up to limit matches, newest first.
func (s *Store) ListFinishedMatches(ctx context.Context, limit int) ([]ports.FinishedMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT m.match_id, m.starting_score, m.winner_id, m.ended_at,
		        p.player_id, p.throws, p.total_score, p.average_score,
		        p.doubles_hit, p.doubles_attempted, p.highest_round
		   FROM (SELECT * FROM finished_matches
		          ORDER BY ended_at DESC, match_id
		          LIMIT ?) m
		   JOIN match_players p ON p.match_id = m.match_id
		  ORDER BY m.ended_at DESC, m.match_id, p.seat`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}
	defer rows.Close()

	var out []ports.FinishedMatch
	for rows.Next() {
		var (
			matchID  string
			starting int
			winnerID string
			endedAt  int64
			player   ports.PlayerResult
		)
		if err := rows.Scan(
			&matchID,
			&starting,
			&winnerID,
			&endedAt,
			&player.PlayerID,
			&player.Throws,
			&player.TotalScore,
			&player.AverageScore,
			&player.DoublesHit,
			&player.DoublesAttempted,
			&player.HighestRound,
		); err != nil {
			return nil, fmt.Errorf("scan finished match: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].MatchID != matchID {
			out = append(out, ports.FinishedMatch{
				MatchID:       matchID,
				StartingScore: starting,
				WinnerID:      winnerID,
				EndedAt:       fromMillis(endedAt),
			})
		}
		last := &out[len(out)-1]
		last.Players = append(last.Players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ ports.MatchArchive = (*Store)(nil)
