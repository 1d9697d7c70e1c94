// Package indexdb keeps a queryable SQLite index of played rounds. The round
// log stays the source of truth; the index may drop rows under load.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"asteroids.ai/internal/client"
	"asteroids.ai/internal/protocol"
)

const schemaVersion = "2"

// SQLiteIndex stores rounds keyed by (run, round), so several matches can
// share one database.
type SQLiteIndex struct {
	db  *sql.DB
	run string

	ch   chan RoundRow
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
	written atomic.Uint64
	failed  atomic.Uint64
}

// RoundRow is one indexed round. Table sizes count occupied slots.
type RoundRow struct {
	Run       string
	Round     int
	Viewer    int
	Digest    string
	Ships     int
	Asteroids int
	Wormholes int
	Players   int
	Created   int
	Merged    int
	Dropped   int
	Commands  []CommandRow
	State     string
}

type CommandRow struct {
	Seq  int
	Type string
	JSON string
}

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	DropTotal     uint64
	WriteTotal    uint64
	FailTotal     uint64
}

func OpenSQLite(path, run string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:  db,
		run: run,
		// Rounds arrive at most a few per second; the buffer only absorbs disk stalls.
		ch: make(chan RoundRow, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		return err
	}
	var have string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&have)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return err
	case have != schemaVersion:
		return fmt.Errorf("index schema version %s, want %s", have, schemaVersion)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			run TEXT NOT NULL,
			round INTEGER NOT NULL,
			viewer INTEGER NOT NULL,
			digest TEXT NOT NULL,
			ships INTEGER NOT NULL,
			asteroids INTEGER NOT NULL,
			wormholes INTEGER NOT NULL,
			players INTEGER NOT NULL,
			created INTEGER NOT NULL,
			merged INTEGER NOT NULL,
			dropped INTEGER NOT NULL,
			commands INTEGER NOT NULL,
			raw_state TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run, round)
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			run TEXT NOT NULL,
			round INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			json TEXT NOT NULL,
			PRIMARY KEY (run, round, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_type ON commands(type, run, round);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropTotal:     s.dropped.Load(),
		WriteTotal:    s.written.Load(),
		FailTotal:     s.failed.Load(),
	}
}

// WriteRound queues row; an empty Run takes the index's run. It never blocks: when the writer falls behind the
// row is dropped and counted.
func (s *SQLiteIndex) WriteRound(row RoundRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if row.Run == "" {
		row.Run = s.run
	}
	select {
	case s.ch <- row:
	default:
		s.dropped.Add(1)
	}
}

// ObserveRound indexes one client round.
func (s *SQLiteIndex) ObserveRound(r client.Report) {
	if s == nil {
		return
	}
	row := RowFromReport(r)
	row.Run = s.run
	s.WriteRound(row)
}

func RowFromReport(r client.Report) RoundRow {
	row := RoundRow{
		Round:     r.Round,
		Viewer:    r.Viewer,
		Digest:    r.Digest,
		Ships:     occupied(r.View.Ships),
		Asteroids: occupied(r.View.Asteroids),
		Wormholes: occupied(r.View.Wormholes),
		Players:   occupied(r.View.Players),
		Created:   r.Diff.Ships.Created + r.Diff.Asteroids.Created + r.Diff.Wormholes.Created + r.Diff.Players.Created,
		Merged:    r.Diff.Ships.Merged + r.Diff.Asteroids.Merged + r.Diff.Wormholes.Merged + r.Diff.Players.Merged,
		Dropped:   r.Diff.Ships.Dropped + r.Diff.Asteroids.Dropped,
		State:     string(r.State),
	}
	// The client only writes batches it encoded itself, so decoding them back
	// cannot fail short of a bug; such a round is indexed without commands.
	if cmds, err := protocol.DecodeCommands(r.Commands); err == nil {
		for i, c := range cmds {
			one, _ := protocol.EncodeCommands([]protocol.Command{c})
			row.Commands = append(row.Commands, CommandRow{Seq: i, Type: c.Type().String(), JSON: string(one[1 : len(one)-1])})
		}
	}
	return row
}

func occupied[T any](slots []*T) int {
	n := 0
	for _, e := range slots {
		if e != nil {
			n++
		}
	}
	return n
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRound, _ := s.db.Prepare(`INSERT OR REPLACE INTO rounds(run,round,viewer,digest,ships,asteroids,wormholes,players,created,merged,dropped,commands,raw_state,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	deleteCommands, _ := s.db.Prepare(`DELETE FROM commands WHERE run = ? AND round = ?`)
	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(run,round,seq,type,json) VALUES(?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertRound, deleteCommands, insertCommand} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		pending       uint64 // rows in tx, counted once the tx ends
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.failed.Add(pending)
		} else {
			s.written.Add(pending)
		}
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}
	// rollback discards every row of the tx, not just the failing one.
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		s.failed.Add(pending)
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}

	write := func(r RoundRow) error {
		if insertRound == nil || deleteCommands == nil || insertCommand == nil {
			return fmt.Errorf("statements not prepared")
		}
		if _, err := tx.Stmt(insertRound).Exec(
			r.Run, r.Round, r.Viewer, r.Digest,
			r.Ships, r.Asteroids, r.Wormholes, r.Players,
			r.Created, r.Merged, r.Dropped,
			len(r.Commands), r.State,
			time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
		if _, err := tx.Stmt(deleteCommands).Exec(r.Run, r.Round); err != nil {
			return err
		}
		for _, c := range r.Commands {
			if _, err := tx.Stmt(insertCommand).Exec(r.Run, r.Round, c.Seq, c.Type, c.JSON); err != nil {
				return err
			}
		}
		opCount += 2 + len(r.Commands)
		return nil
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			s.failed.Add(1)
			continue
		}
		if err := write(r); err != nil {
			s.failed.Add(1)
			rollback()
			continue
		}
		pending++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

// ReadRounds loads every indexed round (without raw state or commands)
// ordered by run, then round, from the database at path.
func ReadRounds(ctx context.Context, path string) ([]RoundRow, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT run,round,viewer,digest,ships,asteroids,wormholes,players,created,merged,dropped FROM rounds ORDER BY run, round`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoundRow
	for rows.Next() {
		var r RoundRow
		if err := rows.Scan(&r.Run, &r.Round, &r.Viewer, &r.Digest, &r.Ships, &r.Asteroids, &r.Wormholes, &r.Players, &r.Created, &r.Merged, &r.Dropped); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CommandCounts returns how many commands of each type were sent.
func CommandCounts(ctx context.Context, path string) (map[string]int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT type, COUNT(*) FROM commands GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}
