// Package roundlog records every played round (snapshot in, commands out,
// resulting world digest) so a match can be replayed offline.
package roundlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"

	"asteroids.ai/internal/client"
	"asteroids.ai/internal/game/model"
	"asteroids.ai/internal/protocol"
)

const Prefix = "rounds"

type Entry struct {
	Run      string          `json:"run"`
	Round    int             `json:"round"`
	Viewer   int             `json:"viewer"`
	Digest   string          `json:"digest"`
	State    json.RawMessage `json:"state"`
	Commands json.RawMessage `json:"commands"`
	Count    int             `json:"count"`
	Diff     model.Diff      `json:"diff"`
}

var runSeq atomic.Uint64

// NewRunID names one match. Ids sort by start time and differ between
// processes and between matches played by one process.
func NewRunID() string {
	return fmt.Sprintf("%s-%d-%d", time.Now().UTC().Format("20060102T150405Z"), os.Getpid(), runSeq.Add(1))
}

// Logger writes one Entry per round to hourly zstd files named
// rounds-<run>-YYYY-MM-DD-HH.jsonl.zst. Each run owns its files, so several
// bots can share a directory.
type Logger struct {
	dir string
	run string
	now func() time.Time
	log *log.Logger

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	bw      *bufio.Writer
	failed  bool
}

func NewLogger(dir, run string, logger *log.Logger) *Logger {
	return &Logger{dir: dir, run: run, now: time.Now, log: logger}
}

func (l *Logger) Run() string { return l.run }

// Write appends e, stamped with the logger's run, and flushes the zstd block
// so a crash loses at most the entry being written.
func (l *Logger) Write(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.Run = l.run
	hour := l.now().UTC().Format("2006-01-02-15")
	if hour != l.curHour {
		if err := l.openLocked(hour); err != nil {
			return err
		}
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := l.bw.Write(b); err != nil {
		return err
	}
	if err := l.bw.Flush(); err != nil {
		return err
	}
	return l.enc.Flush()
}

// ObserveRound records r. Write failures are logged once and do not stop
// the match.
func (l *Logger) ObserveRound(r client.Report) {
	err := l.Write(Entry{
		Round:    r.Round,
		Viewer:   r.Viewer,
		Digest:   r.Digest,
		State:    r.State,
		Commands: r.Commands,
		Count:    r.Count,
		Diff:     r.Diff,
	})
	if err != nil && !l.failed && l.log != nil {
		l.failed = true
		l.log.Printf("roundlog: %v", err)
	}
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *Logger) openLocked(hour string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(l.dir, fmt.Sprintf("%s-%s-%s.jsonl.zst", Prefix, l.run, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f, l.enc, l.bw = f, enc, bufio.NewWriterSize(enc, 64*1024)
	l.curHour = hour
	return nil
}

func (l *Logger) closeLocked() error {
	var err error
	if l.bw != nil {
		_ = l.bw.Flush()
		l.bw = nil
	}
	if l.enc != nil {
		err = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		if cerr := l.f.Close(); err == nil {
			err = cerr
		}
		l.f = nil
	}
	l.curHour = ""
	return err
}

// ListFiles returns the round log files in dir, grouped by run in start
// order and by hour within a run.
func ListFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, Prefix+"-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadFile calls fn for every entry in path, stopping at the first error.
func ReadFile(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 32*1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Verifier re-applies recorded snapshots and checks each round's digest.
// Every run is replayed into a fresh world.
type Verifier struct {
	From, To int // inclusive; To == 0 means no upper bound

	Runs    int
	Applied int
	Checked int

	run   string
	world *model.World
}

func NewVerifier(from, to int) *Verifier {
	return &Verifier{From: from, To: to}
}

// Apply feeds one entry. Every entry is applied so the world's slot history
// matches the original run; digests are compared only inside [From, To].
func (v *Verifier) Apply(e Entry) error {
	if v.world == nil || e.Run != v.run || (e.Run == "" && v.world.Ready() && e.Round < v.world.Round) {
		// Entries without a run id come from older logs; a round going
		// backwards is the only boundary they show.
		v.world = model.NewWorld()
		v.run = e.Run
		v.Runs++
	}
	st, err := protocol.DecodeState(e.State)
	if err != nil {
		return fmt.Errorf("run %s round %d: %w", e.Run, e.Round, err)
	}
	if _, err := v.world.Apply(st); err != nil {
		return fmt.Errorf("run %s round %d: %w", e.Run, e.Round, err)
	}
	v.Applied++
	if e.Round < v.From || (v.To != 0 && e.Round > v.To) {
		return nil
	}
	got, err := v.world.View().Digest()
	if err != nil {
		return fmt.Errorf("run %s round %d: %w", e.Run, e.Round, err)
	}
	v.Checked++
	if got != e.Digest {
		return fmt.Errorf("digest mismatch in run %s at round %d: got=%s want=%s", e.Run, e.Round, got, e.Digest)
	}
	return nil
}

// VerifyDir replays every round log file in dir.
func VerifyDir(dir string, from, to int) (*Verifier, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s-*.jsonl.zst files in %s", Prefix, dir)
	}
	v := NewVerifier(from, to)
	for _, path := range files {
		if err := ReadFile(path, v.Apply); err != nil {
			return v, err
		}
	}
	return v, nil
}
