// Package sessionlog implements the CSV session log supplemental
// feature: one line per learned/received event, for debugging a
// physical learning session. Modeled directly on the teacher's
// src/log.go log_write — append-only, a header line written only the
// first time the file is created, one log file per UTC day.
package sessionlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/birchlabs/irengine/internal/ircode"
)

const header = "utime,isotime,device,protocol,data,bits,matches,flags\n"

// Log appends one CSV line per event to a daily file under dir, named
// YYYY-MM-DD.log, matching the teacher's g_daily_names strategy.
type Log struct {
	dir string

	mu       sync.Mutex
	fp       *os.File
	openName string
}

// New returns a Log writing under dir. dir is created if needed.
func New(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sessionlog: %w", err)
	}
	return &Log{dir: dir}, nil
}

// Write appends one event for device (a display label, not
// necessarily a closed DeviceType — this log also records orchestrator
// idle-receive events with no bound device) with the code that was
// learned or received and how many frames agreed during verification.
func (l *Log) Write(device string, code ircode.Code, matches int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	name := now.Format("2006-01-02.log")
	if l.fp != nil && name != l.openName {
		l.fp.Close()
		l.fp = nil
	}
	if l.fp == nil {
		full := filepath.Join(l.dir, name)
		_, statErr := os.Stat(full)
		alreadyThere := statErr == nil

		f, err := os.OpenFile(full, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return fmt.Errorf("sessionlog: opening %s: %w", full, err)
		}
		l.fp = f
		l.openName = name
		if !alreadyThere {
			if _, err := l.fp.WriteString(header); err != nil {
				return err
			}
		}
	}

	w := csv.NewWriter(l.fp)
	err := w.Write([]string{
		fmt.Sprintf("%d", now.Unix()),
		now.Format("2006-01-02T15:04:05Z"),
		device,
		code.Protocol.String(),
		fmt.Sprintf("%d", code.Data),
		fmt.Sprintf("%d", code.Bits),
		fmt.Sprintf("%d", matches),
		fmt.Sprintf("%d", code.Flags),
	})
	if err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Close releases the currently open log file, if any.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fp == nil {
		return nil
	}
	err := l.fp.Close()
	l.fp = nil
	return err
}
