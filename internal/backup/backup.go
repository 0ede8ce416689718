// Package backup exports the habit table as CSV, commits snapshots of it to a local git
// repository, and restores records from an export.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/conorfennell/habittracker/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// FileName is the snapshot file written inside the backup repository.
const FileName = "habits.csv"

// Lister provides every record to snapshot.
type Lister interface {
	ListRecords() ([]domain.Record, error)
}

// Upserter stores a record keyed by (week, date).
type Upserter interface {
	UpsertRecord(week int, date string, checks domain.Checks) (bool, error)
}

// Result describes the outcome of a snapshot.
type Result struct {
	Records   int
	Committed bool
	Hash      plumbing.Hash
}

// Snapshot writes all records to FileName inside dir and commits the file. The
// repository is initialised if dir is not one yet. Nothing is committed when the
// records are unchanged since the last snapshot.
func Snapshot(l Lister, dir string, now time.Time) (Result, error) {
	records, err := l.ListRecords()
	if err != nil {
		return Result{}, err
	}

	repo, err := openOrInit(dir)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return Result{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), buf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write snapshot in %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get worktree for repo at %s: %w", dir, err)
	}
	if _, err := worktree.Add(FileName); err != nil {
		return Result{}, fmt.Errorf("failed to stage snapshot in %s: %w", dir, err)
	}

	status, err := worktree.Status()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get status for repo at %s: %w", dir, err)
	}
	// Only the snapshot file counts; other files in dir are left alone.
	if st, ok := status[FileName]; !ok || (st.Staging == git.Unmodified && st.Worktree == git.Unmodified) {
		slog.Info("Snapshot unchanged, nothing to commit", "dir", dir, "records", len(records))
		return Result{Records: len(records)}, nil
	}

	msg := fmt.Sprintf("Snapshot of %d habit records", len(records))
	hash, err := worktree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "habittracker",
			Email: "habittracker@localhost",
			When:  now,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to commit snapshot in %s: %w", dir, err)
	}
	slog.Info("Snapshot committed", "dir", dir, "records", len(records), "commit", hash.String())
	return Result{Records: len(records), Committed: true, Hash: hash}, nil
}

func openOrInit(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("failed to open backup repo at %s: %w", dir, err)
	}

	slog.Info("Initialising backup repository", "dir", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", dir, err)
	}
	repo, err = git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to init backup repo at %s: %w", dir, err)
	}
	return repo, nil
}

// Restore upserts every record read from a CSV export and returns how many were applied.
// The export is fully validated before anything is written.
func Restore(u Upserter, r io.Reader) (int, error) {
	records, err := ReadCSV(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read export: %w", err)
	}

	var inserted int
	for i, rec := range records {
		added, err := u.UpsertRecord(rec.Week, rec.Date, rec.Checks)
		if err != nil {
			return i, err
		}
		if added {
			inserted++
		}
	}
	slog.Info("Restore complete",
		"records", len(records),
		"inserted", inserted,
		"updated", len(records)-inserted,
	)
	return len(records), nil
}
