// Package reliability keeps the portfolio database healthy and backed up.
package reliability

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aristath/stockfolio/internal/database"
	"github.com/rs/zerolog"
)

const snapshotTimeFormat = "2006-01-02-150405"

// BackupService snapshots the database and ships the snapshot off-site
type BackupService struct {
	db        *database.DB
	store     ObjectStore
	dir       string // Local snapshot directory
	prefix    string // Remote key prefix
	keepLocal int
	now       func() time.Time
	log       zerolog.Logger
}

// BackupResult describes one completed backup
type BackupResult struct {
	Key       string `json:"key"`
	LocalPath string `json:"local_path"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"sha256"`
}

// NewBackupService creates a new backup service. store may be nil, in which
// case snapshots are only kept locally.
func NewBackupService(db *database.DB, store ObjectStore, dir, prefix string, keepLocal int, log zerolog.Logger) *BackupService {
	if keepLocal < 1 {
		keepLocal = 1
	}
	return &BackupService{
		db:        db,
		store:     store,
		dir:       dir,
		prefix:    prefix,
		keepLocal: keepLocal,
		now:       time.Now,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUploadBackup writes a consistent snapshot, uploads it gzipped and
// prunes old local snapshots
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) (*BackupResult, error) {
	started := s.now()
	name := fmt.Sprintf("%s-%s.db", s.db.Name(), started.UTC().Format(snapshotTimeFormat))
	localPath := filepath.Join(s.dir, name)

	if err := s.db.Snapshot(ctx, localPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	checksum, err := fileChecksum(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum snapshot: %w", err)
	}

	result := &BackupResult{
		LocalPath: localPath,
		SizeBytes: info.Size(),
		Checksum:  checksum,
	}

	if s.store != nil {
		result.Key = s.prefix + name + ".gz"
		if err := s.upload(ctx, localPath, result.Key); err != nil {
			return nil, err
		}
	}

	if err := s.pruneLocal(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to prune local snapshots")
	}

	s.log.Info().
		Str("key", result.Key).
		Int64("size_bytes", result.SizeBytes).
		Str("sha256", checksum).
		Dur("duration", s.now().Sub(started)).
		Msg("Backup completed")

	return result, nil
}

// RotateRemoteBackups deletes remote backups older than retentionDays
func (s *BackupService) RotateRemoteBackups(ctx context.Context, retentionDays int) (int, error) {
	if s.store == nil || retentionDays <= 0 {
		return 0, nil
	}

	objects, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			s.log.Warn().Err(err).Str("key", obj.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("Rotated old backups")
	}
	return deleted, nil
}

func (s *BackupService) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	go func() {
		gz := gzip.NewWriter(pw)
		_, err := io.Copy(gz, f)
		if closeErr := gz.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	if err := s.store.Upload(ctx, key, pr); err != nil {
		_ = pr.CloseWithError(err)
		return err
	}
	return nil
}

// pruneLocal keeps the newest keepLocal snapshots of this database
func (s *BackupService) pruneLocal() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var snapshots []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), s.db.Name()+"-") && strings.HasSuffix(e.Name(), ".db") {
			snapshots = append(snapshots, e.Name())
		}
	}
	if len(snapshots) <= s.keepLocal {
		return nil
	}

	// Timestamped names sort chronologically
	sort.Strings(snapshots)
	for _, name := range snapshots[:len(snapshots)-s.keepLocal] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
