// Package retention removes aged uploads and generated artifacts on a
// cron schedule, optionally archiving them to S3 first.
package retention

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"viral-clip-gen/internal/archive"
	"viral-clip-gen/internal/logging"
)

type Sweeper struct {
	dirs          []string
	maxAge        time.Duration
	archiver      archive.Archiver // nil disables archival
	archiveMaxAge time.Duration    // 0 keeps archive objects forever
	log           *logging.Logger
	cron          *cron.Cron

	now func() time.Time
}

func NewSweeper(dirs []string, maxAge time.Duration, archiver archive.Archiver, archiveMaxAge time.Duration, log *logging.Logger) *Sweeper {
	return &Sweeper{
		dirs:          dirs,
		maxAge:        maxAge,
		archiver:      archiver,
		archiveMaxAge: archiveMaxAge,
		log:           log,
		now:           time.Now,
	}
}

// Start schedules the sweep. The schedule uses six fields, seconds
// first.
func (s *Sweeper) Start(schedule string) error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(schedule, func() {
		s.log.Infof("cron: retention sweep")
		s.Sweep(context.Background())
	}); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep removes files older than the retention window. A file that
// fails to archive stays on disk for the next run. Sweep never fails
// the caller; problems are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.maxAge)
	archived := s.pruneArchive(ctx)
	removed := 0
	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.log.Errorf("retention: read %s: %v", dir, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if s.archiver != nil && !archived[e.Name()] {
				if err := s.archiver.PutFile(ctx, e.Name(), path); err != nil {
					s.log.Errorf("retention: archive %s: %v", e.Name(), err)
					continue
				}
			}
			if err := os.Remove(path); err != nil {
				s.log.Errorf("retention: remove %s: %v", path, err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		s.log.Infof("retention: removed %d aged files", removed)
	}
	return removed
}

// pruneArchive lists what is already in the bucket, dropping objects
// past the archive window on the way, and returns the surviving keys so
// the sweep does not re-upload them. A listing failure just means
// everything gets re-put, which is idempotent.
func (s *Sweeper) pruneArchive(ctx context.Context) map[string]bool {
	keys := map[string]bool{}
	if s.archiver == nil {
		return keys
	}
	objs, err := s.archiver.List(ctx, "")
	if err != nil {
		s.log.Errorf("retention: list archive: %v", err)
		return keys
	}
	archiveCutoff := s.now().Add(-s.archiveMaxAge)
	for _, obj := range objs {
		if s.archiveMaxAge > 0 && obj.LastModified.Before(archiveCutoff) {
			if err := s.archiver.Delete(ctx, obj.Key); err != nil {
				s.log.Errorf("retention: prune archived %s: %v", obj.Key, err)
				keys[obj.Key] = true
			}
			continue
		}
		keys[obj.Key] = true
	}
	return keys
}
