package gallerycache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"treasurepicker/internal/imaging"
	"treasurepicker/internal/logging"
)

const lockRetryDelay = 50 * time.Millisecond

// Store is a SQLite-backed cache of decoded gallery images.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	logger *slog.Logger
}

// Stats summarizes the cache contents.
type Stats struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	Pixels  int64  `json:"pixels"`
	Bytes   int64  `json:"bytes"`
}

// Open creates or connects to the cache database at path and applies
// migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "gallerycache"),
	}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached buffer for path when it was stored for the same
// size and modification time as info.
func (s *Store) Get(ctx context.Context, path string, info fs.FileInfo) (*imaging.Gray, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT width, height, pixels FROM gray_buffers WHERE path = ? AND size = ? AND mod_time_ns = ?`,
		path, info.Size(), info.ModTime().UnixNano(),
	)
	var (
		width, height int
		blob          []byte
	)
	if err := row.Scan(&width, &height, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached buffer: %w", err)
	}
	gray, err := decodePixels(width, height, blob)
	if err != nil {
		return nil, false, fmt.Errorf("cached buffer for %s: %w", path, err)
	}
	return gray, true, nil
}

// Put stores gray for path, replacing any previous entry.
func (s *Store) Put(ctx context.Context, path string, info fs.FileInfo, gray *imaging.Gray) error {
	if err := gray.Validate(); err != nil {
		return fmt.Errorf("cache %s: %w", path, err)
	}
	return s.withWriteLock(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO gray_buffers (path, size, mod_time_ns, width, height, pixels, cached_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(path) DO UPDATE SET
                 size = excluded.size,
                 mod_time_ns = excluded.mod_time_ns,
                 width = excluded.width,
                 height = excluded.height,
                 pixels = excluded.pixels,
                 cached_at = excluded.cached_at`,
			path,
			info.Size(),
			info.ModTime().UnixNano(),
			gray.Width,
			gray.Height,
			encodePixels(gray.Pix),
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("store cached buffer: %w", err)
		}
		return nil
	})
}

// Load returns the buffer for the image at path, decoding and caching it on
// a miss. Cache failures are logged and never prevent the decode.
func (s *Store) Load(ctx context.Context, path string) (*imaging.Gray, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &imaging.DecodeError{ID: filepath.Base(path), Err: err}
	}

	gray, ok, err := s.Get(ctx, abs, info)
	if err != nil {
		logging.WarnWithContext(s.logger, "cache lookup failed", "gallerycache_get_failed",
			logging.String(logging.FieldCandidate, filepath.Base(abs)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'treasurepicker cache clear' if this persists"),
			logging.String(logging.FieldImpact, "image decoded from disk instead"),
		)
	}
	if ok {
		s.logger.Debug("cache hit", logging.String(logging.FieldCandidate, filepath.Base(abs)))
		return gray, nil
	}

	gray, err = imaging.DecodeFile(abs)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, abs, info, gray); err != nil {
		logging.WarnWithContext(s.logger, "cache store failed", "gallerycache_put_failed",
			logging.String(logging.FieldCandidate, filepath.Base(abs)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "image will be decoded again next run"),
		)
	}
	return gray, nil
}

// Stats reports entry count and stored volume.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(width * height), 0), COALESCE(SUM(LENGTH(pixels)), 0) FROM gray_buffers`)
	if err := row.Scan(&stats.Entries, &stats.Pixels, &stats.Bytes); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := s.withWriteLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM gray_buffers`)
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("cache cleared", logging.Int("entries", int(removed)))
	return removed, nil
}

func (s *Store) withWriteLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return errors.New("cache lock is held by another process")
	}
	defer func() {
		_ = s.lock.Unlock()
	}()
	return fn()
}
