package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/storage"
)

// Manager periodically snapshots the sqlite database and uploads the
// snapshot to object storage, pruning uploads beyond the retention count.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
}

type Config struct {
	Bucket    string
	KeyPrefix string
	Interval  time.Duration
	Retention int
	Logger    *logrus.Logger
}

type manager struct {
	cfg     Config
	db      *sql.DB
	storage storage.Service

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(cfg Config, db *sql.DB, store storage.Service) Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:     cfg,
		db:      db,
		storage: store,
	}
}

func (m *manager) Start(ctx context.Context) error {
	if m.storage == nil || m.cfg.Bucket == "" {
		return fmt.Errorf("backup storage is not configured")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.run()

	m.cfg.Logger.Infof("backup manager started, bucket %s, interval %s", m.cfg.Bucket, m.cfg.Interval)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("backup manager stopped")
}

func (m *manager) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if err := m.runBackup(m.ctx); err != nil {
				m.cfg.Logger.Warnf("backup failed: %v", err)
			}
		}
	}
}

func (m *manager) runBackup(ctx context.Context) error {
	snapshot := filepath.Join(os.TempDir(), fmt.Sprintf("taskboard-%s.db", uuid.NewString()))
	defer os.Remove(snapshot)

	// VACUUM INTO produces a consistent copy without blocking writers
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, snapshot); err != nil {
		return fmt.Errorf("snapshot database: %w", err)
	}

	key := fmt.Sprintf("%s/%s.db",
		strings.Trim(m.cfg.KeyPrefix, "/"),
		time.Now().UTC().Format("20060102T150405Z"),
	)

	location, err := m.storage.UploadFile(ctx, snapshot, m.cfg.Bucket, key)
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	m.cfg.Logger.Infof("uploaded backup %s", location)

	return m.prune(ctx)
}

// prune removes the oldest snapshots once more than Retention exist.
// Snapshot keys embed their creation time, so lexical order is age order.
func (m *manager) prune(ctx context.Context) error {
	prefix := strings.Trim(m.cfg.KeyPrefix, "/") + "/"
	objects, err := m.storage.ListObjects(ctx, m.cfg.Bucket, prefix)
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(objects) <= m.cfg.Retention {
		return nil
	}

	keys := make([]string, len(objects))
	for i, obj := range objects {
		keys[i] = obj.Key
	}
	sort.Strings(keys)

	stale := keys[:len(keys)-m.cfg.Retention]
	if err := m.storage.DeleteObjects(ctx, m.cfg.Bucket, stale); err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}
	m.cfg.Logger.Infof("pruned %d stale backups", len(stale))
	return nil
}
