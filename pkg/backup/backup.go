// Package backup takes periodic full snapshots of the ABI cache into a
// local directory and prunes old ones.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/luxfi/safehash/pkg/common/pathutil"
	"github.com/luxfi/safehash/pkg/logger"
)

const (
	filePrefix = "abi-cache-"
	fileSuffix = ".bak"
	timeLayout = "20060102T150405.000000000Z"
)

// Snapshotter is satisfied by *kvstore.BadgerKVStore.
type Snapshotter interface {
	Backup(w io.Writer) error
}

// Manager handles periodic backups.
type Manager struct {
	store  Snapshotter
	dir    string
	period time.Duration
	// keep is the number of newest snapshots retained; zero keeps all.
	keep int
	now  func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager creates a backup manager writing into dir.
func NewManager(store Snapshotter, dir string, period time.Duration, keep int) (*Manager, error) {
	if err := pathutil.ValidateFilePath(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &Manager{
		store:  store,
		dir:    dir,
		period: period,
		keep:   keep,
		now:    time.Now,
		done:   make(chan struct{}),
	}, nil
}

// Start begins the periodic backup loop
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.loop()
}

// Stop stops the loop and waits for an in-flight backup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
	m.wg.Wait()
}

func (m *Manager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if _, err := m.RunBackup(); err != nil {
				logger.Error("Backup failed", err)
			}
		}
	}
}

// RunBackup writes one snapshot and prunes old ones. It returns the
// snapshot path.
func (m *Manager) RunBackup() (string, error) {
	name := filePrefix + m.now().UTC().Format(timeLayout) + fileSuffix
	path, err := pathutil.SafePath(m.dir, name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(m.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := m.store.Backup(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("snapshot cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("finalize snapshot: %w", err)
	}

	logger.Info("ABI cache backed up", "file", path)
	if err := m.prune(); err != nil {
		logger.Warn("Failed to prune old backups", "dir", m.dir, "error", err.Error())
	}
	return path, nil
}

// Backups lists snapshot paths oldest first.
func (m *Manager) Backups() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			files = append(files, filepath.Join(m.dir, name))
		}
	}
	// The timestamp layout sorts lexically.
	sort.Strings(files)
	return files, nil
}

func (m *Manager) prune() error {
	if m.keep <= 0 {
		return nil
	}
	files, err := m.Backups()
	if err != nil {
		return err
	}
	for len(files) > m.keep {
		if err := os.Remove(files[0]); err != nil {
			return err
		}
		logger.Debug("Removed old backup", "file", files[0])
		files = files[1:]
	}
	return nil
}
