package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/observability"

	"github.com/fsnotify/fsnotify"
)

// CertReloader keeps the server certificate pair loaded and swaps it
// when the files on disk change. Change events are debounced because
// cert and key are usually rotated as two separate writes.
type CertReloader struct {
	mu   sync.RWMutex
	cert *tls.Certificate

	certFile string
	keyFile  string

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan chan struct{}
	running  bool

	reloadCount int64

	metrics *observability.Metrics
	logger  *jobsniperErrors.Logger
}

// NewCertReloader loads the initial certificate pair from disk
func NewCertReloader(certFile, keyFile string, debounceDelay time.Duration, metrics *observability.Metrics, logger *jobsniperErrors.Logger) (*CertReloader, error) {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}

	cr := &CertReloader{
		certFile:      certFile,
		keyFile:       keyFile,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		metrics:       metrics,
		logger:        logger,
	}

	if err := cr.reload(); err != nil {
		return nil, err
	}

	return cr, nil
}

// Start begins watching the certificate files for changes
func (cr *CertReloader) Start() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.running {
		return fmt.Errorf("certificate reloader is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cr.fsWatcher = watcher

	// Watch the parent directories: editors and secret mounts replace
	// files by rename, which drops per-file watches
	watched := make(map[string]struct{})
	for _, file := range []string{cr.certFile, cr.keyFile} {
		dir := filepath.Dir(file)
		if _, ok := watched[dir]; ok {
			continue
		}
		watched[dir] = struct{}{}
		if err := watcher.Add(dir); err != nil {
			cr.cleanupWatcher()
			return fmt.Errorf("failed to watch certificate directory %s: %w", dir, err)
		}
	}

	cr.running = true
	go cr.watchLoop()

	cr.logger.Info("Certificate file watcher started",
		"cert_file", cr.certFile,
		"key_file", cr.keyFile,
		"debounce", cr.debounceDelay.String())
	return nil
}

// GetCertificate is the tls.Config callback returning the current pair
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.cert == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return cr.cert, nil
}

// ReloadCount returns the number of successful reloads since start
func (cr *CertReloader) ReloadCount() int64 {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.reloadCount
}

// Stop shuts down the file watcher
func (cr *CertReloader) Stop() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.running {
		return nil
	}
	cr.running = false
	close(cr.stopChan)
	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	return cr.fsWatcher.Close()
}

func (cr *CertReloader) watchLoop() {
	for {
		select {
		case event, ok := <-cr.fsWatcher.Events:
			if !ok {
				return
			}
			if cr.isRelevant(event) {
				cr.scheduleReload()
			}
		case err, ok := <-cr.fsWatcher.Errors:
			if !ok {
				return
			}
			cr.logger.LogError(err, "Certificate file watcher error")
		case <-cr.stopChan:
			return
		}
	}
}

func (cr *CertReloader) isRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == filepath.Clean(cr.certFile) || name == filepath.Clean(cr.keyFile)
}

func (cr *CertReloader) scheduleReload() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.debounceTimer = time.AfterFunc(cr.debounceDelay, func() {
		if err := cr.reload(); err != nil {
			cr.logger.LogError(err, "Failed to reload TLS certificates")
			if cr.metrics != nil {
				cr.metrics.RecordCertReload(context.Background(), false)
			}
			return
		}
		cr.logger.Info("TLS certificates reloaded")
		if cr.metrics != nil {
			cr.metrics.RecordCertReload(context.Background(), true)
		}
	})
}

func (cr *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate pair: %w", err)
	}

	cr.mu.Lock()
	cr.cert = &cert
	cr.reloadCount++
	cr.mu.Unlock()
	return nil
}

func (cr *CertReloader) cleanupWatcher() {
	if cr.fsWatcher != nil {
		if err := cr.fsWatcher.Close(); err != nil && cr.logger != nil {
			cr.logger.LogError(err, "Failed to close file watcher during cleanup")
		}
	}
}
