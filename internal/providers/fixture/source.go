package fixture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 50 * time.Millisecond

// Source serves the fixture file to the catalog. A missing file is an
// empty catalog until it is created; an unreadable edit keeps the previous
// document.
type Source struct {
	path     string
	debounce time.Duration
	doc      *stream.Value[Document]
	logger   *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Open loads the fixture at path. Call Start to follow later edits.
func Open(path string, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve fixture path: %w", err)
	}

	s := &Source{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logger.Named("fixture"),
	}

	doc, err := Load(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Warn("Fixture file missing, starting empty", zap.String("path", abs))
		doc = Document{}
	case err != nil:
		return nil, err
	}
	s.doc = stream.NewValueOf(doc)
	return s, nil
}

// WithDebounce replaces the reload debounce window
func (s *Source) WithDebounce(d time.Duration) *Source {
	s.debounce = d
	return s
}

// Path returns the absolute fixture path
func (s *Source) Path() string {
	return s.path
}

// Document returns the current document.
func (s *Source) Document() Document {
	doc, _ := s.doc.Load()
	return doc
}

// Start watches the fixture's directory until ctx is done or Close is called.
func (s *Source) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fixture watcher: %w", err)
	}
	// Editors replace files on save, so the directory is watched.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch fixture directory: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.processEvents(ctx, watcher, done)
	s.logger.Info("Watching fixture", zap.String("path", s.path))
	return nil
}

// Close stops watching.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

// Reload re-reads the file and publishes it.
func (s *Source) Reload() error {
	doc, err := Load(s.path)
	if err != nil {
		return err
	}
	s.doc.Publish(doc)
	s.logger.Debug("Reloaded fixture",
		zap.Int("applications", len(doc.Applications)),
		zap.Int("shortcuts", len(doc.Shortcuts)),
		zap.Int("contacts", len(doc.Contacts)))
	return nil
}

func (s *Source) processEvents(ctx context.Context, watcher *fsnotify.Watcher, done <-chan struct{}) {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if err := s.Reload(); err != nil {
				s.logger.Warn("Fixture reload failed, keeping previous document", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Fixture watcher error", zap.Error(err))
		}
	}
}

// watch emits project(doc) for the current document and every reload.
func watch[T any](ctx context.Context, s *Source, project func(Document) T, emit func(T)) error {
	for doc := range s.doc.Subscribe(ctx) {
		emit(project(doc))
	}
	return ctx.Err()
}

// Applications is the application source view of the fixture.
func (s *Source) Applications() *Applications { return &Applications{s} }

// Shortcuts is the shortcut source view of the fixture.
func (s *Source) Shortcuts() *Shortcuts { return &Shortcuts{s} }

// Contacts is the contact source view of the fixture.
func (s *Source) Contacts() *Contacts { return &Contacts{s} }

// Notifications is the notification source view of the fixture.
func (s *Source) Notifications() *Notifications { return &Notifications{s} }

type Applications struct{ s *Source }

func (a *Applications) Watch(ctx context.Context, emit func([]types.AppRecord)) error {
	return watch(ctx, a.s, func(d Document) []types.AppRecord { return d.Applications }, emit)
}

type Shortcuts struct{ s *Source }

func (sc *Shortcuts) Watch(ctx context.Context, packageIDs []string, emit func([]types.ShortcutRecord)) error {
	return watch(ctx, sc.s, func(d Document) []types.ShortcutRecord { return d.shortcutsOf(packageIDs) }, emit)
}

type Contacts struct{ s *Source }

func (c *Contacts) Watch(ctx context.Context, emit func([]types.ContactRecord)) error {
	return watch(ctx, c.s, func(d Document) []types.ContactRecord { return d.Contacts }, emit)
}

type Notifications struct{ s *Source }

func (n *Notifications) Watch(ctx context.Context, emit func(map[string]int)) error {
	return watch(ctx, n.s, func(d Document) map[string]int { return d.Notifications }, emit)
}

// HasPermission reports the document's notification_permission flag.
func (n *Notifications) HasPermission() bool {
	return n.s.Document().NotificationPermission
}
