package eac

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/eacctl/internal/preset"
)

// KeyPrefix namespaces application records in the store.
const KeyPrefix = "eac_app_"

// Key returns the store key for an application identifier.
func Key(appID string) string {
	return KeyPrefix + appID
}

// Store is the slice of the key-value store the manager needs. An
// in-memory fake backs unit tests; internal/store provides the real
// file-backed implementation.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Keys() []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackup installs a hook that runs before every mutating
// operation. A hook error aborts the operation before anything is read
// or written.
func WithBackup(hook func() error) Option {
	return func(m *Manager) { m.backup = hook }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager orchestrates enable/disable/query operations. Every mutating
// operation runs backup hook, Locate, Mutate, Persist, in that order,
// and any failure leaves the store exactly as it was.
type Manager struct {
	store   Store
	presets *preset.Catalog
	backup  func() error
	log     *zap.Logger
}

// NewManager builds a Manager over store. The preset catalog is only
// consulted by QuickEnable.
func NewManager(store Store, presets *preset.Catalog, opts ...Option) *Manager {
	m := &Manager{store: store, presets: presets, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enable records activityID as handwriting-optimized for appID, fully
// replacing any existing entry for that activity. The application must
// already have a record in the store; Enable never creates one.
func (m *Manager) Enable(appID, drawViewKey, activityID string) error {
	if err := m.runBackup(); err != nil {
		return err
	}

	rec, err := m.locate(appID)
	if err != nil {
		return err
	}
	acts, err := m.activities(appID, rec)
	if err != nil {
		return err
	}
	if acts == nil {
		acts = NewActivityMap()
	}

	acts.Set(activityID, NewActivityConfig(drawViewKey, activityID))
	rec.SetActivities(acts)

	if err := m.persist(appID, rec); err != nil {
		return err
	}

	m.log.Info("enabled handwriting optimization",
		zap.String("package", appID),
		zap.String("activity", activityID),
		zap.String("drawViewKey", drawViewKey))
	return nil
}

// Disable removes optimization entries for appID. With a non-empty
// activityID exactly that entry is removed (ErrActivityNotFound when it
// has none); with an empty one every entry passing the active test is
// swept and inactive entries survive untouched. Returns the removed
// activity names in document order.
//
// An application whose map is empty or absent is a successful no-op
// with no write. A swept map is written back even when nothing matched.
func (m *Manager) Disable(appID, activityID string) ([]string, error) {
	if err := m.runBackup(); err != nil {
		return nil, err
	}

	rec, err := m.locate(appID)
	if err != nil {
		return nil, err
	}
	acts, err := m.activities(appID, rec)
	if err != nil {
		return nil, err
	}
	if acts == nil || acts.Len() == 0 {
		m.log.Debug("no optimizations to remove", zap.String("package", appID))
		return nil, nil
	}

	var removed []string
	if activityID != "" {
		if !acts.Delete(activityID) {
			return nil, fmt.Errorf("%s: %s: %w", appID, activityID, ErrActivityNotFound)
		}
		removed = []string{activityID}
	} else {
		for _, name := range acts.Names() {
			if probe, ok := acts.Probe(name); ok && probe.Active() {
				removed = append(removed, name)
			}
		}
		for _, name := range removed {
			acts.Delete(name)
		}
	}

	rec.SetActivities(acts)
	if err := m.persist(appID, rec); err != nil {
		return nil, err
	}

	m.log.Info("disabled handwriting optimization",
		zap.String("package", appID),
		zap.Strings("removed", removed))
	return removed, nil
}

// ListAll returns every application identifier in the store, sorted.
func (m *Manager) ListAll() []string {
	var apps []string
	for _, key := range m.store.Keys() {
		if pkg, ok := strings.CutPrefix(key, KeyPrefix); ok {
			apps = append(apps, pkg)
		}
	}
	slices.Sort(apps)
	return apps
}

// OptimizedActivity pairs an active entry with its draw view.
type OptimizedActivity struct {
	Activity    string `json:"activity"`
	DrawViewKey string `json:"drawViewKey"`
}

// AppOptimizations lists one application's active entries.
type AppOptimizations struct {
	Package    string              `json:"package"`
	Activities []OptimizedActivity `json:"activities"`
}

// ListOptimized returns the applications with at least one entry
// passing the active test. Applications whose records cannot be
// decoded are skipped silently.
func (m *Manager) ListOptimized() []AppOptimizations {
	var out []AppOptimizations
	for _, pkg := range m.ListAll() {
		rec, err := m.locate(pkg)
		if err != nil {
			continue
		}
		acts, err := rec.Activities()
		if err != nil || acts == nil {
			continue
		}

		var active []OptimizedActivity
		for _, name := range acts.Names() {
			if probe, ok := acts.Probe(name); ok && probe.Active() {
				active = append(active, OptimizedActivity{Activity: name, DrawViewKey: probe.DrawViewKey})
			}
		}
		if len(active) > 0 {
			out = append(out, AppOptimizations{Package: pkg, Activities: active})
		}
	}
	return out
}

// ActivityStatus reports one entry's active-test result. DrawViewKey
// is only set for optimized entries.
type ActivityStatus struct {
	Activity    string `json:"activity"`
	Optimized   bool   `json:"optimized"`
	DrawViewKey string `json:"drawViewKey,omitempty"`
}

// AppStatus is the full per-activity picture for one application.
type AppStatus struct {
	Package    string           `json:"package"`
	Activities []ActivityStatus `json:"activities"`
}

// Show reports every activityConfigMap entry for appID with its
// active-test result, in document order.
func (m *Manager) Show(appID string) (*AppStatus, error) {
	rec, err := m.locate(appID)
	if err != nil {
		return nil, err
	}
	acts, err := m.activities(appID, rec)
	if err != nil {
		return nil, err
	}

	status := &AppStatus{Package: appID}
	if acts == nil {
		return status, nil
	}
	for _, name := range acts.Names() {
		probe, _ := acts.Probe(name)
		st := ActivityStatus{Activity: name, Optimized: probe.Active()}
		if st.Optimized {
			st.DrawViewKey = probe.DrawViewKey
		}
		status.Activities = append(status.Activities, st)
	}
	return status, nil
}

// QuickResult describes what a preset-driven enable did.
type QuickResult struct {
	Package     string
	Name        string
	Activity    string
	DrawViewKey string
}

// QuickEnable enables optimization using the preset catalog's draw view
// key and first candidate activity, or activityOverride when given. The
// catalog lookup runs before the backup hook and any store access, so
// an unknown application touches nothing.
func (m *Manager) QuickEnable(appID, activityOverride string) (*QuickResult, error) {
	if m.presets == nil {
		return nil, fmt.Errorf("%s: %w", appID, ErrUnknownApp)
	}
	app, ok := m.presets.Lookup(appID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", appID, ErrUnknownApp)
	}

	activity := activityOverride
	if activity == "" {
		activity = app.Activities[0]
	}

	if err := m.Enable(appID, app.DrawViewKey, activity); err != nil {
		return nil, err
	}
	return &QuickResult{
		Package:     appID,
		Name:        app.Name,
		Activity:    activity,
		DrawViewKey: app.DrawViewKey,
	}, nil
}

// Exists reports whether appID has a decodable record. The test
// command prechecks this before creating backups.
func (m *Manager) Exists(appID string) bool {
	_, err := m.locate(appID)
	return err == nil
}

func (m *Manager) runBackup() error {
	if m.backup == nil {
		return nil
	}
	if err := m.backup(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// locate fetches and decodes an application record. A missing key and
// an undecodable value both report ErrAppNotFound.
func (m *Manager) locate(appID string) (*Record, error) {
	raw, ok := m.store.Get(Key(appID))
	if !ok {
		return nil, fmt.Errorf("%s: %w", appID, ErrAppNotFound)
	}
	rec, ok := DecodeRecord(raw)
	if !ok {
		m.log.Debug("stored record not decodable", zap.String("package", appID))
		return nil, fmt.Errorf("%s: %w", appID, ErrAppNotFound)
	}
	return rec, nil
}

// activities decodes the record's map, folding a malformed map into
// the same failure class as an undecodable record.
func (m *Manager) activities(appID string, rec *Record) (*ActivityMap, error) {
	acts, err := rec.Activities()
	if err != nil {
		m.log.Debug("activityConfigMap malformed", zap.String("package", appID), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", appID, ErrAppNotFound)
	}
	return acts, nil
}

func (m *Manager) persist(appID string, rec *Record) error {
	if err := m.store.Set(Key(appID), rec.Encode()); err != nil {
		return fmt.Errorf("%s: %w: %v", appID, ErrWrite, err)
	}
	return nil
}
