package eac

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eacctl/internal/preset"
)

// memStore is an in-memory Store for manager tests. Keys returns map
// iteration order on purpose, so tests cover the manager's own sorting.
type memStore struct {
	entries map[string]string
	writes  int
	setErr  error
}

var _ Store = (*memStore)(nil)

func newMemStore(entries map[string]string) *memStore {
	s := &memStore{entries: map[string]string{}}
	for k, v := range entries {
		s.entries[k] = v
	}
	return s
}

func (s *memStore) Get(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

func (s *memStore) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.writes++
	s.entries[key] = value
	return nil
}

func (s *memStore) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// tracingStore records the order of store reads relative to the backup
// hook.
type tracingStore struct {
	*memStore
	calls *[]string
}

func (s *tracingStore) Get(key string) (string, bool) {
	*s.calls = append(*s.calls, "get")
	return s.memStore.Get(key)
}

const (
	testPkg = "com.example.app"
	testKey = KeyPrefix + testPkg
)

func TestKey(t *testing.T) {
	assert.Equal(t, "eac_app_com.example.app", Key("com.example.app"))
}

func TestEnableCreatesMapOnRecordWithoutOne(t *testing.T) {
	st := newMemStore(map[string]string{
		testKey: `{"pkgName":"com.example.app","version":7}`,
	})
	m := NewManager(st, nil)

	require.NoError(t, m.Enable(testPkg, "com.example.app.DrawView", "com.example.app.MainActivity"))

	// Existing fields keep their position; the map lands at the end.
	assert.Regexp(t, `^\{"pkgName":"com\.example\.app","version":7,"activityConfigMap":`, st.entries[testKey])

	status, err := m.Show(testPkg)
	require.NoError(t, err)
	want := &AppStatus{Package: testPkg, Activities: []ActivityStatus{{
		Activity:    "com.example.app.MainActivity",
		Optimized:   true,
		DrawViewKey: "com.example.app.DrawView",
	}}}
	if diff := cmp.Diff(want, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestEnableMissingRecord(t *testing.T) {
	st := newMemStore(nil)
	m := NewManager(st, nil)

	err := m.Enable("com.absent.app", "view.Key", "some.Activity")
	assert.ErrorIs(t, err, ErrAppNotFound)
	assert.Zero(t, st.writes)
}

func TestEnableUndecodableRecord(t *testing.T) {
	st := newMemStore(map[string]string{testKey: `}{ not json`})
	m := NewManager(st, nil)

	err := m.Enable(testPkg, "view.Key", "some.Activity")
	assert.ErrorIs(t, err, ErrAppNotFound)
	assert.Zero(t, st.writes)
}

func TestEnableMalformedMap(t *testing.T) {
	st := newMemStore(map[string]string{testKey: `{"activityConfigMap":42}`})
	m := NewManager(st, nil)

	err := m.Enable(testPkg, "view.Key", "some.Activity")
	assert.ErrorIs(t, err, ErrAppNotFound)
	assert.Zero(t, st.writes)
}

func TestEnableReplacesExistingEntry(t *testing.T) {
	st := newMemStore(map[string]string{
		testKey: `{"activityConfigMap":{"some.Activity":{"noteConfig":{"drawViewKey":"old.Key","enable":true}}}}`,
	})
	m := NewManager(st, nil)

	require.NoError(t, m.Enable(testPkg, "new.Key", "some.Activity"))

	status, err := m.Show(testPkg)
	require.NoError(t, err)
	require.Len(t, status.Activities, 1)
	assert.Equal(t, "new.Key", status.Activities[0].DrawViewKey)
}

func TestEnableTwiceIsByteStable(t *testing.T) {
	st := newMemStore(map[string]string{testKey: `{"pkgName":"com.example.app"}`})
	m := NewManager(st, nil)

	require.NoError(t, m.Enable(testPkg, "view.Key", "some.Activity"))
	first := st.entries[testKey]
	require.NoError(t, m.Enable(testPkg, "view.Key", "some.Activity"))
	assert.Equal(t, first, st.entries[testKey])
}

func TestDisableScopedRemovesOnlyNamed(t *testing.T) {
	st := newMemStore(map[string]string{
		testKey: `{"activityConfigMap":{"drop.Activity":{"noteConfig":{"drawViewKey":"v.K","enable":true}},"keep.Activity":{"customTag":"keepme","noteConfig":{"drawViewKey":"v.K","enable":true}}}}`,
	})
	m := NewManager(st, nil)

	removed, err := m.Disable(testPkg, "drop.Activity")
	require.NoError(t, err)
	assert.Equal(t, []string{"drop.Activity"}, removed)
	assert.Equal(t,
		`{"activityConfigMap":{"keep.Activity":{"customTag":"keepme","noteConfig":{"drawViewKey":"v.K","enable":true}}}}`,
		st.entries[testKey])
}

func TestDisableScopedRemovesInactiveEntry(t *testing.T) {
	// A scoped disable targets the entry by name; the active test does
	// not gate it.
	st := newMemStore(map[string]string{
		testKey: `{"activityConfigMap":{"flag.Off":{"noteConfig":{"drawViewKey":"v.K","enable":false}}}}`,
	})
	m := NewManager(st, nil)

	removed, err := m.Disable(testPkg, "flag.Off")
	require.NoError(t, err)
	assert.Equal(t, []string{"flag.Off"}, removed)
	assert.Equal(t, `{"activityConfigMap":{}}`, st.entries[testKey])
}

func TestDisableScopedMissingActivity(t *testing.T) {
	st := newMemStore(map[string]string{
		testKey: `{"activityConfigMap":{"other.Activity":{"noteConfig":{"drawViewKey":"v.K","enable":true}}}}`,
	})
	m := NewManager(st, nil)

	_, err := m.Disable(testPkg, "missing.Activity")
	assert.ErrorIs(t, err, ErrActivityNotFound)
	assert.Zero(t, st.writes)
}

func TestDisableSweepRemovesActiveOnly(t *testing.T) {
	st := newMemStore(map[string]string{
		testKey: `{"activityConfigMap":{` +
			`"active.One":{"noteConfig":{"drawViewKey":"v.K","enable":true}},` +
			`"flag.Off":{"noteConfig":{"drawViewKey":"v.K","enable":false}},` +
			`"active.Two":{"noteConfig":{"drawViewKey":"v.K","enable":true}},` +
			`"keyless.Entry":{"noteConfig":{"drawViewKey":"","enable":true}}}}`,
	})
	m := NewManager(st, nil)

	removed, err := m.Disable(testPkg, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"active.One", "active.Two"}, removed)
	assert.Equal(t, 1, st.writes)
	assert.Equal(t,
		`{"activityConfigMap":{`+
			`"flag.Off":{"noteConfig":{"drawViewKey":"v.K","enable":false}},`+
			`"keyless.Entry":{"noteConfig":{"drawViewKey":"","enable":true}}}}`,
		st.entries[testKey])
}

func TestDisableSweepNoMatchesStillWrites(t *testing.T) {
	doc := `{"activityConfigMap":{"flag.Off":{"noteConfig":{"drawViewKey":"v.K","enable":false}}}}`
	st := newMemStore(map[string]string{testKey: doc})
	m := NewManager(st, nil)

	removed, err := m.Disable(testPkg, "")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 1, st.writes)
	assert.Equal(t, doc, st.entries[testKey])
}

func TestDisableEmptyOrAbsentMapIsNoOp(t *testing.T) {
	for _, doc := range []string{
		`{"pkgName":"com.example.app"}`,
		`{"activityConfigMap":{}}`,
		`{"activityConfigMap":null}`,
	} {
		st := newMemStore(map[string]string{testKey: doc})
		m := NewManager(st, nil)

		removed, err := m.Disable(testPkg, "")
		require.NoError(t, err, doc)
		assert.Empty(t, removed, doc)
		assert.Zero(t, st.writes, doc)
		assert.Equal(t, doc, st.entries[testKey], doc)
	}
}

func TestDisableMissingRecord(t *testing.T) {
	m := NewManager(newMemStore(nil), nil)

	_, err := m.Disable("com.absent.app", "")
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestPersistFailure(t *testing.T) {
	doc := `{"activityConfigMap":{"a.One":{"noteConfig":{"drawViewKey":"v.K","enable":true}}}}`
	st := newMemStore(map[string]string{testKey: doc})
	st.setErr = errors.New("disk full")
	m := NewManager(st, nil)

	err := m.Enable(testPkg, "view.Key", "b.Two")
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, doc, st.entries[testKey])
}

func TestBackupHookRunsBeforeStoreReads(t *testing.T) {
	var calls []string
	st := &tracingStore{
		memStore: newMemStore(map[string]string{testKey: `{"pkgName":"com.example.app"}`}),
		calls:    &calls,
	}
	m := NewManager(st, nil, WithBackup(func() error {
		calls = append(calls, "backup")
		return nil
	}))

	require.NoError(t, m.Enable(testPkg, "view.Key", "some.Activity"))
	require.NotEmpty(t, calls)
	assert.Equal(t, "backup", calls[0])
}

func TestBackupHookFailureAborts(t *testing.T) {
	hookErr := errors.New("copy failed")
	st := newMemStore(map[string]string{testKey: `{"pkgName":"com.example.app"}`})
	m := NewManager(st, nil, WithBackup(func() error { return hookErr }))

	err := m.Enable(testPkg, "view.Key", "some.Activity")
	assert.ErrorIs(t, err, hookErr)
	assert.ErrorContains(t, err, "backup")
	assert.Zero(t, st.writes)

	_, err = m.Disable(testPkg, "")
	assert.ErrorIs(t, err, hookErr)
	assert.Zero(t, st.writes)
}

func TestReadOnlyOperationsSkipBackupHook(t *testing.T) {
	hookCalls := 0
	st := newMemStore(map[string]string{testKey: `{"pkgName":"com.example.app"}`})
	m := NewManager(st, nil, WithBackup(func() error {
		hookCalls++
		return nil
	}))

	m.ListAll()
	m.ListOptimized()
	_, err := m.Show(testPkg)
	require.NoError(t, err)
	assert.Zero(t, hookCalls)
}

func TestListAllSortedAndFiltered(t *testing.T) {
	st := newMemStore(map[string]string{
		"eac_app_b.app": `{}`,
		"eac_app_a.app": `{}`,
		"eac_app_c.app": `not even json`,
		"other_key":     `{}`,
	})
	m := NewManager(st, nil)

	assert.Equal(t, []string{"a.app", "b.app", "c.app"}, m.ListAll())
}

func TestListAllEmptyStore(t *testing.T) {
	m := NewManager(newMemStore(nil), nil)
	assert.Empty(t, m.ListAll())
}

func TestListOptimized(t *testing.T) {
	st := newMemStore(map[string]string{
		"eac_app_with.active": `{"activityConfigMap":{` +
			`"active.One":{"noteConfig":{"drawViewKey":"v.K","enable":true}},` +
			`"flag.Off":{"noteConfig":{"drawViewKey":"v.K","enable":false}}}}`,
		"eac_app_all.inactive": `{"activityConfigMap":{"flag.Off":{"noteConfig":{"drawViewKey":"v.K","enable":false}}}}`,
		"eac_app_no.map":       `{"pkgName":"no.map"}`,
		"eac_app_broken":       `}{`,
		"unrelated":            `ignored`,
	})
	m := NewManager(st, nil)

	want := []AppOptimizations{{
		Package:    "with.active",
		Activities: []OptimizedActivity{{Activity: "active.One", DrawViewKey: "v.K"}},
	}}
	if diff := cmp.Diff(want, m.ListOptimized()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestShowReportsAllEntriesInDocumentOrder(t *testing.T) {
	st := newMemStore(map[string]string{
		testKey: `{"activityConfigMap":{` +
			`"zeta.Active":{"noteConfig":{"drawViewKey":"v.K","enable":true}},` +
			`"alpha.Off":{"noteConfig":{"drawViewKey":"v.K","enable":false}},` +
			`"broken.Entry":5}}`,
	})
	m := NewManager(st, nil)

	status, err := m.Show(testPkg)
	require.NoError(t, err)
	want := &AppStatus{Package: testPkg, Activities: []ActivityStatus{
		{Activity: "zeta.Active", Optimized: true, DrawViewKey: "v.K"},
		{Activity: "alpha.Off", Optimized: false},
		{Activity: "broken.Entry", Optimized: false},
	}}
	if diff := cmp.Diff(want, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestShowRecordWithoutMap(t *testing.T) {
	st := newMemStore(map[string]string{testKey: `{"pkgName":"com.example.app"}`})
	m := NewManager(st, nil)

	status, err := m.Show(testPkg)
	require.NoError(t, err)
	assert.Equal(t, testPkg, status.Package)
	assert.Empty(t, status.Activities)
}

func TestShowMissingRecord(t *testing.T) {
	m := NewManager(newMemStore(nil), nil)

	_, err := m.Show("com.absent.app")
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestShowMalformedMap(t *testing.T) {
	st := newMemStore(map[string]string{testKey: `{"activityConfigMap":"nope"}`})
	m := NewManager(st, nil)

	_, err := m.Show(testPkg)
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestQuickEnableUsesPreset(t *testing.T) {
	st := newMemStore(map[string]string{
		"eac_app_com.xodo.pdf.reader": `{"pkgName":"com.xodo.pdf.reader"}`,
	})
	m := NewManager(st, preset.Builtin())

	res, err := m.QuickEnable("com.xodo.pdf.reader", "")
	require.NoError(t, err)
	want := &QuickResult{
		Package:     "com.xodo.pdf.reader",
		Name:        "Xodo PDF Reader",
		Activity:    "com.xodo.presentation.activity.TabletReaderActivity",
		DrawViewKey: "com.pdftron.pdf.PDFViewCtrl",
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	status, err := m.Show("com.xodo.pdf.reader")
	require.NoError(t, err)
	require.Len(t, status.Activities, 1)
	assert.True(t, status.Activities[0].Optimized)
	assert.Equal(t, "com.pdftron.pdf.PDFViewCtrl", status.Activities[0].DrawViewKey)
}

func TestQuickEnableActivityOverride(t *testing.T) {
	st := newMemStore(map[string]string{
		"eac_app_com.xodo.pdf.reader": `{"pkgName":"com.xodo.pdf.reader"}`,
	})
	m := NewManager(st, preset.Builtin())

	res, err := m.QuickEnable("com.xodo.pdf.reader", "custom.Activity")
	require.NoError(t, err)
	assert.Equal(t, "custom.Activity", res.Activity)

	status, err := m.Show("com.xodo.pdf.reader")
	require.NoError(t, err)
	require.Len(t, status.Activities, 1)
	assert.Equal(t, "custom.Activity", status.Activities[0].Activity)
}

func TestQuickEnableUnknownApp(t *testing.T) {
	hookCalls := 0
	st := newMemStore(nil)
	m := NewManager(st, preset.Builtin(), WithBackup(func() error {
		hookCalls++
		return nil
	}))

	_, err := m.QuickEnable("com.not.in.catalog", "")
	assert.ErrorIs(t, err, ErrUnknownApp)
	assert.Zero(t, hookCalls)
	assert.Zero(t, st.writes)
}

func TestQuickEnableNilCatalog(t *testing.T) {
	m := NewManager(newMemStore(nil), nil)

	_, err := m.QuickEnable("com.xodo.pdf.reader", "")
	assert.ErrorIs(t, err, ErrUnknownApp)
}

func TestQuickEnableKnownAppWithoutRecord(t *testing.T) {
	m := NewManager(newMemStore(nil), preset.Builtin())

	_, err := m.QuickEnable("com.xodo.pdf.reader", "")
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestExists(t *testing.T) {
	st := newMemStore(map[string]string{
		"eac_app_good.app":   `{"pkgName":"good.app"}`,
		"eac_app_broken.app": `}{`,
	})
	m := NewManager(st, nil)

	assert.True(t, m.Exists("good.app"))
	assert.False(t, m.Exists("broken.app"))
	assert.False(t, m.Exists("absent.app"))
}
