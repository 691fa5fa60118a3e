package audit

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"inkwell/cms/db/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	store, err := sqlite.NewSQLiteDB(filepath.Join(t.TempDir(), "audit_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewWriter(store)
}

func TestLogActionRequiresAction(t *testing.T) {
	w := newTestWriter(t)

	entry, err := w.LogAction("", "u1", Options{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, entry)
}

func TestLogActionMinimal(t *testing.T) {
	w := newTestWriter(t)

	entry, err := w.LogAction("login", "", Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "login", entry.Action)
	assert.Equal(t, "{}", entry.Metadata)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestListForUserNewestFirst(t *testing.T) {
	w := newTestWriter(t)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := w.LogAction("post.update", "u1", Options{ResourceType: "post", ResourceID: "p1"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := w.LogAction("post.update", "u2", Options{})
	require.NoError(t, err)

	entries, err := w.ListForUser("u1")
	require.NoError(t, err)
	require.Len(t, entries, n)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].CreatedAt.After(entries[i].CreatedAt),
			"entries must be strictly newest first")
	}

	// Entries never change between reads without new writes.
	again, err := w.ListForUser("u1")
	require.NoError(t, err)
	assert.Equal(t, entries, again)
}

func TestListForResource(t *testing.T) {
	w := newTestWriter(t)

	_, err := w.LogAction("post.delete", "u1", Options{ResourceType: "post", ResourceID: "p1"})
	require.NoError(t, err)
	_, err = w.LogAction("comment.delete", "u1", Options{ResourceType: "comment", ResourceID: "c1"})
	require.NoError(t, err)

	entries, err := w.ListForResource("post", "p1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "post.delete", entries[0].Action)
}

func TestListRecentBounded(t *testing.T) {
	w := newTestWriter(t)

	for i := 0; i < 10; i++ {
		_, err := w.LogAction("login", "u1", Options{})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := w.ListRecent(3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].CreatedAt.After(entries[i].CreatedAt))
	}
}

func TestMetadataStoredAsJSON(t *testing.T) {
	w := newTestWriter(t)

	entry, err := w.LogAction("user.role_change", "u1", Options{
		ResourceType: "user",
		ResourceID:   "u2",
		Metadata: map[string]interface{}{
			"old_role": "author",
			"new_role": "editor",
		},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entry.Metadata), &decoded))
	assert.Equal(t, "author", decoded["old_role"])
	assert.Equal(t, "editor", decoded["new_role"])
}

func TestRecordAsyncPersists(t *testing.T) {
	w := newTestWriter(t)
	w.Start()

	w.Record("login", "u1", Options{IPAddress: "10.0.0.1"})
	w.Record("", "u1", Options{}) // invalid, dropped silently
	w.Stop()

	entries, err := w.ListForUser("u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "login", entries[0].Action)
	assert.Equal(t, "10.0.0.1", entries[0].IPAddress)
}

func TestNormalizeMetadataNested(t *testing.T) {
	metadata := map[string]interface{}{
		"plain": "value",
		"nested": map[interface{}]interface{}{
			1:     "one",
			"two": map[interface{}]interface{}{true: "yes"},
		},
		"list": []interface{}{
			map[interface{}]interface{}{42: "answer"},
			"scalar",
		},
	}

	normalized := NormalizeMetadata(metadata)

	nested, ok := normalized["nested"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "one", nested["1"])

	inner, ok := nested["two"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "yes", inner["true"])

	list, ok := normalized["list"].([]interface{})
	require.True(t, ok)
	element, ok := list[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "answer", element["42"])
	assert.Equal(t, "scalar", list[1])

	// Must survive JSON encoding, which map[interface{}]interface{} does not.
	_, err := json.Marshal(normalized)
	assert.NoError(t, err)
}
