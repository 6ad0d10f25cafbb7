package tracked_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evvaletov/tracked"
)

func sampleConfig() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": 8080,
			"tls": map[string]any{
				"cert": "/etc/ssl/server.crt",
				"key":  "/etc/ssl/server.key",
			},
		},
		"debug": true,
		"tags":  []any{"a", "b"},
	}
}

func TestMap_AllUnaccessedInitially(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	want := []string{"debug", "server", "tags"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, m.AccessedKeys())
}

func TestMap_GetMarksOnlyThatKey(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	v, err := m.Get("debug")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	assert.Equal(t, []string{"debug"}, m.AccessedKeys())
	want := []string{"server", "tags"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_GetMissingKey(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	_, err := m.Get("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tracked.ErrMissingKey))

	var keyErr *tracked.KeyError
	require.True(t, errors.As(err, &keyErr))
	assert.Equal(t, "nope", keyErr.Key)
	assert.Equal(t, "", keyErr.Path)
	assert.Equal(t, `tracked: missing key "nope"`, err.Error())

	// The failed lookup still counts as an access.
	assert.Equal(t, []string{"nope"}, m.AccessedKeys())
	assert.NotContains(t, m.Unaccessed(), "nope")
}

func TestMap_GetMissingKey_NestedPath(t *testing.T) {
	m := tracked.NewMap(sampleConfig())
	server, err := m.Get("server")
	require.NoError(t, err)

	_, err = server.(*tracked.Map).Get("missing")
	require.Error(t, err)
	assert.Equal(t, `tracked: missing key "missing" at server`, err.Error())
}

func TestMap_GetOr(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	assert.Equal(t, true, m.GetOr("debug", false))
	assert.Equal(t, 30, m.GetOr("timeout", 30))

	// The absent key was probed, so it is marked and never reported, and it
	// shows up in the accessed snapshot even though the raw map lacks it.
	assert.Equal(t, []string{"debug", "timeout"}, m.AccessedKeys())
	assert.NotContains(t, m.Unaccessed(), "timeout")

	// Present containers come back wrapped, same as Get.
	server := m.GetOr("server", nil)
	require.IsType(t, &tracked.Map{}, server)
}

func TestMap_HasAndKeysDoNotMark(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	assert.True(t, m.Has("server"))
	assert.False(t, m.Has("nope"))

	var keys []string
	for k := range m.Keys() {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"server", "debug", "tags"}, keys)

	assert.Empty(t, m.AccessedKeys())
	assert.Len(t, m.Unaccessed(), 3)
}

func TestMap_ValuesMarksEveryKey(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	seen := 0
	for range m.Values() {
		seen++
	}
	assert.Equal(t, 3, seen)
	assert.Equal(t, []string{"debug", "server", "tags"}, m.AccessedKeys())

	// Bulk consumption reads this level only. The wrapped children handed
	// out keep tracking their own content, which nobody read.
	want := []string{"server.host", "server.port", "server.tls"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_ValuesMarksEvenWhenStoppedEarly(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	for range m.Values() {
		break
	}
	assert.Equal(t, []string{"debug", "server", "tags"}, m.AccessedKeys())
}

func TestMap_AllYieldsWrappedChildren(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	got := map[string]any{}
	for k, v := range m.All() {
		got[k] = v
	}
	require.Len(t, got, 3)
	assert.IsType(t, &tracked.Map{}, got["server"])
	assert.IsType(t, &tracked.Slice{}, got["tags"])
	assert.Equal(t, true, got["debug"])
	assert.Equal(t, []string{"debug", "server", "tags"}, m.AccessedKeys())

	// The child handed out by the iterator is the same wrapper Get returns.
	server, err := m.Get("server")
	require.NoError(t, err)
	require.Same(t, got["server"], server)
}

func TestMap_ChildWrapperIdentityStable(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	first, err := m.Get("server")
	require.NoError(t, err)
	second, err := m.Get("server")
	require.NoError(t, err)
	require.Same(t, first, second)

	// State accumulated through one handle is visible through the other.
	_, err = first.(*tracked.Map).Get("host")
	require.NoError(t, err)
	assert.Contains(t, second.(*tracked.Map).AccessedKeys(), "host")
}

func TestMap_UnaccessedReportsUnreadSubtreeOnce(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	server, err := m.Get("server")
	require.NoError(t, err)
	_, err = server.(*tracked.Map).Get("host")
	require.NoError(t, err)

	// "server" was read, so its unread children are reported individually;
	// "tags" was never read and appears once, not expanded.
	want := []string{"debug", "server.port", "server.tls", "tags"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_UnaccessedIsIdempotent(t *testing.T) {
	m := tracked.NewMap(sampleConfig())
	_, err := m.Get("debug")
	require.NoError(t, err)

	first := m.Unaccessed()

	// Re-reading the same key changes nothing beyond the first read's
	// effect, and reporting itself does not count as access.
	_, err = m.Get("debug")
	require.NoError(t, err)
	second := m.Unaccessed()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Unaccessed mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"debug"}, m.AccessedKeys())
}

func TestMap_MarkAccessed(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	m.MarkAccessed("server", "tags")
	want := []string{"debug"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_MarkAccessedSuppressesExistingChildReport(t *testing.T) {
	m := tracked.NewMap(sampleConfig())

	// Wrap the child and read part of it first.
	server, err := m.Get("server")
	require.NoError(t, err)
	srv := server.(*tracked.Map)
	_, err = srv.Get("host")
	require.NoError(t, err)

	// Forwarding the subtree afterwards suppresses the child's report from
	// the parent, unread descendants included.
	m.MarkAccessed("server")
	want := []string{"debug", "tags"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}

	// The child keeps its own accounting when asked directly.
	assert.Equal(t, []string{"server.port", "server.tls"}, srv.Unaccessed())
}

func TestMap_MarkAllAccessedKeepsNestedState(t *testing.T) {
	m := tracked.NewMap(map[string]any{
		"a": map[string]any{"x": 1},
		"b": 2,
	})

	// Wrap "a" without reading "a.x", then mark everything at this level.
	_, err := m.Get("a")
	require.NoError(t, err)
	m.MarkAllAccessed()

	// MarkAllAccessed is not recursive: the wrapped child still reports.
	want := []string{"a.x"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_PathComposition(t *testing.T) {
	m := tracked.NewMap(map[string]any{
		"a": map[string]any{
			"b": []any{
				map[string]any{"d": 1, "e": 2},
			},
		},
	})

	a, err := m.Get("a")
	require.NoError(t, err)
	b, err := a.(*tracked.Map).Get("b")
	require.NoError(t, err)
	elem, err := b.(*tracked.Slice).At(0)
	require.NoError(t, err)
	inner := elem.(*tracked.Map)
	assert.Equal(t, "a.b[0]", inner.Path())

	_, err = inner.Get("d")
	require.NoError(t, err)
	want := []string{"a.b[0].e"}
	if diff := cmp.Diff(want, m.Unaccessed()); diff != "" {
		t.Errorf("Unaccessed mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_EqualIgnoresAccessedState(t *testing.T) {
	raw := sampleConfig()
	consumed := tracked.NewMap(raw)
	fresh := tracked.NewMap(sampleConfig())

	_, err := consumed.Get("debug")
	require.NoError(t, err)

	assert.True(t, consumed.Equal(fresh))
	assert.True(t, consumed.Equal(sampleConfig()))
	assert.True(t, consumed.Equal(raw))
	assert.False(t, consumed.Equal(map[string]any{"debug": true}))
	assert.False(t, consumed.Equal("not a map"))
	assert.False(t, consumed.Equal(nil))
}

func TestMap_String(t *testing.T) {
	m := tracked.NewMap(sampleConfig())
	assert.Equal(t, `tracked.Map(0/3 keys accessed, path="")`, m.String())

	_, err := m.Get("debug")
	require.NoError(t, err)
	assert.Equal(t, `tracked.Map(1/3 keys accessed, path="")`, m.String())

	server, err := m.Get("server")
	require.NoError(t, err)
	assert.Equal(t, `tracked.Map(0/3 keys accessed, path="server")`, server.(*tracked.Map).String())
}

func TestMap_EmptyMap(t *testing.T) {
	m := tracked.NewMap(map[string]any{})
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Unaccessed())

	m.MarkAllAccessed()
	assert.Empty(t, m.AccessedKeys())
}

func TestMap_RawBypassesTracking(t *testing.T) {
	raw := sampleConfig()
	m := tracked.NewMap(raw)

	got := m.Raw()
	assert.Equal(t, raw, got)
	// Walking the raw tree directly leaves the tracking state untouched.
	_ = got["server"]
	assert.Empty(t, m.AccessedKeys())
}

func TestMap_NilValueIsScalar(t *testing.T) {
	m := tracked.NewMap(map[string]any{"null": nil})

	v, err := m.Get("null")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Empty(t, m.Unaccessed())
}
