package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRegistry_CreatePage(t *testing.T) {
	r := NewPageRegistry(1)

	handle, err := r.CreatePage("default", &fakeTab{})
	require.NoError(t, err)
	assert.Equal(t, "default", handle.Name)
	assert.Equal(t, uint64(1), handle.Generation)
	assert.Equal(t, "default", r.ActiveName())
}

func TestPageRegistry_CreatePage_Duplicate(t *testing.T) {
	r := NewPageRegistry(1)

	_, err := r.CreatePage("a", &fakeTab{})
	require.NoError(t, err)

	_, err = r.CreatePage("a", &fakeTab{})
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Name)
	assert.Equal(t, 1, r.Len())
}

func TestPageRegistry_CreatePage_KeepsActive(t *testing.T) {
	r := NewPageRegistry(1)

	_, err := r.CreatePage("default", &fakeTab{})
	require.NoError(t, err)
	_, err = r.CreatePage("research", &fakeTab{})
	require.NoError(t, err)

	// The first page stays active; creation does not steal the pointer.
	assert.Equal(t, "default", r.ActiveName())
}

func TestPageRegistry_GetPage_NotFound(t *testing.T) {
	r := NewPageRegistry(1)

	_, err := r.GetPage("missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)
}

func TestPageRegistry_SwitchActive(t *testing.T) {
	r := NewPageRegistry(1)
	_, err := r.CreatePage("default", &fakeTab{})
	require.NoError(t, err)
	_, err = r.CreatePage("research", &fakeTab{})
	require.NoError(t, err)

	require.NoError(t, r.SwitchActive("research"))

	active, err := r.ActivePage()
	require.NoError(t, err)
	assert.Equal(t, "research", active.Name)
}

func TestPageRegistry_SwitchActive_NotFound(t *testing.T) {
	r := NewPageRegistry(1)
	_, err := r.CreatePage("default", &fakeTab{})
	require.NoError(t, err)

	err = r.SwitchActive("missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "default", r.ActiveName())
}

func TestPageRegistry_ClosePage_LastPage(t *testing.T) {
	r := NewPageRegistry(1)
	tab := &fakeTab{}
	_, err := r.CreatePage("default", tab)
	require.NoError(t, err)

	err = r.ClosePage("default")
	require.ErrorIs(t, err, ErrLastPage)

	// Rejection leaves the registry untouched.
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "default", r.ActiveName())
	assert.False(t, tab.closed)
}

func TestPageRegistry_ClosePage_ReassignsActive(t *testing.T) {
	r := NewPageRegistry(1)
	_, err := r.CreatePage("default", &fakeTab{})
	require.NoError(t, err)
	_, err = r.CreatePage("second", &fakeTab{})
	require.NoError(t, err)
	_, err = r.CreatePage("third", &fakeTab{})
	require.NoError(t, err)

	require.NoError(t, r.SwitchActive("third"))
	require.NoError(t, r.ClosePage("third"))

	// Active moves to the most recently created remaining page.
	active, err := r.ActivePage()
	require.NoError(t, err)
	assert.Equal(t, "second", active.Name)
	assert.NotEqual(t, "third", active.Name)
}

func TestPageRegistry_ClosePage_InactivePage(t *testing.T) {
	r := NewPageRegistry(1)
	_, err := r.CreatePage("default", &fakeTab{})
	require.NoError(t, err)
	tab := &fakeTab{}
	_, err = r.CreatePage("second", tab)
	require.NoError(t, err)

	require.NoError(t, r.ClosePage("second"))

	assert.True(t, tab.closed)
	assert.Equal(t, "default", r.ActiveName())
	assert.Equal(t, []string{"default"}, r.Names())
}

func TestPageRegistry_ListPages_CreationOrder(t *testing.T) {
	r := NewPageRegistry(1)
	for _, name := range []string{"default", "b", "a"} {
		_, err := r.CreatePage(name, &fakeTab{})
		require.NoError(t, err)
	}

	infos := r.ListPages()
	require.Len(t, infos, 3)
	assert.Equal(t, "default", infos[0].Name)
	assert.Equal(t, "b", infos[1].Name)
	assert.Equal(t, "a", infos[2].Name)
	assert.True(t, infos[0].Active)
	assert.False(t, infos[1].Active)
	assert.False(t, infos[2].Active)
}

func TestPageRegistry_ListPages_TracksMembership(t *testing.T) {
	r := NewPageRegistry(1)
	_, err := r.CreatePage("default", &fakeTab{})
	require.NoError(t, err)
	_, err = r.CreatePage("a", &fakeTab{})
	require.NoError(t, err)
	_, err = r.CreatePage("b", &fakeTab{})
	require.NoError(t, err)
	require.NoError(t, r.ClosePage("a"))

	names := r.Names()
	assert.Equal(t, []string{"default", "b"}, names)

	active, err := r.ActivePage()
	require.NoError(t, err)
	assert.Contains(t, names, active.Name)
}

func TestPageRegistry_Teardown(t *testing.T) {
	r := NewPageRegistry(1)
	tab := &fakeTab{}
	_, err := r.CreatePage("default", tab)
	require.NoError(t, err)

	r.Teardown(true)

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "", r.ActiveName())
	assert.True(t, tab.closed)

	_, err = r.ActivePage()
	require.ErrorIs(t, err, ErrNoActivePage)
}

func TestPageRegistry_Teardown_WithoutClosing(t *testing.T) {
	r := NewPageRegistry(1)
	tab := &fakeTab{}
	_, err := r.CreatePage("default", tab)
	require.NoError(t, err)

	// After a crash the tabs are already dead; only bookkeeping drops.
	r.Teardown(false)

	assert.Equal(t, 0, r.Len())
	assert.False(t, tab.closed)
}
