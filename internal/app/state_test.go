package app

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"defect-review/internal/region"
	"defect-review/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPhoto(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "weld-01.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return path
}

func newTestState(t *testing.T) (*State, *session.Store) {
	t.Helper()
	store, err := session.NewStore(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	return NewState(store), store
}

func TestCommitRegionsUpdatesSessionAndEmits(t *testing.T) {
	state, _ := newTestState(t)
	require.NoError(t, state.NewSession())

	photoPath := writeTestPhoto(t, t.TempDir())
	n, err := state.ImportPhotos([]string{photoPath})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NotEmpty(t, state.CurrentPhotoID())

	var regionEvents, classEvents int
	state.On(EventRegionsChanged, func(interface{}) { regionEvents++ })
	state.On(EventClassesChanged, func(interface{}) { classEvents++ })

	require.NoError(t, state.CommitRegions([]region.Region{
		{ID: "r1", Cls: "crack", X: 0.2, Y: 0.2, W: 0.2, H: 0.2},
	}))

	assert.Equal(t, 1, regionEvents)
	assert.Equal(t, 1, classEvents, "new class registers once")
	assert.True(t, state.Modified())
	assert.Equal(t, []string{"crack"}, state.Session().Classes)
	require.Len(t, state.CurrentRegions(), 1)
}

func TestSaveSessionWritesSnapshot(t *testing.T) {
	state, store := newTestState(t)
	require.NoError(t, state.NewSession())

	photoPath := writeTestPhoto(t, t.TempDir())
	_, err := state.ImportPhotos([]string{photoPath})
	require.NoError(t, err)
	require.NoError(t, state.CommitRegions([]region.Region{
		{ID: "r1", Cls: "dent", X: 0.1, Y: 0.1, W: 0.2, H: 0.2},
	}))

	require.NoError(t, state.SaveSession())
	assert.False(t, state.Modified())

	loaded, err := store.Load(state.Session().ID)
	require.NoError(t, err)
	require.Len(t, loaded.Photos, 1)
	require.Len(t, loaded.Photos[0].Regions, 1)
	assert.Equal(t, "r1", loaded.Photos[0].Regions[0].ID)
}

// The autosave goroutine snapshots the session under the state lock, so
// it can run while the UI keeps committing edits.
func TestAutosaveConcurrentWithCommits(t *testing.T) {
	state, store := newTestState(t)
	require.NoError(t, state.NewSession())

	photoPath := writeTestPhoto(t, t.TempDir())
	_, err := state.ImportPhotos([]string{photoPath})
	require.NoError(t, err)

	saver := NewAutosaver(state, time.Millisecond)
	saver.Start()

	for i := 0; i < 300; i++ {
		require.NoError(t, state.CommitRegions([]region.Region{
			{ID: "r1", Cls: "crack", X: float64(i%50) / 100, Y: 0.2, W: 0.1, H: 0.1},
		}))
	}
	saver.Stop()

	require.NoError(t, state.SaveSession())

	loaded, err := store.Load(state.Session().ID)
	require.NoError(t, err)
	require.Len(t, loaded.Photos, 1)
	require.Len(t, loaded.Photos[0].Regions, 1)
	assert.Equal(t, "r1", loaded.Photos[0].Regions[0].ID)
}
