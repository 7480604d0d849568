package assets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(store *fakeMetadata, blobs *fakeBlobs) *Library {
	return NewLibrary(store, blobs, discardLogger(), 2)
}

func TestLibraryViewMirrorsPagination(t *testing.T) {
	store := &fakeMetadata{records: seedRecords("choir-a", 5)}
	lib := newTestLibrary(store, &fakeBlobs{})
	ctx := context.Background()

	page, err := lib.FirstPage(ctx, "choir-a", nil, 2)
	require.NoError(t, err)
	assert.True(t, page.HasMore)

	_, err = lib.NextPage(ctx, "choir-a", nil, 2)
	require.NoError(t, err)

	// the view is exactly the pages in fetch order
	view := lib.View().Records()
	require.Len(t, view, 4)
	for i, rec := range view {
		assert.Equal(t, fmt.Sprintf("name-%d", i+1), rec.Name)
	}
}

func TestLibraryFirstPageReloadsView(t *testing.T) {
	store := &fakeMetadata{records: seedRecords("choir-a", 5)}
	lib := newTestLibrary(store, &fakeBlobs{})
	ctx := context.Background()

	_, err := lib.FirstPage(ctx, "choir-a", nil, 2)
	require.NoError(t, err)
	_, err = lib.NextPage(ctx, "choir-a", nil, 2)
	require.NoError(t, err)
	_, err = lib.DeepSearch(ctx, "choir-a", "name-5")
	require.NoError(t, err)
	require.Len(t, lib.DeepResults("choir-a"), 1)

	// reloading drops appended pages and deep results
	page, err := lib.FirstPage(ctx, "choir-a", nil, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, lib.View().Len())
	assert.Empty(t, lib.DeepResults("choir-a"))
}

func TestLibraryFilterLocal(t *testing.T) {
	records := seedRecords("choir-a", 4)
	records[1].Type = TypeAudio
	records[1].Name = "Rehearsal Take"
	store := &fakeMetadata{records: records}
	lib := newTestLibrary(store, &fakeBlobs{})

	_, err := lib.FirstPage(context.Background(), "choir-a", nil, 4)
	require.NoError(t, err)
	remoteCalls := len(store.callLog())

	audio := TypeAudio
	matched := lib.FilterLocal("choir-a", &audio, "rehearsal")
	require.Len(t, matched, 1)
	assert.Equal(t, "Rehearsal Take", matched[0].Name)

	assert.Empty(t, lib.FilterLocal("choir-a", nil, "no such name"))

	// local filtering never reaches the store
	assert.Equal(t, remoteCalls, len(store.callLog()))
}

func TestLibraryDeepResultsStayOutOfView(t *testing.T) {
	store := &fakeMetadata{records: seedRecords("choir-a", 5)}
	lib := newTestLibrary(store, &fakeBlobs{})
	ctx := context.Background()

	_, err := lib.FirstPage(ctx, "choir-a", nil, 2)
	require.NoError(t, err)

	fresh, err := lib.DeepSearch(ctx, "choir-a", "name")
	require.NoError(t, err)
	require.Len(t, fresh, 3)

	assert.Equal(t, 2, lib.View().Len())

	lib.ClearSearch("choir-a")
	assert.Empty(t, lib.DeepResults("choir-a"))
	assert.Equal(t, 2, lib.View().Len())
}

func TestLibraryUploadThenDelete(t *testing.T) {
	store := &fakeMetadata{}
	blobs := &fakeBlobs{}
	lib := newTestLibrary(store, blobs)
	ctx := context.Background()

	result := lib.Upload(ctx, "choir-a", batchOf("a.png"), nil)
	require.Equal(t, BatchSucceeded, result.Outcome)
	rec := result.Files[0].Record
	require.NotNil(t, rec)
	assert.True(t, lib.View().Contains(rec.ID))

	outcome, err := lib.Delete(ctx, "choir-a", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, DeleteCompleted, outcome)
	assert.False(t, lib.View().Contains(rec.ID))

	_, err = lib.Find(ctx, "choir-a", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
