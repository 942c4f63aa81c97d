package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MusicHub/core/isrc"
	"MusicHub/core/workflow"
	"MusicHub/model"
	"MusicHub/store"
)

func testSubmission(id, uploader string) *model.Submission {
	return &model.Submission{
		ID:               id,
		ISRC:             fmt.Sprintf("VNA2P2026%05d", 18),
		UploaderUsername: uploader,
		ArtistName:       uploader,
		SongTitle:        "Bài hát thử",
		SubmissionDate:   "01/09/2026",
		Status:           workflow.Initial,
		ReleaseType:      model.ReleaseSingle,
		AudioFilesCount:  1,
	}
}

func TestSubmissionRepository_AppendAndLookup(t *testing.T) {
	repo := NewStoreSubmissionRepository(store.NewMemoryStore())

	// Empty collection.
	all, err := repo.All()
	require.NoError(t, err)
	assert.Empty(t, all)

	s, err := repo.ByID("MH1")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, repo.Append(testSubmission("MH1", "artist")))
	require.NoError(t, repo.Append(testSubmission("MH2", "artist")))
	require.NoError(t, repo.Append(testSubmission("MH3", "someone")))

	all, err = repo.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// Insertion order is preserved.
	assert.Equal(t, "MH1", all[0].ID)
	assert.Equal(t, "MH3", all[2].ID)

	s, err = repo.ByID("MH2")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "artist", s.UploaderUsername)

	mine, err := repo.ByUploader("artist")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := repo.ByUploader("ghost")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSubmissionRepository_UpdateStatus(t *testing.T) {
	repo := NewStoreSubmissionRepository(store.NewMemoryStore())
	require.NoError(t, repo.Append(testSubmission("MH1", "artist")))

	require.NoError(t, repo.UpdateStatus("MH1", workflow.StatusComplete))

	s, err := repo.ByID("MH1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusComplete, s.Status)

	assert.ErrorIs(t, repo.UpdateStatus("MH404", workflow.StatusApproved), ErrSubmissionNotFound)
}

func TestSubmissionRepository_UpdateKeepsImmutableFields(t *testing.T) {
	repo := NewStoreSubmissionRepository(store.NewMemoryStore())
	require.NoError(t, repo.Append(testSubmission("MH1", "artist")))

	edited := testSubmission("MH1", "hijacker")
	edited.ISRC = "VNA2P202699999"
	edited.SubmissionDate = "31/12/2099"
	edited.SongTitle = "Tên mới"
	edited.Notes = "chỉnh sửa bởi quản lý"

	require.NoError(t, repo.Update(edited))

	s, err := repo.ByID("MH1")
	require.NoError(t, err)
	assert.Equal(t, "artist", s.UploaderUsername)
	assert.Equal(t, fmt.Sprintf("VNA2P2026%05d", 18), s.ISRC)
	assert.Equal(t, "01/09/2026", s.SubmissionDate)
	assert.Equal(t, "Tên mới", s.SongTitle)
	assert.Equal(t, "chỉnh sửa bởi quản lý", s.Notes)

	missing := testSubmission("MH404", "artist")
	assert.ErrorIs(t, repo.Update(missing), ErrSubmissionNotFound)
}

func TestSubmissionRepository_Remove(t *testing.T) {
	repo := NewStoreSubmissionRepository(store.NewMemoryStore())
	require.NoError(t, repo.Append(testSubmission("MH1", "artist")))
	require.NoError(t, repo.Append(testSubmission("MH2", "artist")))

	require.NoError(t, repo.Remove("MH1"))

	all, err := repo.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "MH2", all[0].ID)

	assert.ErrorIs(t, repo.Remove("MH1"), ErrSubmissionNotFound)
}

func TestSubmissionRepository_RoundTripThroughStore(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewStoreSubmissionRepository(st)

	sub := testSubmission("MH1", "artist")
	sub.Platforms = []string{"Spotify"}
	sub.TrackInfos = []model.TrackInfo{{
		FileName:          "track01.wav",
		SongTitle:         "Bài hát thử",
		ArtistName:        "artist",
		ArtistFullName:    "Nguyễn Văn A",
		AdditionalArtists: []model.AdditionalArtist{{Name: "B", Role: "featuring", Percentage: 20}},
	}}
	require.NoError(t, repo.Append(sub))

	// A fresh repository over the same store sees the identical record.
	got, err := NewStoreSubmissionRepository(st).ByID("MH1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *sub, *got)
}

func TestCounterRepository(t *testing.T) {
	repo := NewStoreCounterRepository(store.NewMemoryStore())

	// Fresh store reports the seed value.
	c, err := repo.Current()
	require.NoError(t, err)
	assert.Equal(t, isrc.SeedCounter, c)

	require.NoError(t, repo.Save(42))

	c, err = repo.Current()
	require.NoError(t, err)
	assert.Equal(t, 42, c)
}

func TestCounterRepository_SharedStore(t *testing.T) {
	st := store.NewMemoryStore()

	require.NoError(t, NewStoreCounterRepository(st).Save(100))

	c, err := NewStoreCounterRepository(st).Current()
	require.NoError(t, err)
	assert.Equal(t, 100, c)
}
