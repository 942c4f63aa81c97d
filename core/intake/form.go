// Package intake assembles validated submissions from the multi-section
// release form and commits them to the label's collection.
package intake

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"MusicHub/model"
)

// User-facing messages, verbatim from the dashboard.
const (
	MsgMissingFullName    = "Vui lòng nhập họ tên đầy đủ."
	MsgMissingArtistName  = "Vui lòng nhập tên nghệ sĩ."
	MsgMissingArtistRole  = "Vui lòng chọn vai trò chính."
	MsgMissingSongTitle   = "Vui lòng nhập tên bài hát."
	MsgMissingCategory    = "Vui lòng chọn thể loại chính."
	MsgMissingReleaseType = "Vui lòng chọn định dạng phát hành."
	MsgMissingAlbumName   = "Vui lòng nhập tên album."
	MsgMissingCoverImage  = "Chưa chọn Ảnh Bìa."
	MsgNoTracks           = "Chưa có track nào."
	MsgMissingCopyright   = "Vui lòng chọn thông tin bản quyền."
	MsgMissingReleased    = "Vui lòng chọn thông tin phát hành."
	MsgMissingHasLyrics   = "Vui lòng chọn thông tin lời bài hát."
	MsgMissingLyrics      = "Vui lòng nhập lời bài hát."
	MsgMissingEmail       = "Vui lòng nhập email liên hệ."
	MsgMissingReleaseDate = "Vui lòng chọn ngày phát hành."

	MsgSingleTooManyTracks = "Single chỉ cho phép tối đa 2 track."
	MsgEPTooFewTracks      = "EP cần ít nhất 2 track."
	MsgLPTooFewTracks      = "LP cần ít nhất 6 track."
	MsgAlbumTooFewTracks   = "Album cần ít nhất 10 track."

	// MsgSingleTracksKept is the notice shown when extra tracks are
	// dropped to fit the single format.
	MsgSingleTracksKept = "Đã giữ lại 2 track đầu tiên cho định dạng Single."
)

// SingleMaxTracks caps a single at two tracks, enforced both when tracks
// are added and again at final validation.
const SingleMaxTracks = 2

// ReleaseDateLeadDays is the review window: the earliest selectable
// release date is always today plus this many calendar days.
const ReleaseDateLeadDays = 2

// DateLayout is the wire format for release dates.
const DateLayout = "2006-01-02"

// TrackEntry is one audio file attached to the form, with its metadata.
// The file itself has already passed validate.AudioTrack by the time an
// entry exists.
type TrackEntry struct {
	ID   string          `json:"id"`
	Info model.TrackInfo `json:"info"`
}

// Form is the immutable state of the release form. Mutating helpers
// return a new value; Validate is pure. This keeps UI state concerns out
// of the intake core and gives tests a plain value to build.
type Form struct {
	FullName     string
	ArtistName   string
	ArtistRole   string
	SongTitle    string
	MainCategory string
	SubCategory  string
	ReleaseType  model.ReleaseType
	AlbumName    string

	ImageFile string // validated cover file name
	ImageURL  string // data URL or remote URL of the cover
	VideoFile string

	Tracks []TrackEntry

	IsCopyrightOwner string
	HasBeenReleased  string
	Platforms        []string
	HasLyrics        string
	Lyrics           string

	UserEmail   string
	Notes       string
	ReleaseDate string // DateLayout

	AdditionalArtists []model.AdditionalArtist
}

// NewForm seeds a form the way the dashboard does for the given user:
// their legal name and contact email prefilled, the artist name prefilled
// for artist accounts, and the earliest allowed release date selected.
func NewForm(user *model.User, now time.Time) Form {
	f := Form{
		FullName:    user.FullName,
		UserEmail:   user.Email,
		ReleaseDate: MinReleaseDate(now).Format(DateLayout),
	}
	if user.Role == model.RoleArtist {
		f.ArtistName = user.Username
	}
	return f
}

// MinReleaseDate returns the earliest allowed release date: two calendar
// days after now, at midnight.
func MinReleaseDate(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+ReleaseDateLeadDays, 0, 0, 0, 0, now.Location())
}

// AddTrack returns the form with the track appended. For singles already
// holding two tracks the form is returned unchanged along with the
// kept-two-tracks notice. The first track inherits the form's title and
// artist fields, as the dashboard prefills them.
func (f Form) AddTrack(fileName string) (Form, string) {
	if f.ReleaseType == model.ReleaseSingle && len(f.Tracks) >= SingleMaxTracks {
		return f, MsgSingleTracksKept
	}

	info := model.TrackInfo{
		FileName:          fileName,
		AdditionalArtists: []model.AdditionalArtist{},
	}
	if len(f.Tracks) == 0 {
		info.SongTitle = f.SongTitle
		info.ArtistName = f.ArtistName
		info.ArtistFullName = f.FullName
	}

	entry := TrackEntry{
		ID:   "track_" + uuid.NewString(),
		Info: info,
	}

	out := f
	out.Tracks = append(append([]TrackEntry(nil), f.Tracks...), entry)
	return out, ""
}

// SetReleaseType returns the form with the release type applied. Switching
// to single with more than two tracks keeps only the first two and
// returns the notice; the album name is re-derived from the song title.
func (f Form) SetReleaseType(rt model.ReleaseType) (Form, string) {
	out := f
	out.ReleaseType = rt

	var notice string
	if rt == model.ReleaseSingle && len(out.Tracks) > SingleMaxTracks {
		out.Tracks = append([]TrackEntry(nil), out.Tracks[:SingleMaxTracks]...)
		notice = MsgSingleTracksKept
	}

	if out.SongTitle != "" {
		if rt == model.ReleaseSingle {
			out.AlbumName = SingleAlbumName(out.SongTitle)
		} else {
			out.AlbumName = out.SongTitle
		}
	}
	return out, notice
}

// SingleAlbumName derives the non-editable album name used for singles.
func SingleAlbumName(songTitle string) string {
	return songTitle + " - Single"
}

// Validate checks every business rule and returns the accumulated list of
// user-facing problems. An empty result means the form may be submitted.
func (f Form) Validate(now time.Time) []string {
	var errs []string

	if f.FullName == "" {
		errs = append(errs, MsgMissingFullName)
	}
	if f.ArtistName == "" {
		errs = append(errs, MsgMissingArtistName)
	}
	if f.ArtistRole == "" {
		errs = append(errs, MsgMissingArtistRole)
	}
	if f.SongTitle == "" {
		errs = append(errs, MsgMissingSongTitle)
	}
	if f.MainCategory == "" {
		errs = append(errs, MsgMissingCategory)
	}
	if f.ReleaseType == "" {
		errs = append(errs, MsgMissingReleaseType)
	}
	if f.AlbumName == "" {
		errs = append(errs, MsgMissingAlbumName)
	}
	if f.ImageFile == "" {
		errs = append(errs, MsgMissingCoverImage)
	}
	if len(f.Tracks) == 0 {
		errs = append(errs, MsgNoTracks)
	}

	switch f.ReleaseType {
	case model.ReleaseSingle:
		if len(f.Tracks) > SingleMaxTracks {
			errs = append(errs, MsgSingleTooManyTracks)
		}
	case model.ReleaseEP:
		if len(f.Tracks) < 2 {
			errs = append(errs, MsgEPTooFewTracks)
		}
	case model.ReleaseLP:
		if len(f.Tracks) < 6 {
			errs = append(errs, MsgLPTooFewTracks)
		}
	case model.ReleaseAlbum:
		if len(f.Tracks) < 10 {
			errs = append(errs, MsgAlbumTooFewTracks)
		}
	}

	if f.IsCopyrightOwner == "" {
		errs = append(errs, MsgMissingCopyright)
	}
	if f.HasBeenReleased == "" {
		errs = append(errs, MsgMissingReleased)
	}
	if f.HasLyrics == "" {
		errs = append(errs, MsgMissingHasLyrics)
	}
	if f.HasLyrics == "yes" && f.Lyrics == "" {
		errs = append(errs, MsgMissingLyrics)
	}
	if f.UserEmail == "" {
		errs = append(errs, MsgMissingEmail)
	}
	if f.ReleaseDate == "" {
		errs = append(errs, MsgMissingReleaseDate)
	} else if when, err := time.ParseInLocation(DateLayout, f.ReleaseDate, now.Location()); err != nil {
		errs = append(errs, MsgMissingReleaseDate)
	} else if min := MinReleaseDate(now); when.Before(min) {
		errs = append(errs, fmt.Sprintf("Ngày phát hành sớm nhất là %s.", min.Format("02/01/2006")))
	}

	for i, track := range f.Tracks {
		if track.Info.SongTitle == "" {
			errs = append(errs, fmt.Sprintf("Vui lòng nhập tên bài hát cho track %d.", i+1))
		}
		if track.Info.ArtistName == "" {
			errs = append(errs, fmt.Sprintf("Vui lòng nhập tên nghệ sĩ cho track %d.", i+1))
		}
		if track.Info.ArtistFullName == "" {
			errs = append(errs, fmt.Sprintf("Vui lòng nhập tên thật nghệ sĩ cho track %d.", i+1))
		}
	}

	return errs
}
