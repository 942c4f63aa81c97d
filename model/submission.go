package model

// ReleaseType is the packaging format of a submission. It drives the
// minimum/maximum track-count rules applied at intake.
type ReleaseType string

const (
	ReleaseSingle ReleaseType = "single"
	ReleaseEP     ReleaseType = "ep"
	ReleaseLP     ReleaseType = "lp"
	ReleaseAlbum  ReleaseType = "album"
)

// AdditionalArtist is a collaborator credited on a track.
type AdditionalArtist struct {
	Name       string  `json:"name"`
	FullName   string  `json:"fullName,omitempty"`
	Role       string  `json:"role"`
	Percentage float64 `json:"percentage"`
}

// TrackInfo is the per-track metadata carried by a submission.
type TrackInfo struct {
	FileName          string             `json:"fileName"`
	SongTitle         string             `json:"songTitle"`
	ArtistName        string             `json:"artistName"`
	ArtistFullName    string             `json:"artistFullName"`
	AdditionalArtists []AdditionalArtist `json:"additionalArtists"`
}

// Submission represents one music release intake.
//
// After creation only Status may change through the normal workflow;
// ID, ISRC, UploaderUsername and SubmissionDate are immutable. The admin
// bulk-edit path may rewrite other descriptive fields but never those four.
type Submission struct {
	ID                string             `json:"id"`
	ISRC              string             `json:"isrc"`
	UploaderUsername  string             `json:"uploaderUsername"`
	ArtistName        string             `json:"artistName"`
	SongTitle         string             `json:"songTitle"`
	AlbumName         string             `json:"albumName,omitempty"`
	UserEmail         string             `json:"userEmail"`
	ImageFile         string             `json:"imageFile"`
	ImageURL          string             `json:"imageUrl"`
	VideoFile         string             `json:"videoFile,omitempty"`
	AudioFilesCount   int                `json:"audioFilesCount"`
	SubmissionDate    string             `json:"submissionDate"`
	Status            string             `json:"status"`
	MainCategory      string             `json:"mainCategory"`
	SubCategory       string             `json:"subCategory,omitempty"`
	ReleaseType       ReleaseType        `json:"releaseType"`
	IsCopyrightOwner  string             `json:"isCopyrightOwner"`
	HasBeenReleased   string             `json:"hasBeenReleased"`
	Platforms         []string           `json:"platforms"`
	HasLyrics         string             `json:"hasLyrics"`
	Lyrics            string             `json:"lyrics,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	FullName          string             `json:"fullName"`
	ArtistRole        string             `json:"artistRole"`
	AdditionalArtists []AdditionalArtist `json:"additionalArtists"`
	TrackInfos        []TrackInfo        `json:"trackInfos"`
	ReleaseDate       string             `json:"releaseDate"`
}
