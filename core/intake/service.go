package intake

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"MusicHub/core/isrc"
	"MusicHub/core/workflow"
	"MusicHub/logger"
	"MusicHub/model"
	"MusicHub/repository"
)

// ErrUnknownUploader is returned when the submitting account is missing
// from the directory.
var ErrUnknownUploader = errors.New("uploader not found in directory")

// EventPublisher receives submission lifecycle events; the websocket hub
// implements it. NopPublisher is used where nobody listens.
type EventPublisher interface {
	SubmissionCreated(sub *model.Submission)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) SubmissionCreated(*model.Submission) {}

// Service validates release forms, assigns ISRC codes and commits
// finished submissions to the collection.
type Service struct {
	users   repository.UserRepository
	subs    repository.SubmissionRepository
	counter repository.CounterRepository
	events  EventPublisher
	now     func() time.Time

	idMu   sync.Mutex
	lastMs int64
}

// NewService wires an intake service. events may be nil.
func NewService(
	users repository.UserRepository,
	subs repository.SubmissionRepository,
	counter repository.CounterRepository,
	events EventPublisher,
) *Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &Service{
		users:   users,
		subs:    subs,
		counter: counter,
		events:  events,
		now:     time.Now,
	}
}

// WithClock overrides the service clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// nextID generates the time-based submission id. Millisecond timestamps
// are bumped forward when two submissions land in the same instant so ids
// stay unique within the process.
func (s *Service) nextID(now time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.lastMs {
		ms = s.lastMs + 1
	}
	s.lastMs = ms
	return fmt.Sprintf("MH%d", ms)
}

// Submit validates the form and, when it passes, assigns the next ISRC,
// constructs the submission record and appends it to the collection.
//
// The three-way return mirrors the error taxonomy: a non-empty problem
// list means the form was rejected and the caller should re-prompt the
// user; a non-nil error means a storage or directory failure.
func (s *Service) Submit(form Form, currentUser *model.User) (*model.Submission, []string, error) {
	now := s.now()

	if problems := form.Validate(now); len(problems) > 0 {
		return nil, problems, nil
	}

	uploader, err := s.users.FindByUsername(currentUser.Username)
	if err != nil {
		return nil, nil, err
	}
	if uploader == nil {
		return nil, nil, ErrUnknownUploader
	}

	counter, err := s.counter.Current()
	if err != nil {
		return nil, nil, err
	}
	code, newCounter := isrc.Next(counter, now)
	if err := s.counter.Save(newCounter); err != nil {
		return nil, nil, err
	}

	albumName := form.AlbumName
	if form.ReleaseType == model.ReleaseSingle {
		// Singles never carry a user-chosen album name.
		albumName = SingleAlbumName(form.SongTitle)
	}

	platforms := []string{}
	if form.HasBeenReleased == "yes" {
		platforms = append(platforms, form.Platforms...)
	}
	lyrics := ""
	if form.HasLyrics == "yes" {
		lyrics = form.Lyrics
	}

	trackInfos := make([]model.TrackInfo, 0, len(form.Tracks))
	for _, entry := range form.Tracks {
		trackInfos = append(trackInfos, entry.Info)
	}

	additional := form.AdditionalArtists
	if additional == nil {
		additional = []model.AdditionalArtist{}
	}

	sub := &model.Submission{
		ID:                s.nextID(now),
		ISRC:              code,
		UploaderUsername:  uploader.Username,
		ArtistName:        form.ArtistName,
		SongTitle:         form.SongTitle,
		AlbumName:         albumName,
		UserEmail:         form.UserEmail,
		ImageFile:         form.ImageFile,
		ImageURL:          form.ImageURL,
		VideoFile:         form.VideoFile,
		AudioFilesCount:   len(trackInfos),
		SubmissionDate:    now.Format("02/01/2006"),
		Status:            workflow.Initial,
		MainCategory:      form.MainCategory,
		SubCategory:       form.SubCategory,
		ReleaseType:       form.ReleaseType,
		IsCopyrightOwner:  form.IsCopyrightOwner,
		HasBeenReleased:   form.HasBeenReleased,
		Platforms:         platforms,
		HasLyrics:         form.HasLyrics,
		Lyrics:            lyrics,
		Notes:             form.Notes,
		FullName:          form.FullName,
		ArtistRole:        form.ArtistRole,
		AdditionalArtists: additional,
		TrackInfos:        trackInfos,
		ReleaseDate:       form.ReleaseDate,
	}

	if err := s.subs.Append(sub); err != nil {
		// The counter was already advanced; it is never rolled back, so
		// the burned value simply goes unused.
		return nil, nil, err
	}

	logger.Info("submission accepted",
		logger.String("id", sub.ID),
		logger.String("isrc", sub.ISRC),
		logger.String("uploader", sub.UploaderUsername),
		logger.Int("tracks", sub.AudioFilesCount),
	)

	s.events.SubmissionCreated(sub)
	return sub, nil, nil
}
