package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"MusicHub/core/intake"
	"MusicHub/core/validate"
	"MusicHub/core/workflow"
	"MusicHub/logger"
	"MusicHub/model"
	"MusicHub/repository"
)

// maxSubmissionForm bounds how much of the multipart body is held in
// memory; larger parts spill to temp files.
const maxSubmissionForm = 32 << 20

// submissionPayload is the JSON part of the multipart create request. It
// carries everything the release form collects except the files
// themselves.
type submissionPayload struct {
	FullName          string                   `json:"fullName"`
	ArtistName        string                   `json:"artistName"`
	ArtistRole        string                   `json:"artistRole"`
	SongTitle         string                   `json:"songTitle"`
	MainCategory      string                   `json:"mainCategory"`
	SubCategory       string                   `json:"subCategory"`
	ReleaseType       model.ReleaseType        `json:"releaseType"`
	AlbumName         string                   `json:"albumName"`
	IsCopyrightOwner  string                   `json:"isCopyrightOwner"`
	HasBeenReleased   string                   `json:"hasBeenReleased"`
	Platforms         []string                 `json:"platforms"`
	HasLyrics         string                   `json:"hasLyrics"`
	Lyrics            string                   `json:"lyrics"`
	UserEmail         string                   `json:"userEmail"`
	Notes             string                   `json:"notes"`
	ReleaseDate       string                   `json:"releaseDate"`
	VideoFile         string                   `json:"videoFile"`
	AdditionalArtists []model.AdditionalArtist `json:"additionalArtists"`
	TrackInfos        []model.TrackInfo        `json:"trackInfos"`
}

// CreateSubmissionHandler accepts the multipart release form: a "form"
// JSON part, a "coverImage" file and zero or more "audioTracks" files in
// track order. Media problems and form problems are all collected before
// anything is rejected, so the dashboard can show one combined list.
func (h *APIHandler) CreateSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	currentUser, err := h.sessionUser(r)
	if err != nil {
		logger.Error("session lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if currentUser == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxSubmissionForm); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var payload submissionPayload
	if err := json.Unmarshal([]byte(r.FormValue("form")), &payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	var problems []string
	form := intake.Form{
		FullName:          payload.FullName,
		ArtistName:        payload.ArtistName,
		ArtistRole:        payload.ArtistRole,
		SongTitle:         payload.SongTitle,
		MainCategory:      payload.MainCategory,
		SubCategory:       payload.SubCategory,
		ReleaseType:       payload.ReleaseType,
		AlbumName:         payload.AlbumName,
		VideoFile:         payload.VideoFile,
		IsCopyrightOwner:  payload.IsCopyrightOwner,
		HasBeenReleased:   payload.HasBeenReleased,
		Platforms:         payload.Platforms,
		HasLyrics:         payload.HasLyrics,
		Lyrics:            payload.Lyrics,
		UserEmail:         payload.UserEmail,
		Notes:             payload.Notes,
		ReleaseDate:       payload.ReleaseDate,
		AdditionalArtists: payload.AdditionalArtists,
	}

	// Cover image: validate, then keep it as a data URL the way the
	// dashboard previews covers. Nothing is written to disk.
	coverFile, coverHeader, err := r.FormFile("coverImage")
	if err == nil {
		defer coverFile.Close()

		coverErrs := validate.CoverImage(validate.File{
			Name:        coverHeader.Filename,
			ContentType: coverHeader.Header.Get("Content-Type"),
			Size:        coverHeader.Size,
		}, coverFile)
		problems = append(problems, coverErrs...)

		if len(coverErrs) == 0 {
			if _, err := coverFile.Seek(0, io.SeekStart); err == nil {
				raw, err := io.ReadAll(coverFile)
				if err == nil {
					form.ImageFile = coverHeader.Filename
					form.ImageURL = fmt.Sprintf("data:%s;base64,%s",
						coverHeader.Header.Get("Content-Type"),
						base64.StdEncoding.EncodeToString(raw))
				}
			}
		}
	}

	// Audio tracks: only the declared type and size are inspected; the
	// bytes themselves are not retained (no real file storage here).
	audioHeaders := r.MultipartForm.File["audioTracks"]
	if len(audioHeaders) != len(payload.TrackInfos) {
		respondError(w, http.StatusBadRequest, "Track metadata does not match uploaded files")
		return
	}
	for i, header := range audioHeaders {
		problems = append(problems, validate.AudioTrack(validate.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		})...)

		info := payload.TrackInfos[i]
		info.FileName = header.Filename
		if info.AdditionalArtists == nil {
			info.AdditionalArtists = []model.AdditionalArtist{}
		}
		form.Tracks = append(form.Tracks, intake.TrackEntry{
			ID:   "track_" + uuid.NewString(),
			Info: info,
		})
	}

	if len(problems) > 0 {
		// Include the form-level problems too so the user sees everything
		// at once.
		problems = append(problems, form.Validate(time.Now())...)
		respondProblems(w, problems)
		return
	}

	sub, formProblems, err := h.intake.Submit(form, currentUser)
	if err != nil {
		if errors.Is(err, intake.ErrUnknownUploader) {
			respondError(w, http.StatusUnauthorized, "Unknown uploader account")
			return
		}
		logger.Error("failed to commit submission", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to save submission")
		return
	}
	if len(formProblems) > 0 {
		respondProblems(w, formProblems)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    sub,
	})
}

// GetSubmissionsHandler lists submissions: everything for managers, own
// submissions for artists.
func (h *APIHandler) GetSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	username, _ := r.Context().Value("username").(string)
	role, _ := r.Context().Value("role").(model.Role)

	var (
		subs []model.Submission
		err  error
	)
	if role == model.RoleManager {
		subs, err = h.subRepo.All()
	} else {
		subs, err = h.subRepo.ByUploader(username)
	}
	if err != nil {
		logger.Error("failed to list submissions", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list submissions")
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    subs,
	})
}

// GetSubmissionHandler returns one submission; artists can only see their
// own.
func (h *APIHandler) GetSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	username, _ := r.Context().Value("username").(string)
	role, _ := r.Context().Value("role").(model.Role)

	sub, err := h.subRepo.ByID(id)
	if err != nil {
		logger.Error("failed to load submission", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load submission")
		return
	}
	if sub == nil || (role != model.RoleManager && sub.UploaderUsername != username) {
		respondError(w, http.StatusNotFound, "Submission not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    sub,
	})
}

// UpdateStatusHandler moves a submission to any of the five workflow
// states. No transition order is enforced; managers may jump freely.
func (h *APIHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !workflow.Valid(req.Status) {
		respondError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	if err := h.subRepo.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found")
			return
		}
		logger.Error("failed to update status", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	sub, err := h.subRepo.ByID(id)
	if err == nil && sub != nil {
		h.hub.StatusChanged(sub)
	}

	logger.Info("submission status updated",
		logger.String("id", id),
		logger.String("status", req.Status),
	)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    sub,
	})
}

// UpdateSubmissionHandler is the admin bulk edit: descriptive fields are
// replaced wholesale, immutable fields are preserved by the repository.
func (h *APIHandler) UpdateSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sub.ID = id

	if sub.Status != "" && !workflow.Valid(sub.Status) {
		respondError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	if err := h.subRepo.Update(&sub); err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found")
			return
		}
		logger.Error("failed to update submission", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update submission")
		return
	}

	updated, _ := h.subRepo.ByID(id)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    updated,
	})
}

// DeleteSubmissionHandler removes a submission. The ISRC counter is never
// rewound; deleted codes stay burned.
func (h *APIHandler) DeleteSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.subRepo.Remove(id); err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found")
			return
		}
		logger.Error("failed to delete submission", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete submission")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// MetaHandler exposes the constants the release form needs: the workflow
// states and the earliest selectable release date.
func (h *APIHandler) MetaHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"statuses":       workflow.Statuses,
		"minReleaseDate": intake.MinReleaseDate(time.Now()).Format(intake.DateLayout),
	})
}
