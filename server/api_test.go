package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MusicHub/config"
	"MusicHub/core/auth"
	"MusicHub/core/intake"
	"MusicHub/core/isrc"
	"MusicHub/core/notify"
	"MusicHub/core/workflow"
	"MusicHub/model"
	"MusicHub/repository"
	"MusicHub/store"
)

type apiFixture struct {
	handler *APIHandler
	router  *mux.Router
	users   repository.UserRepository
	subs    repository.SubmissionRepository
	cfg     *config.Config
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	st := store.NewMemoryStore()
	users := repository.NewStoreUserRepository(st)
	subs := repository.NewStoreSubmissionRepository(st)
	counter := repository.NewStoreCounterRepository(st)
	require.NoError(t, repository.EnsureSeedUsers(users))

	hub := notify.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAPIHandler(users, subs, intake.NewService(users, subs, counter, hub), hub, cfg)

	router := mux.NewRouter()
	router.HandleFunc("/api/auth/login", handler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", handler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/submissions", handler.AuthMiddleware(handler.CreateSubmissionHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/submissions", handler.AuthMiddleware(handler.GetSubmissionsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/submissions/{id}", handler.AuthMiddleware(handler.GetSubmissionHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/submissions/{id}/status", handler.AuthMiddleware(handler.ManagerOnly(handler.UpdateStatusHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/submissions/{id}", handler.AuthMiddleware(handler.ManagerOnly(handler.UpdateSubmissionHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/submissions/{id}", handler.AuthMiddleware(handler.ManagerOnly(handler.DeleteSubmissionHandler))).Methods(http.MethodDelete)
	router.HandleFunc("/api/users", handler.AuthMiddleware(handler.ManagerOnly(handler.ListUsersHandler))).Methods(http.MethodGet)
	router.HandleFunc("/api/meta", handler.MetaHandler).Methods(http.MethodGet)

	return &apiFixture{handler: handler, router: router, users: users, subs: subs, cfg: cfg}
}

// tokenFor issues a session token for a seed (or registered) account.
func (f *apiFixture) tokenFor(t *testing.T, username string) string {
	t.Helper()

	user, err := f.users.FindByUsername(username)
	require.NoError(t, err)
	require.NotNil(t, user, username)

	token, err := auth.GenerateToken(user, f.cfg.JWTSecret)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginHandler(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, rec.Body.String(), "passwordHash", "credentials must never leave the server")

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "admin", user["username"])
	assert.Equal(t, string(model.RoleManager), user["role"])
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "", Password: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandler(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "newartist",
		Password: "s3cret",
		FullName: "Trần Thị B",
		Email:    "b@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, string(model.RoleArtist), user["role"], "self-registration never grants the manager role")

	// Duplicate username.
	rec = f.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "newartist",
		Password: "other",
		Email:    "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The new account can log in.
	rec = f.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "newartist", Password: "s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/submissions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/submissions", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestManagerOnly(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/users", f.tokenFor(t, "artist"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users", f.tokenFor(t, "admin"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// buildSubmissionRequest assembles the multipart create request the way the
// dashboard sends it: one "form" JSON part, a "coverImage" file and one
// "audioTracks" file per declared track.
func buildSubmissionRequest(t *testing.T, token string, payload submissionPayload, cover []byte, coverName, coverType string, audioNames []string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("form", string(raw)))

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="coverImage"; filename=%q`, coverName)},
		"Content-Type":        {coverType},
	})
	require.NoError(t, err)
	_, err = part.Write(cover)
	require.NoError(t, err)

	for _, name := range audioNames {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {fmt.Sprintf(`form-data; name="audioTracks"; filename=%q`, name)},
			"Content-Type":        {"audio/wav"},
		})
		require.NoError(t, err)
		_, err = part.Write([]byte("RIFF....WAVEfmt "))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height)), &jpeg.Options{Quality: 1}))
	return buf.Bytes()
}

func validPayload() submissionPayload {
	return submissionPayload{
		FullName:         "Nguyễn Văn A",
		ArtistName:       "artist",
		ArtistRole:       "Ca sĩ",
		SongTitle:        "Mưa Tháng Chín",
		MainCategory:     "Pop",
		ReleaseType:      model.ReleaseSingle,
		AlbumName:        "Mưa Tháng Chín - Single",
		IsCopyrightOwner: "yes",
		HasBeenReleased:  "no",
		HasLyrics:        "no",
		UserEmail:        "artist@example.com",
		ReleaseDate:      intake.MinReleaseDate(time.Now()).Format(intake.DateLayout),
		TrackInfos: []model.TrackInfo{{
			SongTitle:      "Mưa Tháng Chín",
			ArtistName:     "artist",
			ArtistFullName: "Nguyễn Văn A",
		}},
	}
}

func TestCreateSubmissionHandler(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, "artist")

	cover := encodeJPEG(t, 4000, 4000)
	req := buildSubmissionRequest(t, token, validPayload(), cover, "cover.jpg", "image/jpeg", []string{"track01.wav"})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Regexp(t, `^MH\d+$`, data["id"])
	assert.Regexp(t, isrc.Pattern.String(), data["isrc"])
	assert.Equal(t, workflow.Initial, data["status"])
	assert.Equal(t, "artist", data["uploaderUsername"])
	assert.Equal(t, float64(1), data["audioFilesCount"])
	assert.Contains(t, data["imageUrl"], "data:image/jpeg;base64,")

	// Visible to its uploader.
	rec2 := f.do(t, http.MethodGet, "/api/submissions", token, nil)
	require.Equal(t, http.StatusOK, rec2.Code)
	list := decodeBody(t, rec2)["data"].([]interface{})
	assert.Len(t, list, 1)

	// And to the manager.
	rec3 := f.do(t, http.MethodGet, "/api/submissions", f.tokenFor(t, "admin"), nil)
	require.Equal(t, http.StatusOK, rec3.Code)
	list = decodeBody(t, rec3)["data"].([]interface{})
	assert.Len(t, list, 1)
}

func TestCreateSubmissionHandler_CollectsAllProblems(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, "artist")

	payload := validPayload()
	payload.SongTitle = "" // form problem

	cover := encodeJPEG(t, 1000, 1000) // media problem
	req := buildSubmissionRequest(t, token, payload, cover, "cover.jpg", "image/jpeg", []string{"track01.wav"})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Success bool     `json:"success"`
		Errors  []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Errors, "Kích thước phải là 4000x4000px")
	assert.Contains(t, body.Errors, intake.MsgMissingSongTitle)
}

func TestCreateSubmissionHandler_TrackMetadataMismatch(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, "artist")

	payload := validPayload() // declares one track
	cover := encodeJPEG(t, 4000, 4000)
	req := buildSubmissionRequest(t, token, payload, cover, "cover.jpg", "image/jpeg", []string{"a.wav", "b.wav"})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSubmissionHandler_Scoping(t *testing.T) {
	f := newAPIFixture(t)

	require.NoError(t, f.subs.Append(&model.Submission{
		ID:               "MH1",
		UploaderUsername: "artist",
		SongTitle:        "Bài của artist",
		Status:           workflow.Initial,
	}))

	// Register a second artist.
	rec := f.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "other",
		Password: "pw",
		Email:    "other@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// The owner and the manager can read it.
	rec = f.do(t, http.MethodGet, "/api/submissions/MH1", f.tokenFor(t, "artist"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/submissions/MH1", f.tokenFor(t, "admin"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another artist sees not-found, not forbidden.
	rec = f.do(t, http.MethodGet, "/api/submissions/MH1", f.tokenFor(t, "other"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusHandler(t *testing.T) {
	f := newAPIFixture(t)

	require.NoError(t, f.subs.Append(&model.Submission{
		ID:               "MH1",
		UploaderUsername: "artist",
		SongTitle:        "Bài hát",
		Status:           workflow.Initial,
	}))

	// Managers may jump straight to the final state.
	rec := f.do(t, http.MethodPut, "/api/submissions/MH1/status", f.tokenFor(t, "admin"),
		map[string]string{"status": workflow.StatusComplete})
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := f.subs.ByID("MH1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusComplete, sub.Status)

	// Unknown status is rejected.
	rec = f.do(t, http.MethodPut, "/api/submissions/MH1/status", f.tokenFor(t, "admin"),
		map[string]string{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Artists cannot change statuses.
	rec = f.do(t, http.MethodPut, "/api/submissions/MH1/status", f.tokenFor(t, "artist"),
		map[string]string{"status": workflow.StatusApproved})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Missing submission.
	rec = f.do(t, http.MethodPut, "/api/submissions/MH404/status", f.tokenFor(t, "admin"),
		map[string]string{"status": workflow.StatusApproved})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSubmissionHandler(t *testing.T) {
	f := newAPIFixture(t)

	require.NoError(t, f.subs.Append(&model.Submission{ID: "MH1", UploaderUsername: "artist"}))

	rec := f.do(t, http.MethodDelete, "/api/submissions/MH1", f.tokenFor(t, "artist"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/submissions/MH1", f.tokenFor(t, "admin"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/submissions/MH1", f.tokenFor(t, "admin"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetaHandler(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/meta", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	statuses := body["statuses"].([]interface{})
	assert.Len(t, statuses, 5)
	assert.Equal(t, workflow.StatusPending, statuses[0])

	minDate, err := time.Parse(intake.DateLayout, body["minReleaseDate"].(string))
	require.NoError(t, err)
	assert.False(t, minDate.Before(time.Now().AddDate(0, 0, 1)), "the floor is always at least two days out")
}
