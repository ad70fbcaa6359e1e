package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/kobbyowen/focus/pkg/common/config"
	"github.com/kobbyowen/focus/pkg/common/dbtest"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	albummodel "github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/audit"
	auditmodel "github.com/kobbyowen/focus/pkg/core/audit/model"
	auditimpl "github.com/kobbyowen/focus/pkg/core/audit/repository/dao/impl"
	"github.com/kobbyowen/focus/pkg/core/auth"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
	"github.com/kobbyowen/focus/pkg/core/storage"
	usermodel "github.com/kobbyowen/focus/pkg/core/user/model"
	"github.com/kobbyowen/focus/pkg/web/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)

type envelope struct {
	ErrorCode    int             `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
	Data         json.RawMessage `json:"data"`
}

type testServer struct {
	t          *testing.T
	h          *server.Hertz
	services   *router.Services
	dispatcher *audit.Dispatcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	auth.PasswordCost = bcrypt.MinCost

	cfg := config.Default()
	cfg.Middleware.RateLimit.Rate = 0

	db := dbtest.Open(t, &usermodel.User{}, &photomodel.Photo{}, &albummodel.Album{},
		&albummodel.AlbumPhoto{}, &auditmodel.LogEntry{})
	files, err := storage.NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	dispatcher := audit.NewDispatcher(auditimpl.NewGormLogRepository(db), audit.Options{QueueSize: 64})
	dispatcher.Start()
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	h := server.New(server.WithHandleMethodNotAllowed(true))
	services, err := router.RegisterAPIs(h, router.Dependencies{
		Config:   cfg,
		DB:       db,
		Files:    files,
		Recorder: dispatcher,
	})
	require.NoError(t, err)

	return &testServer{t: t, h: h, services: services, dispatcher: dispatcher}
}

func (s *testServer) raw(method, url string, body []byte, token string, headers ...ut.Header) (int, []byte) {
	s.t.Helper()
	headers = append(headers, ut.Header{Key: "User-Agent", Value: "focus-test"})
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}
	var b *ut.Body
	if body != nil {
		b = &ut.Body{Body: bytes.NewReader(body), Len: len(body)}
	}
	w := ut.PerformRequest(s.h.Engine, method, url, b, headers...)
	resp := w.Result()
	return resp.StatusCode(), resp.Body()
}

func (s *testServer) do(method, url string, payload interface{}, token string) (int, envelope) {
	s.t.Helper()
	var body []byte
	var headers []ut.Header
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(s.t, err)
		headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	}
	status, raw := s.raw(method, url, body, token, headers...)

	var env envelope
	require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	return status, env
}

func (s *testServer) register(email, username, password string) int64 {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/auth/register", map[string]string{
		"email": email, "username": username, "name": username, "password": password,
	}, "")
	require.Equal(s.t, http.StatusCreated, status, env.ErrorMessage)

	var user struct {
		ID int64 `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &user))
	return user.ID
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(s.t, http.StatusOK, status, env.ErrorMessage)

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func (s *testServer) upload(token, title string) int64 {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(s.t, mw.WriteField("title", title))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="beach.PNG"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(s.t, err)
	_, err = part.Write(pngBytes)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	status, raw := s.raw(http.MethodPost, "/api/v1/photos", buf.Bytes(), token,
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})
	require.Equal(s.t, http.StatusCreated, status, string(raw))

	var env envelope
	require.NoError(s.t, json.Unmarshal(raw, &env))
	var photo struct {
		ID int64 `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &photo))
	return photo.ID
}

func TestHealthCheckRoute(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.raw(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRegisterLoginAndProfileAccess(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodPost, "/auth/register", map[string]string{
		"email": "a@x.com", "username": "a", "name": "A", "password": "Password@1",
	}, "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, apperrors.CodeSuccess, env.ErrorCode)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	token := s.login("a@x.com", "Password@1")

	status, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/user/%d", created.ID), nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, apperrors.CodeSuccess, env.ErrorCode)
	var profile struct {
		Username string            `json:"username"`
		Email    string            `json:"email"`
		Links    map[string]string `json:"_links"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "a", profile.Username)
	assert.Equal(t, "a@x.com", profile.Email)
	assert.Equal(t, fmt.Sprintf("/api/v1/user/%d", created.ID), profile.Links["self"])

	otherID := s.register("b@x.com", "b", "Password@2")
	status, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/user/%d", otherID), nil, token)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, env.ErrorCode)

	status, env = s.do(http.MethodGet, "/api/v1/user/me", nil, token)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"username":"a"`)
}

func TestRegisterDuplicate(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com", "a", "Password@1")

	status, env := s.do(http.MethodPost, "/auth/register", map[string]string{
		"email": "a@x.com", "username": "other", "password": "Password@1",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apperrors.CodeDuplicate, env.ErrorCode)

	status, env = s.do(http.MethodPost, "/auth/register", map[string]string{
		"email": "not-an-email", "username": "c", "password": "Password@1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeMissingParameter, env.ErrorCode)
	assert.Contains(t, string(env.Data), "email")

	_, count, err := s.services.Users.List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com", "a", "Password@1")

	status, env := s.do(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeInvalidCredentials, env.ErrorCode)
}

func TestAuthenticationOutcomes(t *testing.T) {
	s := newTestServer(t)

	// anonymous callers reach the policy check and are refused
	status, env := s.do(http.MethodGet, "/api/v1/user/me", nil, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, env.ErrorCode)

	status, env = s.do(http.MethodGet, "/api/v1/user/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeInvalidCredentials, env.ErrorCode)
	assert.Equal(t, "authentication failed", env.ErrorMessage)
}

func TestAdminOnlyRoutes(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com", "a", "Password@1")
	token := s.login("a@x.com", "Password@1")

	status, _ := s.do(http.MethodGet, "/api/v1/users", nil, token)
	assert.Equal(t, http.StatusForbidden, status)

	require.NoError(t, s.services.Users.EnsureAdmin(context.Background(), config.AdminConfig{
		Email: "root@x.com", Username: "root", Password: "Root@12345",
	}))
	adminToken := s.login("root@x.com", "Root@12345")

	status, env := s.do(http.MethodGet, "/api/v1/users?page=1&page_size=1", nil, adminToken)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Count    int64             `json:"count"`
		PageSize int               `json:"page_size"`
		Results  []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 2, page.Count)
	assert.Equal(t, 1, page.PageSize)
	assert.Len(t, page.Results, 1)
}

func TestAlbumNameUniquePerOwner(t *testing.T) {
	s := newTestServer(t)
	s.register("u@x.com", "u", "Password@1")
	s.register("u2@x.com", "u2", "Password@1")
	tokenU := s.login("u@x.com", "Password@1")
	tokenU2 := s.login("u2@x.com", "Password@1")

	status, _ := s.do(http.MethodPost, "/api/v1/albums", map[string]string{"name": "Trip"}, tokenU)
	require.Equal(t, http.StatusCreated, status)

	status, env := s.do(http.MethodPost, "/api/v1/albums", map[string]string{"name": "Trip"}, tokenU)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apperrors.CodeDuplicate, env.ErrorCode)

	status, _ = s.do(http.MethodPost, "/api/v1/albums", map[string]string{"name": "Trip"}, tokenU2)
	assert.Equal(t, http.StatusCreated, status)
}

func TestAlbumMembershipStopsAtMissingPhoto(t *testing.T) {
	s := newTestServer(t)
	s.register("u@x.com", "u", "Password@1")
	token := s.login("u@x.com", "Password@1")
	photoID := s.upload(token, "beach")

	status, env := s.do(http.MethodPost, "/api/v1/albums", map[string]string{"name": "Trip"}, token)
	require.Equal(t, http.StatusCreated, status)
	var album struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &album))
	membership := fmt.Sprintf("/api/v1/album/%d/photos", album.ID)

	status, env = s.do(http.MethodPut, membership, map[string]interface{}{
		"photo_ids": []int64{photoID, 999}, "operation": "add",
	}, token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, env.ErrorCode)
	assert.Contains(t, env.ErrorMessage, "999")

	_, count, err := s.services.Albums.ListPhotos(context.Background(), album.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, count)

	status, _ = s.do(http.MethodPut, membership, map[string]interface{}{
		"photo_ids": []int64{photoID}, "operation": "add",
	}, token)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodGet, membership, nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"count":1`)

	status, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/album/%d/photo/%d", album.ID, photoID), nil, token)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodPut, membership, map[string]interface{}{
		"photo_ids": []int64{photoID}, "operation": "move",
	}, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeMissingParameter, env.ErrorCode)
}

func TestPhotoUploadDownloadAndOwnership(t *testing.T) {
	s := newTestServer(t)
	s.register("u@x.com", "u", "Password@1")
	s.register("v@x.com", "v", "Password@1")
	owner := s.login("u@x.com", "Password@1")
	other := s.login("v@x.com", "Password@1")

	photoID := s.upload(owner, "beach")
	photoURL := fmt.Sprintf("/api/v1/photo/%d", photoID)

	status, env := s.do(http.MethodGet, photoURL, nil, other)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"mimetype":"image/png"`)
	assert.Contains(t, string(env.Data), photoURL+"/download")

	status, body := s.raw(http.MethodGet, photoURL+"/download", nil, other)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, pngBytes, body)

	status, env = s.do(http.MethodPut, photoURL, map[string]string{"title": "stolen"}, other)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, env.ErrorCode)

	status, env = s.do(http.MethodPut, photoURL, map[string]string{"title": "sunset"}, owner)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"title":"sunset"`)

	status, _ = s.do(http.MethodDelete, photoURL, nil, owner)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodGet, photoURL, nil, owner)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, env.ErrorCode)
}

func TestUsernameEditIsAudited(t *testing.T) {
	s := newTestServer(t)
	id := s.register("a@x.com", "a", "Password@1")
	token := s.login("a@x.com", "Password@1") // last_login is not watched

	status, env := s.do(http.MethodPut, fmt.Sprintf("/api/v1/user/%d", id), map[string]string{"username": "bob"}, token)
	require.Equal(t, http.StatusOK, status, env.ErrorMessage)

	require.NoError(t, s.services.Users.EnsureAdmin(context.Background(), config.AdminConfig{
		Email: "root@x.com", Username: "root", Password: "Root@12345",
	}))
	adminToken := s.login("root@x.com", "Root@12345")

	var page struct {
		Count   int64 `json:"count"`
		Results []struct {
			Description string `json:"description"`
		} `json:"results"`
	}
	require.Eventually(t, func() bool {
		_, env := s.do(http.MethodGet, "/api/v1/audit-logs", nil, adminToken)
		return json.Unmarshal(env.Data, &page) == nil && page.Count >= 1
	}, 5*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.dispatcher.Close(ctx))

	_, env = s.do(http.MethodGet, "/api/v1/audit-logs", nil, adminToken)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.EqualValues(t, 1, page.Count)
	assert.Contains(t, page.Results[0].Description, `"a"`)
	assert.Contains(t, page.Results[0].Description, `"bob"`)
}

func TestUserDeleteRemovesOwnedContent(t *testing.T) {
	s := newTestServer(t)
	id := s.register("u@x.com", "u", "Password@1")
	token := s.login("u@x.com", "Password@1")
	photoID := s.upload(token, "beach")

	status, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/v1/user/%d", id), nil, token)
	require.Equal(t, http.StatusOK, status)

	_, err := s.services.Photos.Get(context.Background(), photoID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// the token now names a user that no longer exists
	status, env := s.do(http.MethodGet, "/api/v1/user/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "user not found", env.ErrorMessage)
}

func TestFallbackEnvelopes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, env.ErrorCode)

	status, env = s.do(http.MethodGet, "/api/v1/photo/abc", nil, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, env.ErrorCode)

	status, env = s.do(http.MethodPatch, "/health", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, apperrors.CodeMissingParameter, env.ErrorCode)
}
