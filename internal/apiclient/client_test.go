// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-go/internal/model"
)

type staticTokens string

func (s staticTokens) Token(context.Context) string { return string(s) }

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingObserver) ObserveAPICall(op string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...func(*Options)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	o := Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}
	for _, fn := range opts {
		fn(&o)
	}
	c, err := New(o)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/api", "localhost:5000"} {
		_, err := New(Options{BaseURL: raw})
		assert.Error(t, err, "base URL %q", raw)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantData string
		wantPage bool
	}{
		{"bare array", `[{"_id":"1"}]`, `[{"_id":"1"}]`, false},
		{"envelope", `{"data":[{"_id":"1"}]}`, `[{"_id":"1"}]`, false},
		{"envelope with pagination", `{"data":[],"pagination":{"total":3,"page":1,"limit":10,"pages":1}}`, `[]`, true},
		{"empty body", ``, `null`, false},
		{"bare object", `{"_id":"1","name":"x"}`, `{"_id":"1","name":"x"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Normalize([]byte(tt.body))
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantData, string(p.Data))
			assert.Equal(t, tt.wantPage, p.Pagination != nil)
		})
	}

	_, err := Normalize([]byte("<html>oops</html>"))
	assert.ErrorIs(t, err, errInvalidJSON)
}

func TestClient_EnvelopeAndBareAreEquivalent(t *testing.T) {
	bodies := map[string]string{
		"bare":     `[{"_id":"a1","type":"announcement","title":"Welcome"}]`,
		"envelope": `{"success":true,"data":[{"_id":"a1","type":"announcement","title":"Welcome"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/public/announcements", r.URL.Path)
				writeJSON(w, http.StatusOK, body)
			})

			items, err := c.Public.Announcements(context.Background())
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "a1", items[0].ID)
			assert.Equal(t, "Welcome", items[0].Title)
		})
	}
}

func TestClient_NullListIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":null}`)
	})

	items, err := c.Public.Events(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_UnexpectedShapeIsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"not":"a list"}}`)
	})

	_, err := c.Public.Courses(context.Background())
	assert.ErrorIs(t, err, ErrServer)
}

func TestClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    error
		wantMessage string
	}{
		{"bad request with message", http.StatusBadRequest, `{"message":"Title is required"}`, ErrClient, "Title is required"},
		{"not found plain text", http.StatusNotFound, `not here`, ErrClient, "Not Found"},
		{"conflict with error key", http.StatusConflict, `{"error":"Duplicate name"}`, ErrClient, "Duplicate name"},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, ErrServer, "boom"},
		{"bad gateway empty", http.StatusBadGateway, ``, ErrServer, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.Public.Departments(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)

			apiErr := FromError(err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, "public.getDepartments", apiErr.Op)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	obs := &recordingObserver{}
	c, err := New(Options{BaseURL: base, Timeout: time.Second, Observer: obs})
	require.NoError(t, err)

	_, err = c.Public.Gallery(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, 0, StatusOf(err))
	assert.Equal(t, "fallback", MessageOf(err, "fallback"))
	assert.Equal(t, []string{"public.getGallery"}, obs.calls)
}

func TestClient_BearerHeader(t *testing.T) {
	var gotAuth, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, `[]`)
	}, func(o *Options) { o.Tokens = staticTokens("tok-123") })

	_, err := c.Admin.Students(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestClient_NoBearerWithoutToken(t *testing.T) {
	var sawAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, `[]`)
	}, func(o *Options) { o.Tokens = staticTokens("") })

	_, err := c.Public.Faculty(context.Background())
	require.NoError(t, err)
	assert.False(t, sawAuth)
}

// sessionlessTokens fails like a session-backed store does when ctx did
// not pass through the session middleware.
type sessionlessTokens struct{}

func (sessionlessTokens) Token(context.Context) string {
	panic("no session data in context")
}

func TestClient_PublicReadsSkipTokens(t *testing.T) {
	var sawAuth bool
	hooked := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
	}, func(o *Options) {
		o.Tokens = sessionlessTokens{}
		o.OnAuthFailure = func(context.Context, *Error) { hooked = true }
	})

	_, err := c.Public.Courses(context.Background())
	require.ErrorIs(t, err, ErrClient)
	assert.False(t, sawAuth)
	assert.False(t, hooked)
}

func TestClient_AuthFailureHook(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var hooked *Error
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, status, `{"message":"Token expired"}`)
			}, func(o *Options) {
				o.OnAuthFailure = func(_ context.Context, err *Error) { hooked = err }
			})

			_, err := c.Admin.Payments(context.Background())
			require.Error(t, err)
			require.NotNil(t, hooked)
			assert.Equal(t, status, hooked.Status)
			assert.True(t, hooked.IsAuthFailure())
		})
	}
}

func TestClient_HookNotCalledForOtherErrors(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{}`)
	}, func(o *Options) {
		o.OnAuthFailure = func(context.Context, *Error) { called = true }
	})

	_, err := c.Admin.Payments(context.Background())
	require.Error(t, err)
	assert.False(t, called)
}

func TestMessageOf(t *testing.T) {
	clientErr := &Error{Kind: KindClient, Status: 400, Message: "Name taken"}
	serverErr := &Error{Kind: KindServer, Status: 500, Message: "stack trace"}

	assert.Equal(t, "Name taken", MessageOf(clientErr, "Failed"))
	assert.Equal(t, "Failed", MessageOf(serverErr, "Failed"))
	assert.Equal(t, "Failed", MessageOf(errors.New("plain"), "Failed"))
	assert.Equal(t, "Failed", MessageOf(nil, "Failed"))
}

func TestError_Is(t *testing.T) {
	err := &Error{Kind: KindServer, Status: 503, Op: "x", Message: "down"}
	assert.ErrorIs(t, err, ErrServer)
	assert.NotErrorIs(t, err, ErrClient)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "x: server 503: down")
}

func TestAdmin_ListContentPagination(t *testing.T) {
	t.Run("backend pagination", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "news", r.URL.Query().Get("type"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, `{"data":[{"_id":"n1","type":"news"}],"pagination":{"total":11,"page":2,"limit":10,"pages":2}}`)
		})

		page, err := c.Admin.ListContent(context.Background(), ContentQuery{Type: model.ContentNews, Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, model.Pagination{Total: 11, Page: 2, Limit: 10, Pages: 2}, page.Pagination)
	})

	t.Run("derived pagination", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.Query().Get("type"))
			writeJSON(w, http.StatusOK, `[{"_id":"a"},{"_id":"b"}]`)
		})

		page, err := c.Admin.ListContent(context.Background(), ContentQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, model.Pagination{Total: 2, Page: 1, Limit: 10, Pages: 1}, page.Pagination)
	})
}

func TestAdmin_MutationsSendJSON(t *testing.T) {
	type captured struct {
		method, path, contentType string
		body                      map[string]any
	}
	var got captured

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = captured{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&got.body)
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"_id":"new"}}`)
	})
	ctx := context.Background()

	require.NoError(t, c.Admin.CreateContent(ctx, model.ContentInput{Type: model.ContentNews, Title: "Open day"}))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/admin/content", got.path)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "Open day", got.body["title"])

	require.NoError(t, c.Admin.UpdateCourse(ctx, "c/1", model.CourseInput{Name: "BSc"}))
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/api/admin/courses/c/1", got.path)

	require.NoError(t, c.Admin.DeleteContent(ctx, "x1"))
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/api/admin/content/x1", got.path)

	require.NoError(t, c.Admin.CreateDepartment(ctx, "Physics"))
	assert.Equal(t, "/api/admin/departments", got.path)
	assert.Equal(t, "Physics", got.body["name"])
}

func TestAdmin_UpdateAdmissionStatus(t *testing.T) {
	t.Run("echoed admission", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/admin/admissions/ad1", r.URL.Path)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "approved", body["status"])
			writeJSON(w, http.StatusOK, `{"data":{"_id":"ad1","status":"approved","studentId":{"_id":"s1","name":"Asha"}}}`)
		})

		a, err := c.Admin.UpdateAdmissionStatus(context.Background(), "ad1", model.AdmissionApproved)
		require.NoError(t, err)
		assert.Equal(t, "ad1", a.ID)
		assert.Equal(t, model.AdmissionApproved, a.Status)
		assert.Equal(t, "Asha", a.StudentID.Name)
	})

	t.Run("no echo", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":true,"message":"Updated"}`)
		})

		a, err := c.Admin.UpdateAdmissionStatus(context.Background(), "ad1", model.AdmissionRejected)
		require.NoError(t, err)
		assert.Empty(t, a.ID)
	})

	t.Run("invalid status never leaves the client", func(t *testing.T) {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			called = true
			writeJSON(w, http.StatusOK, `{}`)
		})

		_, err := c.Admin.UpdateAdmissionStatus(context.Background(), "ad1", "archived")
		assert.ErrorIs(t, err, ErrClient)
		assert.False(t, called)
	})
}

func TestAdmin_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "gallery", r.FormValue("type"))
			assert.Equal(t, "Campus", r.FormValue("title"))
			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			defer func() { _ = f.Close() }()
			assert.Equal(t, "campus.jpg", hdr.Filename)
			data, _ := io.ReadAll(f)
			assert.Equal(t, "JPEGDATA", string(data))
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"fileUrl":"https://cdn.example.com/campus.jpg"}}`)
		})

		url, err := c.Admin.Upload(context.Background(), Upload{
			File: strings.NewReader("JPEGDATA"), Filename: "campus.jpg", Type: "gallery", Title: "Campus",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/campus.jpg", url)
	})

	t.Run("envelope failure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":false}`)
		})

		_, err := c.Admin.Upload(context.Background(), Upload{File: strings.NewReader("x"), Filename: "a.png"})
		assert.ErrorIs(t, err, ErrClient)
		assert.Equal(t, "Failed to upload file", MessageOf(err, ""))
	})

	t.Run("missing url", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":true,"data":{}}`)
		})

		_, err := c.Admin.Upload(context.Background(), Upload{File: strings.NewReader("x"), Filename: "a.png"})
		assert.ErrorIs(t, err, ErrServer)
	})
}

func TestPublic_DepartmentByName(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
	}{
		{"success", `{"success":true,"data":{"department":{"_id":"d1","name":"Physics"},"courses":[{"_id":"c1","name":"BSc"}]}}`, false},
		{"success false", `{"success":false,"message":"not found"}`, true},
		{"no success flag", `{"data":{"department":{"_id":"d1"}}}`, true},
		{"missing department", `{"success":true,"data":{}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/public/departments/name/Computer Science", r.URL.Path)
				writeJSON(w, http.StatusOK, tt.body)
			})

			detail, err := c.Public.DepartmentByName(context.Background(), "Computer Science")
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, detail)
				return
			}
			require.NotNil(t, detail)
			assert.Equal(t, "Physics", detail.Department.Name)
			assert.Len(t, detail.Courses, 1)
			assert.NotNil(t, detail.Faculty)
		})
	}
}

func TestPublic_CourseReferences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"_id":"c1","name":"BSc","departmentId":{"_id":"d1","name":"Physics"},"categoryId":"k1","feeStructure":{"registrationFee":500,"fullFee":45000}}}`)
	})

	course, err := c.Public.Course(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Physics", course.DepartmentID.Name)
	assert.Equal(t, "k1", course.CategoryID.ID)
	assert.Empty(t, course.CategoryID.Name)
	assert.InDelta(t, 45000, course.FeeStructure.FullFee, 0.001)
}

func TestAuth_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/login", r.URL.Path)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "admin@college.edu", body["email"])
			writeJSON(w, http.StatusOK, `{"token":"jwt","user":{"role":"admin","name":"Root"}}`)
		})

		res, err := c.Auth.Login(context.Background(), "admin@college.edu", "secret")
		require.NoError(t, err)
		assert.Equal(t, LoginResult{Token: "jwt", Role: "admin", Name: "Root"}, res)
	})

	t.Run("rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid email or password"}`)
		})

		_, err := c.Auth.Login(context.Background(), "a@b.c", "nope")
		assert.ErrorIs(t, err, ErrClient)
		assert.Equal(t, "Invalid email or password", MessageOf(err, ""))
	})

	t.Run("envelope failure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":false}`)
		})

		_, err := c.Auth.Login(context.Background(), "a@b.c", "nope")
		assert.Equal(t, "Invalid credentials", MessageOf(err, ""))
	})

	t.Run("no token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":{"user":{"role":"admin"}}}`)
		})

		_, err := c.Auth.Login(context.Background(), "a@b.c", "x")
		assert.ErrorIs(t, err, ErrServer)
	})
}
