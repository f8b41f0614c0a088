// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/auth"
	"github.com/olegiv/campus-go/internal/cache"
	"github.com/olegiv/campus-go/internal/imaging"
	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/service"
	"github.com/olegiv/campus-go/internal/session"
	"github.com/olegiv/campus-go/internal/workspace"
	"github.com/olegiv/campus-go/web"
)

const testSiteName = "Test College"

// testEnv is the site wired against a fake backend, served over HTTP with
// a cookie-keeping client that does not follow redirects.
type testEnv struct {
	t          *testing.T
	backend    *http.ServeMux
	sm         *scs.SessionManager
	tokens     *session.TokenStore
	renderer   *render.Renderer
	workspaces *workspace.Registry
	server     *httptest.Server
	client     *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := http.NewServeMux()
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	sm := scs.New()
	tokens := session.NewTokenStore(sm)

	api, err := apiclient.New(apiclient.Options{
		BaseURL: backendSrv.URL,
		Timeout: 5 * time.Second,
		Tokens:  tokens,
		OnAuthFailure: func(ctx context.Context, e *apiclient.Error) {
			if e.Status == http.StatusUnauthorized {
				tokens.Clear(ctx)
			}
		},
	})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm, SiteName: testSiteName})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	catalog := service.NewCatalog(api.Public, nil, 0)
	workspaces := workspace.NewRegistry(time.Hour)
	svc := workspace.NewService(api.Admin, workspace.Options{})
	images := imaging.NewProcessor(800)

	public := NewPublicHandler(catalog, renderer, tokens, svc, images, 1<<20)
	authH := NewAuthHandler(api.Auth, renderer, sm, tokens, middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()), workspaces)
	admin := NewAdminHandler(AdminConfig{
		Service:        svc,
		Workspaces:     workspaces,
		SessionManager: sm,
		Renderer:       renderer,
		Payments:       api.Admin,
		Images:         images,
		MaxUpload:      1 << 20,
		College:        testSiteName,
	})
	health := NewHealthHandler(api, cache.Info{Backend: "memory"}, nil, workspaces)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.SiteName(testSiteName))

	r.Get(RouteRoot, public.Home)
	r.Get(RouteAbout, public.About)
	r.Get(RouteGallery, public.Gallery)
	r.Get(RouteCourses, public.Courses)
	r.Get(RouteCourseID, public.Course)
	r.Get(RouteCategoryID, public.Category)
	r.Get(RouteDepartmentName, public.Department)
	r.With(middleware.RequireRoles(tokens, auth.RoleAdmin)).Post(RouteGallery+RouteSuffixUpload, public.GalleryUpload)

	r.Get(RouteLogin, authH.LoginForm)
	r.Post(RouteLogin, authH.Login)
	r.Post(RouteLogout, authH.Logout)
	r.Get(RouteHealth, health.Health)

	r.Route(redirectAdmin, func(r chi.Router) {
		r.Use(middleware.RequireRoles(tokens, auth.RoleAdmin))
		r.Get("/", admin.Dashboard)
		r.Get(RouteAdminContent, admin.Content)
		r.Post(RouteAdminContent, admin.SaveContent)
		r.Post(RouteAdminGalleryCategories, admin.AddGalleryCategory)
		r.Post(RouteAdminContent+RouteParamID, admin.SaveContent)
		r.Post(RouteAdminContent+RouteParamID+RouteSuffixDelete, admin.DeleteContent)
		r.Get(RouteAdminUsers, admin.Users)
		r.Get(RouteAdminCourses, admin.Courses)
		r.Post(RouteAdminCourses, admin.SaveCourse)
		r.Post(RouteAdminCourses+RouteParamID, admin.SaveCourse)
		r.Post(RouteAdminCourses+RouteParamID+RouteSuffixDelete, admin.DeleteCourse)
		r.Post(RouteAdminDepartments, admin.AddDepartment)
		r.Post(RouteAdminCategories, admin.AddCategory)
		r.Get(RouteAdminAdmissions, admin.Admissions)
		r.Post(RouteAdminAdmissionStatus, admin.AdmissionStatus)
		r.Get(RouteAdminTestimonials, admin.Testimonials)
		r.Post(RouteAdminTestimonials, admin.SaveTestimonial)
		r.Post(RouteAdminTestimonials+RouteParamID, admin.SaveTestimonial)
		r.Post(RouteAdminTestimonials+RouteParamID+RouteSuffixDelete, admin.DeleteTestimonial)
		r.Get(RouteAdminPayments, admin.Payments)
		r.Get(RouteAdminPaymentReceipt, admin.PaymentReceipt)
		r.Get(RouteAdminIDCards, admin.IDCards)
		r.Get(RouteAdminIDCardPDF, admin.IDCardPDF)
	})
	r.NotFound(public.NotFound)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{
		t:          t,
		backend:    backend,
		sm:         sm,
		tokens:     tokens,
		renderer:   renderer,
		workspaces: workspaces,
		server:     srv,
		client:     client,
	}
}

// serve registers a fixed JSON response on the fake backend.
func (e *testEnv) serve(pattern string, status int, body string) {
	e.backend.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// do sends a request to the site and returns the response with its body read.
func (e *testEnv) do(req *http.Request) (*http.Response, string) {
	e.t.Helper()
	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

func (e *testEnv) get(path string, headers ...string) (*http.Response, string) {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	if err != nil {
		e.t.Fatalf("NewRequest: %v", err)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return e.do(req)
}

func (e *testEnv) post(path string, form url.Values, headers ...string) (*http.Response, string) {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		e.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return e.do(req)
}

// loginAs signs in through the login form with a backend that issues a
// token for role.
func (e *testEnv) loginAs(role string) {
	e.t.Helper()
	token := testToken(e.t, role, time.Now().Add(time.Hour))
	e.serve("POST /auth/login", http.StatusOK,
		`{"success":true,"data":{"token":"`+token+`","user":{"role":"`+role+`","name":"Asha Rao"}}}`)

	resp, _ := e.post(RouteLogin, url.Values{"email": {"asha@example.com"}, "password": {"secret"}})
	if resp.StatusCode != http.StatusSeeOther {
		e.t.Fatalf("login status = %d; want %d", resp.StatusCode, http.StatusSeeOther)
	}
}

// testToken signs a token the way the backend does. The signature is
// never checked by the site.
func testToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := &auth.Claims{
		User: &auth.User{ID: "user-1", Role: role, Name: "Asha Rao", Email: "asha@example.com"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

func assertLocation(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("Location = %q; want %q", got, want)
	}
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}
