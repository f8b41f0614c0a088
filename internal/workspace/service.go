// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/model"
)

// Backend is the part of the admin API the dashboard uses.
type Backend interface {
	ListContent(ctx context.Context, q apiclient.ContentQuery) (apiclient.ContentPage, error)
	ContentByType(ctx context.Context, t model.ContentType) ([]model.Content, error)
	CreateContent(ctx context.Context, in model.ContentInput) error
	UpdateContent(ctx context.Context, id string, in model.ContentInput) error
	DeleteContent(ctx context.Context, id string) error
	Upload(ctx context.Context, up apiclient.Upload) (string, error)

	Courses(ctx context.Context) ([]model.Course, error)
	CreateCourse(ctx context.Context, in model.CourseInput) error
	UpdateCourse(ctx context.Context, id string, in model.CourseInput) error
	DeleteCourse(ctx context.Context, id string) error
	Departments(ctx context.Context) ([]model.Department, error)
	CreateDepartment(ctx context.Context, name string) error
	Categories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) error

	Admissions(ctx context.Context) ([]model.Admission, error)
	UpdateAdmissionStatus(ctx context.Context, id string, status model.AdmissionStatus) (model.Admission, error)

	Students(ctx context.Context) ([]model.Student, error)
	Faculty(ctx context.Context) ([]model.Faculty, error)
	Payments(ctx context.Context) ([]model.Payment, error)
}

// LoadObserver records how tab loads ended: "committed", "stale" or "failed".
type LoadObserver interface {
	ObserveWorkspaceLoad(tab, outcome string)
}

// ErrStale is returned by a load that finished after a newer load of the
// same tab had started. Its result was discarded.
var ErrStale = errors.New("workspace: superseded by a newer load")

// Failure is a submit or delete that did not go through. Message is shown
// to the user. Local failures were caught before any network call.
type Failure struct {
	Message string
	Fields  map[string]string
	Local   bool
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// Attachment is a file chosen in a form.
type Attachment struct {
	Reader   io.Reader
	Filename string
}

// Outcome describes a mutation that succeeded. Warnings are non-fatal
// problems, such as a failed optional image upload.
type Outcome struct {
	Message  string
	Warnings []string
}

// Options configures a Service.
type Options struct {
	Observer LoadObserver
	Validate *validator.Validate
	Logger   *slog.Logger

	// OnMutation runs after every successful backend mutation.
	OnMutation func(ctx context.Context)
}

// Service loads and mutates dashboard data for a Workspace.
type Service struct {
	backend    Backend
	observer   LoadObserver
	validate   *validator.Validate
	logger     *slog.Logger
	onMutation func(ctx context.Context)
}

// NewService creates a Service.
func NewService(backend Backend, opts Options) *Service {
	v := opts.Validate
	if v == nil {
		v = NewValidator()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:    backend,
		observer:   opts.Observer,
		validate:   v,
		logger:     logger,
		onMutation: opts.OnMutation,
	}
}

// FanOut runs fns concurrently and returns the first error. The context
// passed to the others is cancelled once one fails.
func FanOut(ctx context.Context, fns ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		g.Go(func() error { return fn(gctx) })
	}
	return g.Wait()
}

// load runs one sequenced load of t.
func load[D any](ctx context.Context, s *Service, name string, t *Tab[D], f Filter, fetch func(context.Context) (D, error)) (View[D], error) {
	tk := t.Begin(f)
	data, err := fetch(ctx)

	if !t.Commit(tk, data, err) {
		s.observe(name, "stale")
		s.logger.Debug("discarded stale tab load", "tab", name)
		return t.Snapshot(), ErrStale
	}
	if err != nil {
		s.observe(name, "failed")
		s.logger.Warn("backend load failed", "category", model.EventCategoryAPI, "tab", name, "error", err)
		return t.Snapshot(), err
	}
	s.observe(name, "committed")
	return t.Snapshot(), nil
}

func (s *Service) observe(tab, outcome string) {
	if s.observer != nil {
		s.observer.ObserveWorkspaceLoad(tab, outcome)
	}
}

func (s *Service) mutated(ctx context.Context) {
	if s.onMutation != nil {
		s.onMutation(ctx)
	}
}

// LoadContent loads one page of content of the filtered type together
// with the gallery categories.
func (s *Service) LoadContent(ctx context.Context, ws *Workspace, f Filter) (View[ContentData], error) {
	f = f.Normalize()
	return load(ctx, s, TabContent, &ws.Content, f, func(ctx context.Context) (ContentData, error) {
		var d ContentData
		err := FanOut(ctx,
			func(ctx context.Context) error {
				page, err := s.backend.ListContent(ctx, apiclient.ContentQuery{Type: f.ContentType, Page: f.Page, Limit: ContentPageSize})
				d.Items, d.Pagination = page.Items, page.Pagination
				return err
			},
			func(ctx context.Context) (err error) {
				d.GalleryCategories, err = s.backend.ContentByType(ctx, model.ContentGalleryCategory)
				return err
			},
		)
		return d, err
	})
}

// LoadUsers loads students and faculty.
func (s *Service) LoadUsers(ctx context.Context, ws *Workspace) (View[UsersData], error) {
	return load(ctx, s, TabUsers, &ws.Users, Filter{}, func(ctx context.Context) (UsersData, error) {
		var d UsersData
		err := FanOut(ctx,
			func(ctx context.Context) (err error) {
				d.Students, err = s.backend.Students(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				d.Faculty, err = s.backend.Faculty(ctx)
				return err
			},
		)
		return d, err
	})
}

// LoadCourses loads courses with the departments and categories the
// course form chooses from.
func (s *Service) LoadCourses(ctx context.Context, ws *Workspace) (View[CoursesData], error) {
	return load(ctx, s, TabCourses, &ws.Courses, Filter{}, func(ctx context.Context) (CoursesData, error) {
		var d CoursesData
		err := FanOut(ctx,
			func(ctx context.Context) (err error) {
				d.Courses, err = s.backend.Courses(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				d.Departments, err = s.backend.Departments(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				d.Categories, err = s.backend.Categories(ctx)
				return err
			},
		)
		return d, err
	})
}

// LoadAdmissions loads all admissions.
func (s *Service) LoadAdmissions(ctx context.Context, ws *Workspace) (View[AdmissionsData], error) {
	return load(ctx, s, TabAdmissions, &ws.Admissions, Filter{}, func(ctx context.Context) (AdmissionsData, error) {
		list, err := s.backend.Admissions(ctx)
		return AdmissionsData{Admissions: list}, err
	})
}

// LoadTestimonials loads testimonial content.
func (s *Service) LoadTestimonials(ctx context.Context, ws *Workspace) (View[TestimonialsData], error) {
	return load(ctx, s, TabTestimonials, &ws.Testimonials, Filter{}, func(ctx context.Context) (TestimonialsData, error) {
		items, err := s.backend.ContentByType(ctx, model.ContentTestimonial)
		return TestimonialsData{Items: items}, err
	})
}

// LoadPayments loads all payments.
func (s *Service) LoadPayments(ctx context.Context, ws *Workspace) (View[PaymentsData], error) {
	return load(ctx, s, TabPayments, &ws.Payments, Filter{}, func(ctx context.Context) (PaymentsData, error) {
		list, err := s.backend.Payments(ctx)
		return PaymentsData{Payments: list}, err
	})
}

// LoadIDCards loads students, courses and departments for ID cards.
func (s *Service) LoadIDCards(ctx context.Context, ws *Workspace) (View[IDCardData], error) {
	return load(ctx, s, TabIDCards, &ws.IDCards, Filter{}, func(ctx context.Context) (IDCardData, error) {
		var d IDCardData
		err := FanOut(ctx,
			func(ctx context.Context) (err error) {
				d.Students, err = s.backend.Students(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				d.Courses, err = s.backend.Courses(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				d.Departments, err = s.backend.Departments(ctx)
				return err
			},
		)
		return d, err
	})
}
