package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
)

func TestProjectCreate_DefaultsToDraft(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.register(t, "Ana", "ana")

	p, err := e.Projects.Create(ctx, id, model.ProjectInput{Title: "  Folio  ", Tech: []string{" Go ", "SQLite"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Status != model.StatusDraft {
		t.Errorf("Status = %q, want Draft", p.Status)
	}
	if p.Title != "Folio" || p.Tech[0] != "Go" {
		t.Errorf("input not trimmed: %+v", p)
	}
	if p.OwnerID != id {
		t.Errorf("OwnerID = %q, want %q", p.OwnerID, id)
	}
}

func TestProjectCreate_Validation(t *testing.T) {
	e := newEnv(t)
	id := e.register(t, "Ana", "ana")

	tests := []struct {
		name  string
		in    model.ProjectInput
		field string
	}{
		{"missing title", model.ProjectInput{Title: "   "}, "title"},
		{"bad status", model.ProjectInput{Title: "x", Status: "Archived"}, "status"},
		{"bad live url", model.ProjectInput{Title: "x", Live: "example.com"}, "live"},
		{"empty tech entry", model.ProjectInput{Title: "x", Tech: []string{"Go", " "}}, "tech[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Projects.Create(context.Background(), id, tt.in)
			wantErr(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}
	if len(e.projects.projects) != 0 {
		t.Errorf("stored %d projects from invalid input", len(e.projects.projects))
	}
}

func TestProject_DraftToPublished(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.register(t, "Ana", "ana")

	draft, _ := e.Projects.Create(ctx, id, model.ProjectInput{Title: "Hidden"})
	if _, err := e.Projects.Create(ctx, id, model.ProjectInput{Title: "Shown", Status: model.StatusPublished}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	pf, err := e.Portfolio.Get(ctx, "ana")
	if err != nil {
		t.Fatalf("Portfolio.Get() error = %v", err)
	}
	if len(pf.Projects) != 1 || pf.Projects[0].Title != "Shown" {
		t.Fatalf("public projects = %+v, want only Shown", pf.Projects)
	}

	status := model.StatusPublished
	if _, err := e.Projects.Update(ctx, id, draft.ID, model.ProjectPatch{Status: &status}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	pf, _ = e.Portfolio.Get(ctx, "ana")
	if len(pf.Projects) != 2 || pf.Projects[0].Title != "Hidden" {
		t.Errorf("public projects = %+v, want Hidden then Shown", pf.Projects)
	}

	all, _ := e.Projects.List(ctx, id)
	if len(all) != 2 {
		t.Errorf("List() len = %d, want 2", len(all))
	}
}

func TestProjectUpdate_MergesAndTouches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.register(t, "Ana", "ana")

	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	edited := created.Add(time.Hour)
	orig := timeNow
	t.Cleanup(func() { timeNow = orig })

	timeNow = func() time.Time { return created }
	p, _ := e.Projects.Create(ctx, id, model.ProjectInput{
		Title:       "Folio",
		Description: "A portfolio builder",
		Tech:        []string{"Go"},
	})

	timeNow = func() time.Time { return edited }
	tech := []string{"Go", "chi"}
	updated, err := e.Projects.Update(ctx, id, p.ID, model.ProjectPatch{Tech: &tech})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := e.Projects.Get(ctx, id, p.ID)
	if got.Description != "A portfolio builder" || got.Title != "Folio" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if len(got.Tech) != 2 || got.Tech[1] != "chi" {
		t.Errorf("Tech = %v", got.Tech)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(edited) || !updated.UpdatedAt.Equal(edited) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestProjectUpdate_ClearsOptionalURL(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.register(t, "Ana", "ana")

	p, _ := e.Projects.Create(ctx, id, model.ProjectInput{Title: "Folio", Live: "https://folio.dev"})
	got, err := e.Projects.Update(ctx, id, p.ID, model.ProjectPatch{Live: strPtr("")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Live != "" {
		t.Errorf("Live = %q, want cleared", got.Live)
	}
}

func TestProject_OwnerScoping(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.register(t, "Ana", "ana")
	bob := e.register(t, "Bob", "bob")

	p, _ := e.Projects.Create(ctx, ana, model.ProjectInput{Title: "Mine"})

	_, err := e.Projects.Get(ctx, bob, p.ID)
	wantErr(t, err, apperror.ErrNotFound)

	_, err = e.Projects.Update(ctx, bob, p.ID, model.ProjectPatch{Title: strPtr("Stolen")})
	wantErr(t, err, apperror.ErrNotFound)

	wantErr(t, e.Projects.Delete(ctx, bob, p.ID), apperror.ErrNotFound)

	bobs, _ := e.Projects.List(ctx, bob)
	if len(bobs) != 0 {
		t.Errorf("Bob sees %d projects", len(bobs))
	}

	if err := e.Projects.Delete(ctx, ana, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = e.Projects.Get(ctx, ana, p.ID)
	wantErr(t, err, apperror.ErrNotFound)
}
