package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
)

func TestContentGet_NoRow(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Content().Get(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestContentSaveSection_OnlyTouchesThatSection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ana")
	store := db.Content()

	c, err := store.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// Two editors load the same content and change different sections.
	first := c.Clone()
	first.About.Bio = "Hi"
	first.UpdatedAt = time.Now().UTC()
	second := c.Clone()
	second.Social.GitHub = "https://github.com/ana"
	second.UpdatedAt = time.Now().UTC()

	if err := store.SaveSection(ctx, user.ID, model.SectionAbout, first); err != nil {
		t.Fatalf("SaveSection(about) error = %v", err)
	}
	if err := store.SaveSection(ctx, user.ID, model.SectionSocial, second); err != nil {
		t.Fatalf("SaveSection(social) error = %v", err)
	}

	got, err := store.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.About.Bio != "Hi" {
		t.Errorf("About.Bio = %q, want %q (lost to the social save)", got.About.Bio, "Hi")
	}
	if got.Social.GitHub != "https://github.com/ana" {
		t.Errorf("Social.GitHub = %q", got.Social.GitHub)
	}
	if !got.UpdatedAt.Equal(second.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, second.UpdatedAt)
	}
}

func TestContentSaveSection_CreatesMissingRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ana")

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM portfolio_content WHERE user_id = ?`, user.ID); err != nil {
		t.Fatalf("deleting content: %v", err)
	}

	c := model.DefaultContent("Ana", "ana@example.com")
	c.Hero.HeroPatternProps = map[string]any{"size": 4.0}
	c.Hero.HeroBackgroundMode = model.BackgroundPattern
	c.UpdatedAt = time.Now().UTC()
	if err := db.Content().SaveSection(ctx, user.ID, model.SectionHero, c); err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}

	got, err := db.Content().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Hero.HeroBackgroundMode != model.BackgroundPattern {
		t.Errorf("HeroBackgroundMode = %q", got.Hero.HeroBackgroundMode)
	}
	if got.Hero.HeroPatternProps["size"] != 4.0 {
		t.Errorf("HeroPatternProps = %v", got.Hero.HeroPatternProps)
	}
	if got.About.Name != "Ana" {
		t.Errorf("About.Name = %q, want Ana", got.About.Name)
	}
}

func TestContentSaveSection_UnknownSection(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ana")

	err := db.Content().SaveSection(context.Background(), user.ID, "projects", model.DefaultContent("a", "b"))
	if err == nil {
		t.Fatal("SaveSection() should reject an unknown section")
	}
}
