// Package demo serves a fixed sample portfolio and an editor that previews
// section patches against it without saving anything.
package demo

import (
	"context"
	"time"

	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/service"
)

// Username is the owner shown on the demo portfolio.
const Username = "demo"

var seeded = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Content returns a fresh copy of the demo content.
func Content() *model.PortfolioContent {
	return &model.PortfolioContent{
		About: model.About{
			Name:                    "Alex Demo",
			Title:                   "Full-Stack Developer",
			Bio:                     "I build fast, accessible web apps and the APIs behind them.",
			Experience:              "5",
			ProjectsCompleted:       "24",
			Email:                   "alex@example.com",
			Location:                "Remote",
			ProfileImageBorderColor: model.DefaultBorderColor,
		},
		Hero: model.Hero{
			HeroTitle:          "Hi, I'm Alex",
			HeroDescription:    "Welcome to my portfolio. Have a look around.",
			HeroBackgroundMode: model.BackgroundGradient,
			HeroGradientPreset: 2,
			HeroPatternProps:   map[string]any{},
		},
		Social: model.Social{
			GitHub:   "https://github.com/example",
			LinkedIn: "https://www.linkedin.com/in/example",
		},
		UpdatedAt: seeded,
	}
}

// Portfolio returns the demo portfolio in the same envelope the public
// renderer uses for real users.
func Portfolio() *model.Portfolio {
	projects := []model.Project{
		{
			ID:          "demo-project-1",
			Title:       "Task Board",
			Description: "A kanban board with drag and drop and offline sync.",
			Tech:        []string{"TypeScript", "React", "IndexedDB"},
			Live:        "https://example.com/board",
			Status:      model.StatusPublished,
			CreatedAt:   seeded,
			UpdatedAt:   seeded,
		},
		{
			ID:          "demo-project-2",
			Title:       "Link Shortener",
			Description: "A small Go service with per-link analytics.",
			Tech:        []string{"Go", "SQLite"},
			GitHub:      "https://github.com/example/shorty",
			Status:      model.StatusPublished,
			CreatedAt:   seeded,
			UpdatedAt:   seeded,
		},
	}
	skills := []model.Skill{
		{ID: "demo-skill-1", Name: "Go", Category: "Backend", Proficiency: 85, CreatedAt: seeded, UpdatedAt: seeded},
		{ID: "demo-skill-2", Name: "React", Category: "Frontend", Proficiency: 80, CreatedAt: seeded, UpdatedAt: seeded},
		{ID: "demo-skill-3", Name: "PostgreSQL", Category: "Backend", Proficiency: 70, CreatedAt: seeded, UpdatedAt: seeded},
	}

	return &model.Portfolio{
		User:     model.PublicUser{Username: Username, Name: "Alex Demo"},
		Content:  Content(),
		Projects: projects,
		Skills:   model.GroupSkills(skills),
	}
}

// Editor runs the live editor's decode and merge rules against a copy of the
// demo content. Nothing is persisted; every call starts from the seed.
type Editor struct {
	decoder *service.PatchDecoder
	now     func() time.Time
}

var _ service.SectionEditor = (*Editor)(nil)

func NewEditor(decoder *service.PatchDecoder) *Editor {
	return &Editor{decoder: decoder, now: func() time.Time { return time.Now().UTC() }}
}

// Save ignores userID; the demo has a single shared owner.
func (e *Editor) Save(_ context.Context, _ string, section string, raw []byte) (*model.PortfolioContent, error) {
	patch, err := e.decoder.Decode(section, raw)
	if err != nil {
		return nil, err
	}

	c := Content()
	c.Apply(patch)
	c.UpdatedAt = e.now()
	return c, nil
}

func (e *Editor) IsDemo() bool { return true }
