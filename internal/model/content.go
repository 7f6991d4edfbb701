package model

import (
	"maps"
	"time"
)

// Section names one independently editable part of PortfolioContent.
type Section string

const (
	SectionAbout  Section = "about"
	SectionHero   Section = "hero"
	SectionSocial Section = "social"
)

// Sections lists every editable section.
var Sections = []Section{SectionAbout, SectionHero, SectionSocial}

// ParseSection returns the Section for s and whether it is known.
func ParseSection(s string) (Section, bool) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// Hero background modes.
const (
	BackgroundGradient = "gradient"
	BackgroundImage    = "image"
	BackgroundPattern  = "pattern"
)

// DefaultBorderColor is the profile image ring colour for new portfolios.
const DefaultBorderColor = "#3B82F6"

// PortfolioContent is everything rendered on a user's public page apart from
// the project and skill collections.
type PortfolioContent struct {
	About     About     `json:"about"`
	Hero      Hero      `json:"hero"`
	Social    Social    `json:"social"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type About struct {
	Name                    string `json:"name"`
	Title                   string `json:"title"`
	Bio                     string `json:"bio"`
	Experience              string `json:"experience"`
	ProjectsCompleted       string `json:"projectsCompleted"`
	Email                   string `json:"email"`
	Phone                   string `json:"phone"`
	Location                string `json:"location"`
	ProfileImage            string `json:"profileImage"`
	ProfileImageBorderColor string `json:"profileImageBorderColor"`
}

type Hero struct {
	HeroTitle               string         `json:"heroTitle"`
	HeroDescription         string         `json:"heroDescription"`
	HeroBackgroundMode      string         `json:"heroBackgroundMode"`
	HeroGradientPreset      int            `json:"heroGradientPreset"`
	HeroBackgroundImageURL  string         `json:"heroBackgroundImageUrl"`
	HeroBackgroundBlurLevel int            `json:"heroBackgroundBlurLevel"`
	HeroPatternID           string         `json:"heroPatternId"`
	HeroPatternProps        map[string]any `json:"heroPatternProps"`
}

type Social struct {
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
	X        string `json:"x"`
	Telegram string `json:"telegram"`
}

// DefaultContent is the shape seeded at registration and returned for a user
// that has no stored content.
func DefaultContent(name, email string) *PortfolioContent {
	return &PortfolioContent{
		About: About{
			Name:                    name,
			Experience:              "0",
			ProjectsCompleted:       "0",
			Email:                   email,
			ProfileImageBorderColor: DefaultBorderColor,
		},
		Hero: Hero{
			HeroTitle:          "Hi, I'm " + name,
			HeroBackgroundMode: BackgroundGradient,
			HeroGradientPreset: 1,
			HeroPatternProps:   map[string]any{},
		},
	}
}

// Clone returns a deep copy; the pattern props map is not shared.
func (c *PortfolioContent) Clone() *PortfolioContent {
	out := *c
	out.Hero.HeroPatternProps = maps.Clone(c.Hero.HeroPatternProps)
	if out.Hero.HeroPatternProps == nil {
		out.Hero.HeroPatternProps = map[string]any{}
	}
	return &out
}

// SectionPatch is a partial update of exactly one section.
type SectionPatch interface {
	Section() Section
	applyTo(c *PortfolioContent)
}

// Apply merges p into c. Fields that p leaves nil keep their current value.
func (c *PortfolioContent) Apply(p SectionPatch) {
	p.applyTo(c)
}

// AboutPatch carries the about fields a client chose to send.
type AboutPatch struct {
	Name                    *string `json:"name" validate:"omitempty,max=100"`
	Title                   *string `json:"title" validate:"omitempty,max=150"`
	Bio                     *string `json:"bio" validate:"omitempty,max=5000"`
	Experience              *string `json:"experience" validate:"omitempty,max=20"`
	ProjectsCompleted       *string `json:"projectsCompleted" validate:"omitempty,max=20"`
	Email                   *string `json:"email" validate:"omitempty,max=254"`
	Phone                   *string `json:"phone" validate:"omitempty,max=40"`
	Location                *string `json:"location" validate:"omitempty,max=120"`
	ProfileImage            *string `json:"profileImage" validate:"omitempty,max=2048"`
	ProfileImageBorderColor *string `json:"profileImageBorderColor" validate:"omitempty,hexcolor_or_empty"`
}

func (AboutPatch) Section() Section { return SectionAbout }

func (p AboutPatch) applyTo(c *PortfolioContent) {
	a := &c.About
	set(&a.Name, p.Name)
	set(&a.Title, p.Title)
	set(&a.Bio, p.Bio)
	set(&a.Experience, p.Experience)
	set(&a.ProjectsCompleted, p.ProjectsCompleted)
	set(&a.Email, p.Email)
	set(&a.Phone, p.Phone)
	set(&a.Location, p.Location)
	set(&a.ProfileImage, p.ProfileImage)
	set(&a.ProfileImageBorderColor, p.ProfileImageBorderColor)
}

// HeroPatch carries the hero fields a client chose to send.
// HeroPatternProps replaces the stored map when present.
type HeroPatch struct {
	HeroTitle               *string        `json:"heroTitle" validate:"omitempty,max=200"`
	HeroDescription         *string        `json:"heroDescription" validate:"omitempty,max=2000"`
	HeroBackgroundMode      *string        `json:"heroBackgroundMode" validate:"omitempty,oneof=gradient image pattern"`
	HeroGradientPreset      *int           `json:"heroGradientPreset" validate:"omitempty,min=1,max=4"`
	HeroBackgroundImageURL  *string        `json:"heroBackgroundImageUrl" validate:"omitempty,max=2048"`
	HeroBackgroundBlurLevel *int           `json:"heroBackgroundBlurLevel" validate:"omitempty,min=0,max=4"`
	HeroPatternID           *string        `json:"heroPatternId" validate:"omitempty,max=100"`
	HeroPatternProps        map[string]any `json:"heroPatternProps"`
}

func (HeroPatch) Section() Section { return SectionHero }

func (p HeroPatch) applyTo(c *PortfolioContent) {
	h := &c.Hero
	set(&h.HeroTitle, p.HeroTitle)
	set(&h.HeroDescription, p.HeroDescription)
	set(&h.HeroBackgroundMode, p.HeroBackgroundMode)
	set(&h.HeroGradientPreset, p.HeroGradientPreset)
	set(&h.HeroBackgroundImageURL, p.HeroBackgroundImageURL)
	set(&h.HeroBackgroundBlurLevel, p.HeroBackgroundBlurLevel)
	set(&h.HeroPatternID, p.HeroPatternID)
	if p.HeroPatternProps != nil {
		h.HeroPatternProps = maps.Clone(p.HeroPatternProps)
	}
}

// SocialPatch carries the social links a client chose to send.
type SocialPatch struct {
	GitHub   *string `json:"github" validate:"omitempty,url_or_empty"`
	LinkedIn *string `json:"linkedin" validate:"omitempty,url_or_empty"`
	X        *string `json:"x" validate:"omitempty,url_or_empty"`
	Telegram *string `json:"telegram" validate:"omitempty,url_or_empty"`
}

func (SocialPatch) Section() Section { return SectionSocial }

func (p SocialPatch) applyTo(c *PortfolioContent) {
	s := &c.Social
	set(&s.GitHub, p.GitHub)
	set(&s.LinkedIn, p.LinkedIn)
	set(&s.X, p.X)
	set(&s.Telegram, p.Telegram)
}

// NewPatch returns an empty patch record for section, ready to be decoded into.
func NewPatch(section Section) (SectionPatch, bool) {
	switch section {
	case SectionAbout:
		return &AboutPatch{}, true
	case SectionHero:
		return &HeroPatch{}, true
	case SectionSocial:
		return &SocialPatch{}, true
	}
	return nil, false
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
