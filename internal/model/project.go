package model

import "time"

// Project statuses. Only Published projects reach the public renderer.
const (
	StatusPublished = "Published"
	StatusDraft     = "Draft"
)

// Project is one portfolio entry owned by a single user.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tech        []string  `json:"tech"`
	Image       string    `json:"image,omitempty"`
	GitHub      string    `json:"github,omitempty"`
	Live        string    `json:"live,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectInput is the body of a create request.
type ProjectInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Tech        []string `json:"tech" validate:"max=30,dive,required,max=50"`
	Image       string   `json:"image" validate:"omitempty,url,max=2048"`
	GitHub      string   `json:"github" validate:"omitempty,url,max=2048"`
	Live        string   `json:"live" validate:"omitempty,url,max=2048"`
	Status      string   `json:"status" validate:"omitempty,oneof=Published Draft"`
}

// ProjectPatch is the body of an update request; nil fields are left alone.
type ProjectPatch struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Tech        *[]string `json:"tech" validate:"omitempty,max=30,dive,required,max=50"`
	Image       *string   `json:"image" validate:"omitempty,url_or_empty,max=2048"`
	GitHub      *string   `json:"github" validate:"omitempty,url_or_empty,max=2048"`
	Live        *string   `json:"live" validate:"omitempty,url_or_empty,max=2048"`
	Status      *string   `json:"status" validate:"omitempty,oneof=Published Draft"`
}

// Apply merges the patch into p.
func (pp ProjectPatch) Apply(p *Project) {
	set(&p.Title, pp.Title)
	set(&p.Description, pp.Description)
	set(&p.Tech, pp.Tech)
	set(&p.Image, pp.Image)
	set(&p.GitHub, pp.GitHub)
	set(&p.Live, pp.Live)
	set(&p.Status, pp.Status)
}
