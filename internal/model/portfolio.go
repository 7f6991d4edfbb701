package model

// Portfolio is everything the public page for one username shows.
type Portfolio struct {
	User     PublicUser        `json:"user"`
	Content  *PortfolioContent `json:"content"`
	Projects []Project         `json:"projects"`
	Skills   []SkillGroup      `json:"skills"`
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AccountPatch changes account identity fields; nil fields are kept.
type AccountPatch struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Username *string `json:"username" validate:"omitempty,username"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
}
