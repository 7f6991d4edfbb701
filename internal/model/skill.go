package model

import "time"

// Skill is a named competency with a 0–100 proficiency score.
type Skill struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Proficiency int       `json:"proficiency"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SkillInput struct {
	Name        string `json:"name" validate:"required,max=80"`
	Category    string `json:"category" validate:"required,max=80"`
	Proficiency int    `json:"proficiency" validate:"min=0,max=100"`
}

type SkillPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=80"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=80"`
	Proficiency *int    `json:"proficiency" validate:"omitempty,min=0,max=100"`
}

func (sp SkillPatch) Apply(s *Skill) {
	set(&s.Name, sp.Name)
	set(&s.Category, sp.Category)
	set(&s.Proficiency, sp.Proficiency)
}

// SkillGroup is one category of skills on the rendered page.
type SkillGroup struct {
	Category string  `json:"category"`
	Skills   []Skill `json:"skills"`
}

// GroupSkills groups skills by category. Categories keep the order in which
// they first appear; skills keep their order within a category.
func GroupSkills(skills []Skill) []SkillGroup {
	groups := []SkillGroup{}
	index := make(map[string]int)
	for _, s := range skills {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, SkillGroup{Category: s.Category})
		}
		groups[i].Skills = append(groups[i].Skills, s)
	}
	return groups
}
