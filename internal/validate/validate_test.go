package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ana", true},
		{"ana.dev_01", true},
		{"AnA", true},
		{"an", false},
		{"ana-dev", false},
		{"ana dev", false},
		{"a123456789012345678901234567890", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidUsername(tt.in))
		})
	}
}

func TestStruct_SkillProficiencyRange(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(model.SkillInput{Name: "Go", Category: "Backend", Proficiency: 0}))
	assert.NoError(t, v.Struct(model.SkillInput{Name: "Go", Category: "Backend", Proficiency: 100}))

	for _, p := range []int{-1, 101} {
		err := v.Struct(model.SkillInput{Name: "Go", Category: "Backend", Proficiency: p})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrValidation))

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "proficiency", appErr.Field)
	}
}

func TestStruct_ProjectStatusEnum(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(model.ProjectInput{Title: "X", Status: "Draft"}))
	assert.NoError(t, v.Struct(model.ProjectInput{Title: "X", Status: "Published"}))
	assert.NoError(t, v.Struct(model.ProjectInput{Title: "X"}))

	err := v.Struct(model.ProjectInput{Title: "X", Status: "Archived"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Contains(t, err.Error(), "status must be one of")

	err = v.Struct(model.ProjectPatch{Status: strPtr("")})
	assert.True(t, errors.Is(err, apperror.ErrValidation), "an explicit empty status is not a valid status")
}

func TestStruct_ProjectTechFieldPath(t *testing.T) {
	err := New().Struct(model.ProjectInput{Title: "X", Tech: []string{"Go", ""}})

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "tech[1]", appErr.Field)
}

func TestStruct_HeroPatchRanges(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(model.HeroPatch{}))
	assert.NoError(t, v.Struct(model.HeroPatch{HeroBackgroundBlurLevel: intPtr(0), HeroGradientPreset: intPtr(4)}))

	assert.Error(t, v.Struct(model.HeroPatch{HeroGradientPreset: intPtr(0)}))
	assert.Error(t, v.Struct(model.HeroPatch{HeroGradientPreset: intPtr(5)}))
	assert.Error(t, v.Struct(model.HeroPatch{HeroBackgroundBlurLevel: intPtr(5)}))
	assert.Error(t, v.Struct(model.HeroPatch{HeroBackgroundMode: strPtr("video")}))
}

func TestStruct_OptionalFormats(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(model.AboutPatch{ProfileImageBorderColor: strPtr("")}))
	assert.NoError(t, v.Struct(model.AboutPatch{ProfileImageBorderColor: strPtr("#fff")}))
	assert.Error(t, v.Struct(model.AboutPatch{ProfileImageBorderColor: strPtr("blue")}))

	assert.NoError(t, v.Struct(model.SocialPatch{GitHub: strPtr("")}))
	assert.NoError(t, v.Struct(model.SocialPatch{GitHub: strPtr("https://github.com/ana")}))
	assert.Error(t, v.Struct(model.SocialPatch{GitHub: strPtr("github.com/ana")}))
}

func TestVar_PasswordLength(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("long-enough", "required,min=6,max=72", "newPassword"))

	err := v.Var("short", "required,min=6,max=72", "newPassword")
	require.Error(t, err)
	assert.Equal(t, "newPassword must be at least 6 characters long", err.Error())

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "newPassword", appErr.Field)
}

func TestStruct_RegisterInput(t *testing.T) {
	v := New()

	ok := model.RegisterInput{Name: "Ana", Email: "ana@x.com", Username: "ana", Password: "password1"}
	assert.NoError(t, v.Struct(ok))

	bad := ok
	bad.Username = "a b"
	err := v.Struct(bad)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "username", appErr.Field)
}

func TestStruct_ContactInput(t *testing.T) {
	v := New()

	ok := model.ContactInput{Username: "ana", SenderName: "Bo", SenderEmail: "bo@x.com", Body: "hello"}
	assert.NoError(t, v.Struct(ok))

	bad := ok
	bad.SenderEmail = "not-an-email"
	err := v.Struct(bad)
	require.Error(t, err)
	assert.Equal(t, "senderEmail must be a valid email address", err.Error())
}
