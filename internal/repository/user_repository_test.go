package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sptr(s string) *string { return &s }

func TestProfilePatchAssignments(t *testing.T) {
	cols, args := ProfilePatch{}.assignments()
	assert.Empty(t, cols)
	assert.Empty(t, args)

	cols, args = ProfilePatch{
		GivenName: sptr("Ada"),
		Website:   sptr("https://example.com"),
		Bio:       sptr(""),
	}.assignments()
	assert.Equal(t, []string{"given_name=?", "website=?", "bio=?"}, cols)
	assert.Equal(t, []any{"Ada", "https://example.com", ""}, args)
}

func TestUserPublicProjection(t *testing.T) {
	u := User{
		ID:             7,
		Username:       "ada",
		Email:          "ada@example.com",
		EmailValidated: true,
		GivenName:      sql.NullString{String: "Ada", Valid: true},
		FamilyName:     sql.NullString{String: "Lovelace", Valid: true},
		Location:       sql.NullString{String: "London", Valid: true},
		Website:        sql.NullString{String: "https://example.com", Valid: true},
		Bio:            sql.NullString{String: "first programmer", Valid: true},
		PasswordHash:   "$2a$12$secret",
	}
	pub := u.Public()
	assert.Equal(t, "Ada", pub.GivenName)
	assert.Equal(t, "Lovelace", pub.FamilyName)
	assert.Equal(t, "London", pub.Location)
	assert.Equal(t, "https://example.com", pub.Website)
	assert.Equal(t, "first programmer", pub.Bio)
	assert.Empty(t, pub.AvatarImagePath)
}
