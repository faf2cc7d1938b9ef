package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeFavorites(t *testing.T) {
	favorites := decodeFavorites(`[{"tmdb_id":550,"title":"Fight Club","poster_path":"/p.jpg","year":1999}]`)
	if assert.Len(t, favorites, 1) {
		assert.Equal(t, uint64(550), favorites[0].TMDBID)
		assert.Equal(t, "Fight Club", favorites[0].Title)
		assert.Equal(t, 1999, favorites[0].Year)
	}
}

func TestDecodeFavoritesTolerant(t *testing.T) {
	assert.Empty(t, decodeFavorites(""))
	assert.Empty(t, decodeFavorites("not json"))
	assert.Empty(t, decodeFavorites(`{"wrong":"shape"}`))
}

func strptr(s string) *string { return &s }

func TestUpdateAccountPatchTrimsAndMaps(t *testing.T) {
	req := updateAccountReq{
		GivenName: strptr("  Ada  "),
		Location:  strptr("London"),
		Website:   strptr("https://example.com/ada"),
		Bio:       strptr("likes movies"),
	}
	patch, problem := req.patch()
	assert.Empty(t, problem)
	assert.Equal(t, "Ada", *patch.GivenName)
	assert.Nil(t, patch.FamilyName)
	assert.Equal(t, "London", *patch.Location)
	assert.Equal(t, "https://example.com/ada", *patch.Website)
	assert.Equal(t, "likes movies", *patch.Bio)
}

func TestUpdateAccountPatchRejectsBadWebsite(t *testing.T) {
	for _, site := range []string{"http://example.com", "example.com", "ftp://x", "https://"} {
		req := updateAccountReq{Website: strptr(site)}
		_, problem := req.patch()
		assert.NotEmpty(t, problem, "website %q should be rejected", site)
	}

	// empty string clears the field and is allowed
	_, problem := updateAccountReq{Website: strptr("")}.patch()
	assert.Empty(t, problem)
}

func TestUpdateAccountPatchRejectsLongBio(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	_, problem := updateAccountReq{Bio: strptr(string(long))}.patch()
	assert.Equal(t, "bio too long", problem)
}
