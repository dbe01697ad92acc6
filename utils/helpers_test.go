package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/brickstat-api/apierr"
)

func TestPathInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sets/reviews/42", nil)
	r.SetPathValue("user_id", "42")
	n, err := PathInt(r, "user_id")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	r.SetPathValue("user_id", "abc")
	_, err = PathInt(r, "user_id")
	var ve *apierr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "user_id", ve.Field)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?build_style=2&difficulty_level=hard", nil)

	n, err := QueryInt(r, "build_style")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = QueryInt(r, "difficulty_level")
	assert.Error(t, err)

	_, err = QueryInt(r, "distraction_level")
	assert.Error(t, err)
}

func TestQueryString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/reviews?set_num=75192-1&empty=", nil)
	require.NotNil(t, QueryString(r, "set_num"))
	assert.Equal(t, "75192-1", *QueryString(r, "set_num"))
	assert.Nil(t, QueryString(r, "empty"))
	assert.Nil(t, QueryString(r, "missing"))
}
