package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bearerContext(auth string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestLoginRequestWireKey(t *testing.T) {
	e := echo.New()
	body := `{"emailOrUsername":"ada","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var lr loginReq
	require.NoError(t, c.Bind(&lr))
	assert.Equal(t, "ada", lr.User)
	assert.Equal(t, "pw", lr.Password)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc.def", bearerToken(bearerContext("Bearer abc.def")))
	assert.Equal(t, "abc.def", bearerToken(bearerContext("bearer abc.def")))
	assert.Equal(t, "", bearerToken(bearerContext("")))
	assert.Equal(t, "", bearerToken(bearerContext("Bearer")))
	assert.Equal(t, "", bearerToken(bearerContext("Basic dXNlcjpwdw==")))
}
