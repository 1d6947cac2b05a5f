package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"

	"flightalert-service/pkg/logger"
)

func TestGenerateAuthURL_RequestsSendScopeOffline(t *testing.T) {
	o := NewGmailOAuth("client", "secret", "", logger.NewNopLogger(), WithRedirectURL("http://localhost:8085/callback"))

	u, err := url.Parse(o.GenerateAuthURL("xyz"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, gmail.GmailSendScope, q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "http://localhost:8085/callback", q.Get("redirect_uri"))
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewGmailOAuth("client", "secret", "", logger.NewNopLogger()).Configured())
	assert.True(t, NewGmailOAuth("client", "secret", "refresh", logger.NewNopLogger()).Configured())
}

func TestGetTokenSource_RefreshesFromRefreshToken(t *testing.T) {
	var gotGrant, gotRefresh string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotGrant = r.Form.Get("grant_type")
		gotRefresh = r.Form.Get("refresh_token")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	o := NewGmailOAuth("client", "secret", "refresh-1", logger.NewNopLogger(),
		WithEndpoint(oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams}))

	token, err := o.GetTokenSource(context.Background()).Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.Equal(t, "refresh_token", gotGrant)
	assert.Equal(t, "refresh-1", gotRefresh)
}

func TestTokenToJSON(t *testing.T) {
	o := NewGmailOAuth("client", "secret", "", logger.NewNopLogger())

	out, err := o.TokenToJSON(&oauth2.Token{AccessToken: "a", RefreshToken: "r"})
	require.NoError(t, err)
	assert.Contains(t, out, `"refresh_token": "r"`)
}
