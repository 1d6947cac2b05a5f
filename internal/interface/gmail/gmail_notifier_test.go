package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *GmailNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n, err := NewGmailNotifier(context.Background(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"}),
		"alerts@example.com",
		logger.NewNopLogger(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return n
}

func TestGmailNotifier_Send(t *testing.T) {
	var raw string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages/send"), r.URL.Path)

		var msg gmail.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		decoded, err := base64.URLEncoding.DecodeString(msg.Raw)
		require.NoError(t, err)
		raw = string(decoded)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg-1"}`))
	})

	err := n.Send(context.Background(), repository.Delivery{
		JobID:     "j1",
		BookingID: "b1",
		Passenger: entity.Passenger{ID: "p1", Email: "jane@example.com"},
		Channel:   entity.ChannelEmail,
		Payload: map[string]interface{}{
			entity.PayloadMessage:      "Flight AA100 has been CANCELLED.",
			entity.PayloadType:         "CANCELLED",
			entity.PayloadFlightNumber: "AA100",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, raw, "From: alerts@example.com\r\n")
	assert.Contains(t, raw, "To: jane@example.com\r\n")
	assert.Contains(t, raw, "Subject: Flight AA100 cancelled\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nFlight AA100 has been CANCELLED."))
}

func TestGmailNotifier_NoEmail(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gmail must not be called")
	})

	for _, email := range []string{
		"",
		"   ",
		"not-an-address",
		"victim@example.com\r\nBcc: list@evil.test",
		"victim@example.com\nBcc: list@evil.test",
	} {
		err := n.Send(context.Background(), repository.Delivery{Passenger: entity.Passenger{ID: "p1", Email: email}})
		assert.ErrorIs(t, err, entity.ErrNoRecipient, "email %q", email)
	}
}

func TestRecipient(t *testing.T) {
	to, err := recipient(" Jane Doe <jane@example.com> ")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", to)

	_, err = recipient("jane@example.com\r\nBcc: list@evil.test")
	assert.Error(t, err)
}

func TestGmailNotifier_APIError(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := n.Send(context.Background(), repository.Delivery{Passenger: entity.Passenger{Email: "jane@example.com"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrNoRecipient)
}

func TestSubjectFor(t *testing.T) {
	d := repository.Delivery{Payload: map[string]interface{}{entity.PayloadFlightNumber: "BA9"}}
	assert.Equal(t, "Flight BA9 update", subjectFor(d))

	d.Payload[entity.PayloadType] = "ADMIN_OVERRIDE"
	assert.Equal(t, "Important notice for flight BA9", subjectFor(d))
}
