package jira

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/shared/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTicket = entity.Ticket{
	ResourceID:  "i-abc",
	Summary:     "Apptio Cloudability Recommendations: Resize AWS EC2 Resource ID i-abc",
	Description: "*Details of Recommendations*",
	Savings:     150,
}

func newServer(t *testing.T, status int, body string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/issue/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "svc-jira", user)
		assert.Equal(t, "pw", pass)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if seen != nil {
			require.NoError(t, json.Unmarshal(raw, seen))
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func settingsFor(url string) Settings {
	return Settings{
		BaseURL:    url + "/",
		Username:   "svc-jira",
		Password:   "pw",
		ProjectKey: "CLOUD",
		IssueType:  "Change",
	}
}

func TestCreateIssue_WithoutSavingsField(t *testing.T) {
	var body map[string]interface{}
	server := newServer(t, http.StatusCreated, `{"id":"10001","key":"CLOUD-1","self":"http://jira/rest/api/2/issue/10001"}`, &body)

	repo := NewTrackerRepository(settingsFor(server.URL), server.Client(), zerolog.Nop())
	resp, err := repo.CreateIssue(context.Background(), testTicket)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "CLOUD-1", resp.Key)
	assert.Equal(t, "10001", resp.ID)

	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"key": "CLOUD"}, fields["project"])
	assert.Equal(t, map[string]interface{}{"name": "Change"}, fields["issuetype"])
	assert.Equal(t, testTicket.Summary, fields["summary"])
	assert.Equal(t, testTicket.Description, fields["description"])
	assert.Len(t, fields, 4)
}

func TestCreateIssue_WithSavingsField(t *testing.T) {
	var body map[string]interface{}
	server := newServer(t, http.StatusCreated, `{"id":"10002","key":"CLOUD-2"}`, &body)

	settings := settingsFor(server.URL)
	settings.SavingsField = "customfield_10200"
	repo := NewTrackerRepository(settings, server.Client(), zerolog.Nop())

	_, err := repo.CreateIssue(context.Background(), testTicket)
	require.NoError(t, err)

	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, 150.0, fields["customfield_10200"])
}

func TestCreateIssue_ErrorStatusIsNotAnError(t *testing.T) {
	server := newServer(t, http.StatusBadRequest, `{"errorMessages":[],"errors":{"project":"project is required"}}`, nil)

	repo := NewTrackerRepository(settingsFor(server.URL), server.Client(), zerolog.Nop())
	resp, err := repo.CreateIssue(context.Background(), testTicket)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Key)
	assert.Contains(t, string(resp.Raw), "project is required")
}

func TestCreateIssue_NonJSONBody(t *testing.T) {
	server := newServer(t, http.StatusOK, `<html>login</html>`, nil)

	repo := NewTrackerRepository(settingsFor(server.URL), server.Client(), zerolog.Nop())
	_, err := repo.CreateIssue(context.Background(), testTicket)
	assert.ErrorIs(t, err, types.ErrTicketSubmission)
}

func TestCreateIssue_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	repo := NewTrackerRepository(settingsFor(server.URL), nil, zerolog.Nop())
	_, err := repo.CreateIssue(context.Background(), testTicket)
	assert.ErrorIs(t, err, types.ErrTicketSubmission)
}
