package hikvision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_TestConnection(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "not found", status: http.StatusNotFound, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := NewClient(Config{Host: srv.URL, Username: "admin", Password: "secret"})
			err := c.TestConnection(context.Background())
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrBadStatus)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_SearchUsersPages(t *testing.T) {
	var positions []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ISAPI/AccessControl/UserInfo/Search", r.URL.Path)

		var req userSearchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		positions = append(positions, req.UserInfoSearchCond.SearchResultPosition)

		w.Header().Set("Content-Type", "application/json")
		if req.UserInfoSearchCond.SearchResultPosition == 0 {
			_, _ = w.Write([]byte(`{"UserInfoSearch":{"searchID":"1","responseStatusStrg":"MORE","numOfMatches":2,"totalMatches":3,"UserInfo":[{"employeeNo":"E01","name":"Ana"},{"employeeNo":"E02","name":"Luis"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"UserInfoSearch":{"searchID":"1","responseStatusStrg":"OK","numOfMatches":1,"totalMatches":3,"UserInfo":[{"employeeNo":"E03","name":"Marta"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Username: "admin", Password: "secret"})
	users, err := c.SearchUsers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, positions)
	assert.Equal(t, []User{
		{EmployeeNo: "E01", Name: "Ana"},
		{EmployeeNo: "E02", Name: "Luis"},
		{EmployeeNo: "E03", Name: "Marta"},
	}, users)
}
