package hikvision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/icholy/digest"
	"github.com/sony/gobreaker"
)

const (
	deviceInfoPath  = "/ISAPI/System/deviceInfo"
	statusPath      = "/ISAPI/System/status"
	alertStreamPath = "/ISAPI/Event/notification/alertStream"
	userSearchPath  = "/ISAPI/AccessControl/UserInfo/Search?format=json"

	userSearchPageSize = 30
)

var (
	ErrUnreachable = errors.New("device unreachable")
	ErrBadStatus   = errors.New("unexpected device response status")
)

// Config holds the device address and credentials.
type Config struct {
	Host     string
	Username string
	Password string
	// Timeout bounds non-streaming requests. Defaults to 10 seconds.
	Timeout time.Duration
}

// Client talks to a Hikvision access-control terminal over ISAPI using HTTP
// digest authentication.
type Client struct {
	baseURL string
	// http serves bounded requests; stream has no timeout for alertStream.
	http    *http.Client
	stream  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.Host, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	transport := &digest.Transport{
		Username: cfg.Username,
		Password: cfg.Password,
	}

	settings := gobreaker.Settings{
		Name:        "hikvision-isapi",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		stream:  &http.Client{Transport: transport},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// TestConnection probes the device. A 200 or 401 on either status endpoint
// proves the device is reachable.
func (c *Client) TestConnection(ctx context.Context) error {
	var lastErr error
	for _, path := range []string{deviceInfoPath, statusPath} {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return nil, err
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %s returned %d", ErrBadStatus, path, resp.StatusCode)
		})
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

type userSearchRequest struct {
	UserInfoSearchCond userSearchCond `json:"UserInfoSearchCond"`
}

type userSearchCond struct {
	SearchID             string `json:"searchID"`
	MaxResults           int    `json:"maxResults"`
	SearchResultPosition int    `json:"searchResultPosition"`
}

type userSearchResponse struct {
	UserInfoSearch struct {
		SearchID           string `json:"searchID"`
		ResponseStatusStrg string `json:"responseStatusStrg"`
		NumOfMatches       int    `json:"numOfMatches"`
		TotalMatches       int    `json:"totalMatches"`
		UserInfo           []struct {
			EmployeeNo string `json:"employeeNo"`
			Name       string `json:"name"`
		} `json:"UserInfo"`
	} `json:"UserInfoSearch"`
}

// User is a person enrolled on the device.
type User struct {
	EmployeeNo string
	Name       string
}

// SearchUsers pages through every user enrolled on the device.
func (c *Client) SearchUsers(ctx context.Context) ([]User, error) {
	var users []User
	position := 0
	for {
		page, err := c.searchUsersPage(ctx, position)
		if err != nil {
			return nil, err
		}
		result := page.UserInfoSearch
		for _, u := range result.UserInfo {
			users = append(users, User{EmployeeNo: u.EmployeeNo, Name: u.Name})
		}
		position += result.NumOfMatches

		if result.ResponseStatusStrg != "MORE" || result.NumOfMatches == 0 {
			return users, nil
		}
		if result.TotalMatches > 0 && position >= result.TotalMatches {
			return users, nil
		}
	}
}

func (c *Client) searchUsersPage(ctx context.Context, position int) (userSearchResponse, error) {
	body, err := json.Marshal(userSearchRequest{UserInfoSearchCond: userSearchCond{
		SearchID:             "1",
		MaxResults:           userSearchPageSize,
		SearchResultPosition: position,
	}})
	if err != nil {
		return userSearchResponse{}, err
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+userSearchPath, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: user search returned %d", ErrBadStatus, resp.StatusCode)
		}

		var page userSearchResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return nil, fmt.Errorf("failed to decode user search: %w", err)
		}
		return page, nil
	})
	if err != nil {
		return userSearchResponse{}, err
	}
	return out.(userSearchResponse), nil
}
