// Package vk implements the VK API boundary: the profile search gateway,
// outbound messages and the long poll event source.
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/Rom2555/VK-BOT/internal/domain"
)

const (
	defaultBaseURL = "https://api.vk.com/method"
	apiVersion     = "5.199"

	// VK error code for rate limiting
	errTooManyRequests = 6
)

// Client is a thin VK API client bound to one access token
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the given access token
func NewClient(token string, logger *zap.Logger) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// NewClientWithBaseURL creates a client pointed at a custom API endpoint.
// Used by tests to swap in a stub server.
func NewClientWithBaseURL(token, baseURL string, logger *zap.Logger) *Client {
	c := NewClient(token, logger)
	c.baseURL = baseURL
	return c
}

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *apiError       `json:"error"`
}

// call invokes one VK method and decodes the response payload into out.
// Transient failures (network errors, 5xx, rate limiting) are retried with
// a short fibonacci backoff.
func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	params.Set("access_token", c.token)
	params.Set("v", apiVersion)

	endpoint := c.baseURL + "/" + method + "?" + params.Encode()

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to build request for %s: %w", method, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%s request failed: %w", method, err))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("failed to read %s response: %w", method, err))
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("%s returned status %d", method, resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, body)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", method, err)
		}
		if env.Error != nil {
			if env.Error.Code == errTooManyRequests {
				return retry.RetryableError(env.Error)
			}
			return env.Error
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(env.Response, out); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", method, err)
		}
		return nil
	})
}

// FindCities returns city records matching the typed name
func (c *Client) FindCities(ctx context.Context, query string) ([]domain.City, error) {
	params := url.Values{}
	params.Set("country_id", "1")
	params.Set("q", query)
	params.Set("count", "10")

	var payload struct {
		Items []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	}
	if err := c.call(ctx, "database.getCities", params, &payload); err != nil {
		return nil, err
	}

	cities := make([]domain.City, 0, len(payload.Items))
	for _, item := range payload.Items {
		cities = append(cities, domain.City{ID: item.ID, Title: item.Title})
	}
	return cities, nil
}

// SearchProfiles returns open profiles matching the criteria. Profiles that
// are closed to the searching account are filtered out.
func (c *Client) SearchProfiles(ctx context.Context, req domain.SearchRequest) ([]domain.Profile, error) {
	params := url.Values{}
	params.Set("age_from", strconv.Itoa(req.AgeFrom))
	params.Set("age_to", strconv.Itoa(req.AgeTo))
	params.Set("sex", strconv.Itoa(int(req.Sex)))
	params.Set("city", strconv.FormatInt(req.CityID, 10))
	params.Set("has_photo", "1")
	params.Set("count", strconv.Itoa(req.Count))
	params.Set("offset", strconv.Itoa(req.Offset))
	params.Set("fields", "bdate,city,sex,is_closed,can_access_closed")

	var payload struct {
		Items []struct {
			ID              int64  `json:"id"`
			FirstName       string `json:"first_name"`
			LastName        string `json:"last_name"`
			IsClosed        bool   `json:"is_closed"`
			CanAccessClosed bool   `json:"can_access_closed"`
		} `json:"items"`
	}
	if err := c.call(ctx, "users.search", params, &payload); err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.IsClosed && !item.CanAccessClosed {
			continue
		}
		profiles = append(profiles, domain.Profile{
			ID:        item.ID,
			FirstName: item.FirstName,
			LastName:  item.LastName,
		})
	}
	return profiles, nil
}

// TopPhotos returns up to three profile photo references ranked by
// likes plus comments, descending, formatted as attachable photo IDs.
func (c *Client) TopPhotos(ctx context.Context, ownerID int64) ([]string, error) {
	params := url.Values{}
	params.Set("owner_id", strconv.FormatInt(ownerID, 10))
	params.Set("album_id", "profile")
	params.Set("extended", "1")
	params.Set("count", "30")

	var payload struct {
		Items []struct {
			ID    int64 `json:"id"`
			Likes struct {
				Count int `json:"count"`
			} `json:"likes"`
			Comments struct {
				Count int `json:"count"`
			} `json:"comments"`
		} `json:"items"`
	}
	if err := c.call(ctx, "photos.get", params, &payload); err != nil {
		return nil, err
	}

	items := payload.Items
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Likes.Count+items[i].Comments.Count >
			items[j].Likes.Count+items[j].Comments.Count
	})

	top := items
	if len(top) > 3 {
		top = top[:3]
	}

	photos := make([]string, 0, len(top))
	for _, item := range top {
		photos = append(photos, fmt.Sprintf("photo%d_%d", ownerID, item.ID))
	}
	return photos, nil
}

// SendMessage sends a chat message to the user. Attachments and keyboard
// are optional; delivery is fire-and-forget from the caller's perspective.
func (c *Client) SendMessage(ctx context.Context, userID int64, text, attachment, keyboard string) error {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("random_id", strconv.FormatInt(rand.Int63(), 10))
	params.Set("message", text)
	if attachment != "" {
		params.Set("attachment", attachment)
	}
	if keyboard != "" {
		params.Set("keyboard", keyboard)
	}

	return c.call(ctx, "messages.send", params, nil)
}
