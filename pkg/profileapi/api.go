// Package profileapi is an API client for the user-profile HTTP service.
package profileapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrNotFound means the profile service has no record for the given player.
var ErrNotFound = errors.New("profile not found")

// API holds the necessary state to communicate with the profile service.
type API struct {
	http    http.Client
	baseURL string
	key     string
	limiter *rate.Limiter
}

// New creates a new authenticated, rate-limited access point to the API.
func New(baseURL, key string) *API {
	return &API{
		// We're allowed 20 requests per 10 second
		limiter: rate.NewLimiter(20/10, 1),
		baseURL: baseURL,
		key:     key,
		http: http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (api *API) getURL(subPath string, q url.Values) (string, error) {
	u, err := url.Parse(api.baseURL)
	if err != nil {
		return "", err
	}

	q.Set("key", api.key)
	u.Path = path.Join(u.Path, subPath)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// DisplayName fetches the public display name of a player, ErrNotFound when
// the player has no profile.
func (api *API) DisplayName(ctx context.Context, playerID uuid.UUID) (string, error) {
	if err := api.limiter.Wait(ctx); err != nil {
		return "", err
	}

	url, err := api.getURL("/v1/profile/"+playerID.String(), url.Values{})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	res, err := api.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("got HTTP %d from profile service", res.StatusCode)
	}

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var profile struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", err
	}

	return profile.DisplayName, nil
}
