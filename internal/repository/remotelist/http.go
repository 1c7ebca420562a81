package remotelist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ramana-bouquets/internal/domain"
)

// ErrUnauthorized is returned when the API rejects the caller's token.
var ErrUnauthorized = errors.New("remotelist unauthorized")

// TokenSource yields the bearer token of the signed-in user.
type TokenSource interface {
	Token() string
}

type tokenKey struct{}

// WithToken pins the bearer token for calls made with ctx. It takes
// precedence over the client's TokenSource, so a write queued for one user
// keeps that user's credentials after the session has moved on.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}

// HTTP talks to the list API served by cmd/api.
type HTTP struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

type upsertBody struct {
	Items json.RawMessage `json:"items"`
}

// recordNotFound is the error text the list API sends when the user has no
// record yet. Any other 404 means the route itself is wrong.
const recordNotFound = "not found"

type errorBody struct {
	Error string `json:"error"`
}

func NewHTTP(httpClient *http.Client, baseURL string, tokens TokenSource) *HTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTP{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:     tokens,
	}
}

func (c *HTTP) Get(ctx context.Context, list domain.ListName, userID string) (*domain.RemoteListRecord, error) {
	var out domain.RemoteListRecord
	if err := c.do(ctx, http.MethodGet, listPath(list, userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Upsert(ctx context.Context, list domain.ListName, userID string, items json.RawMessage) (*domain.RemoteListRecord, error) {
	var out domain.RemoteListRecord
	if err := c.do(ctx, http.MethodPut, listPath(list, userID), upsertBody{Items: normalizeItems(items)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func listPath(list domain.ListName, userID string) string {
	return "/v1/users/" + url.PathEscape(userID) + "/lists/" + url.PathEscape(string(list))
}

func (c *HTTP) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	token, pinned := tokenFromContext(ctx)
	if !pinned && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	switch resp.StatusCode {
	case http.StatusNotFound:
		if eb.Error == recordNotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remotelist status %d: %s %s", resp.StatusCode, method, path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		if strings.TrimSpace(eb.Error) != "" {
			return fmt.Errorf("remotelist status %d: %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("remotelist status %d", resp.StatusCode)
	}
}
