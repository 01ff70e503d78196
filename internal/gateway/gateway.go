// Package gateway is the data-access layer the UI talks through: one method
// per backend call, each normalizing failures the way the interface expects.
// Read calls collapse every failure to an empty result so views can render a
// degraded state ("no clients found") instead of crashing; write calls return
// the error so the submission flows can surface a notice.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/ecastro/clientdesk/internal/httpx"
	"github.com/ecastro/clientdesk/internal/models"
)

type Gateway struct {
	baseURL string
	client  *http.Client
}

// New builds a gateway against baseURL. The cookie jar keeps the session
// cookie set by AuthUser flowing on every later call, the way a browser would.
func New(baseURL string) (*Gateway, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar},
	}, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.client.Do(req)
}

// apiError turns a non-2xx response into an error carrying the server's
// error envelope when one is present.
func apiError(resp *http.Response) error {
	var envelope httpx.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, envelope.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

func decodeInto(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

func queryEscape(s string) string { return url.QueryEscape(s) }

// GetUser returns the public profile for email: nil without error when the
// server answers non-2xx (unknown user), an error on transport failure or a
// missing argument.
func (g *Gateway) GetUser(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	resp, err := g.do(ctx, http.MethodGet, "/user?email="+queryEscape(email), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}
	var user models.User
	if err := decodeInto(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckEmail reports whether an account already exists for email.
func (g *Gateway) CheckEmail(ctx context.Context, email string) bool {
	user, err := g.GetUser(ctx, email)
	return err == nil && user != nil
}

func (g *Gateway) PostUser(ctx context.Context, name, email, password string) error {
	resp, err := g.do(ctx, http.MethodPost, "/user", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}
	return nil
}

// AuthUser checks credentials and captures the session cookie on success.
// Unlike the other calls it propagates transport errors to the caller; a plain
// rejection is (false, nil).
func (g *Gateway) AuthUser(ctx context.Context, email, password string) (bool, error) {
	resp, err := g.do(ctx, http.MethodGet,
		"/auth?email="+queryEscape(email)+"&password="+queryEscape(password), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (g *Gateway) Logout(ctx context.Context) error {
	resp, err := g.do(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// GetClients returns the authenticated user's clients. Any failure yields an
// empty slice, never an error.
func (g *Gateway) GetClients(ctx context.Context) []models.Client {
	resp, err := g.do(ctx, http.MethodGet, "/clients", nil)
	if err != nil {
		return []models.Client{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return []models.Client{}
	}
	var clients []models.Client
	if err := decodeInto(resp, &clients); err != nil {
		return []models.Client{}
	}
	return clients
}

// PostClient submits a client and returns it with the generated id filled in.
func (g *Gateway) PostClient(ctx context.Context, c models.Client) (*models.Client, error) {
	resp, err := g.do(ctx, http.MethodPost, "/client", c)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}
	var created struct {
		ClientID uint `json:"clientId"`
	}
	if err := decodeInto(resp, &created); err != nil {
		return nil, err
	}
	c.ID = created.ClientID
	return &c, nil
}

func (g *Gateway) UpdateClient(ctx context.Context, id uint, patch any) (*models.Client, error) {
	resp, err := g.do(ctx, http.MethodPut, fmt.Sprintf("/client/%d", id), patch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var client models.Client
	if err := decodeInto(resp, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient removes a client; the server cascades the delete to every
// dependent of that client.
func (g *Gateway) DeleteClient(ctx context.Context, id uint) error {
	resp, err := g.do(ctx, http.MethodDelete, fmt.Sprintf("/client/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// GetDependents lists a client's dependents; empty on any failure.
func (g *Gateway) GetDependents(ctx context.Context, clientID uint) []models.Dependent {
	resp, err := g.do(ctx, http.MethodGet, fmt.Sprintf("/dependents?clientid=%d", clientID), nil)
	if err != nil {
		return []models.Dependent{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return []models.Dependent{}
	}
	var dependents []models.Dependent
	if err := decodeInto(resp, &dependents); err != nil {
		return []models.Dependent{}
	}
	return dependents
}

func (g *Gateway) PostDependent(ctx context.Context, d models.Dependent) (*models.Dependent, error) {
	resp, err := g.do(ctx, http.MethodPost, "/dependent", d)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}
	var created struct {
		DependentID uint `json:"dependentId"`
	}
	if err := decodeInto(resp, &created); err != nil {
		return nil, err
	}
	d.ID = created.DependentID
	return &d, nil
}

func (g *Gateway) UpdateDependent(ctx context.Context, id uint, patch any) (*models.Dependent, error) {
	resp, err := g.do(ctx, http.MethodPut, fmt.Sprintf("/dependent/%d", id), patch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var dep models.Dependent
	if err := decodeInto(resp, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

func (g *Gateway) DeleteDependent(ctx context.Context, id uint) error {
	resp, err := g.do(ctx, http.MethodDelete, fmt.Sprintf("/dependent/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// GetReminders lists the user's reminders; empty on any failure.
func (g *Gateway) GetReminders(ctx context.Context) []models.Reminder {
	resp, err := g.do(ctx, http.MethodGet, "/reminders", nil)
	if err != nil {
		return []models.Reminder{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return []models.Reminder{}
	}
	var reminders []models.Reminder
	if err := decodeInto(resp, &reminders); err != nil {
		return []models.Reminder{}
	}
	return reminders
}

func (g *Gateway) PostReminder(ctx context.Context, title string) (*models.Reminder, error) {
	resp, err := g.do(ctx, http.MethodPost, "/reminder", map[string]string{"title": title})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}
	var reminder models.Reminder
	if err := decodeInto(resp, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (g *Gateway) UpdateReminder(ctx context.Context, id uint, patch any) (*models.Reminder, error) {
	resp, err := g.do(ctx, http.MethodPut, fmt.Sprintf("/reminder/%d", id), patch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var reminder models.Reminder
	if err := decodeInto(resp, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (g *Gateway) DeleteReminder(ctx context.Context, id uint) error {
	resp, err := g.do(ctx, http.MethodDelete, fmt.Sprintf("/reminder/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}
