package client

import (
	"context"
	"fmt"
	"net/http"

	"commerce-console/internal/errs"
	"commerce-console/internal/models"
)

const authService = "auth"

// Users talks to the auth/user service. Login and register run
// unauthenticated; everything else carries the bearer token it is given.
type Users struct {
	baseURL string
	hc      *http.Client
}

// NewUsers creates a user client for the given base URL.
func NewUsers(baseURL string, hc *http.Client) *Users {
	if hc == nil {
		hc = DefaultHTTPClient()
	}
	return &Users{baseURL: baseURL, hc: hc}
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type userUpdatePayload struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Login exchanges credentials for a bearer token.
func (c *Users) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errs.Validation("credentials", "username and password are required")
	}

	var resp loginResponse
	err := doJSON(ctx, c.hc, authService, http.MethodPost,
		c.baseURL+"/login", "",
		credentialsPayload{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%s: login response carried no token", authService)
	}
	return resp.Token, nil
}

// Register creates a new account.
func (c *Users) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errs.Validation("credentials", "username and password are required")
	}

	var user models.User
	err := doJSON(ctx, c.hc, authService, http.MethodPost,
		c.baseURL+"/register", "",
		credentialsPayload{Username: username, Password: password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List fetches every user; requires a bearer token.
func (c *Users) List(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	err := doJSON(ctx, c.hc, authService, http.MethodGet,
		c.baseURL+"/users", token, nil, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches one user by id; requires a bearer token.
func (c *Users) Get(ctx context.Context, token string, id int64) (*models.User, error) {
	var user models.User
	err := doJSON(ctx, c.hc, authService, http.MethodGet,
		fmt.Sprintf("%s/users/%d", c.baseURL, id), token, nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update changes the provided fields of a user; requires a bearer token.
func (c *Users) Update(ctx context.Context, token string, id int64, d models.UserDraft) (*models.User, error) {
	if d.Username == "" && d.Email == "" && d.Password == "" {
		return nil, errs.Validation("user", "provide at least one field to update")
	}

	var user models.User
	err := doJSON(ctx, c.hc, authService, http.MethodPut,
		fmt.Sprintf("%s/users/%d", c.baseURL, id), token,
		userUpdatePayload{Username: d.Username, Email: d.Email, Password: d.Password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the user by id; requires a bearer token.
func (c *Users) Delete(ctx context.Context, token string, id int64) error {
	return doJSON(ctx, c.hc, authService, http.MethodDelete,
		fmt.Sprintf("%s/users/%d", c.baseURL, id), token, nil, nil)
}
