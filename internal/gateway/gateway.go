// Package gateway issues create, read, update and delete calls against the
// remote task API and normalizes their results and failures.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nhle/tasksync/internal/model"
)

// Gateway is the set of remote operations the sync engine depends on.
type Gateway interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Create(ctx context.Context, input model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// Authenticator exchanges user credentials for a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (model.Identity, string, error)
}

// envelope is the success wrapper used by the API.
type envelope[T any] struct {
	Data T `json:"data"`
}

// listPage is one page of GET /tasks.
type listPage struct {
	Data  []model.Task `json:"data"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

// loginRequest is the body of POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response of POST /auth/login.
type loginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        model.Identity `json:"user"`
}

// HTTPGateway implements Gateway and Authenticator over the REST API.
type HTTPGateway struct {
	client   *Client
	pageSize int
}

// New creates an HTTPGateway. pageSize bounds each GET /tasks page.
func New(client *Client, pageSize int) *HTTPGateway {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &HTTPGateway{client: client, pageSize: pageSize}
}

// Authenticate logs in with email and password. It does not need an
// active session.
func (g *HTTPGateway) Authenticate(
	ctx context.Context,
	email, password string,
) (model.Identity, string, error) {
	var resp loginResponse
	err := g.client.do(ctx, http.MethodPost, "/auth/login",
		loginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return model.Identity{}, "", err
	}
	if resp.AccessToken == "" {
		return model.Identity{}, "", &APIError{
			Status:  http.StatusOK,
			Message: "login response carried no token",
		}
	}
	return resp.User, resp.AccessToken, nil
}

// List fetches every task, walking pages until the reported total is read.
// Server order is preserved.
func (g *HTTPGateway) List(ctx context.Context) ([]model.Task, error) {
	var all []model.Task
	skip := 0

	for {
		q := url.Values{}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(g.pageSize))

		var page listPage
		if err := g.client.do(ctx, http.MethodGet, "/tasks?"+q.Encode(), nil, &page, true); err != nil {
			return nil, err
		}

		all = append(all, page.Data...)
		skip += len(page.Data)

		if len(page.Data) == 0 || skip >= page.Total {
			break
		}
	}

	if all == nil {
		all = []model.Task{}
	}
	return all, nil
}

// Get fetches a single task.
func (g *HTTPGateway) Get(ctx context.Context, id string) (model.Task, error) {
	var resp envelope[model.Task]
	if err := g.client.do(ctx, http.MethodGet, taskPath(id), nil, &resp, true); err != nil {
		return model.Task{}, err
	}
	return normalize(resp.Data, "GET")
}

// Create creates a task and returns it as stored by the server.
func (g *HTTPGateway) Create(ctx context.Context, input model.TaskInput) (model.Task, error) {
	if input.Tags == nil {
		input.Tags = []string{}
	}
	var resp envelope[model.Task]
	if err := g.client.do(ctx, http.MethodPost, "/tasks", input, &resp, true); err != nil {
		return model.Task{}, err
	}
	return normalize(resp.Data, "POST")
}

// Update applies patch to the task and returns the updated task.
func (g *HTTPGateway) Update(
	ctx context.Context,
	id string,
	patch model.TaskPatch,
) (model.Task, error) {
	var resp envelope[model.Task]
	if err := g.client.do(ctx, http.MethodPut, taskPath(id), patch, &resp, true); err != nil {
		return model.Task{}, err
	}
	return normalize(resp.Data, "PUT")
}

// Delete removes the task.
func (g *HTTPGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, http.MethodDelete, taskPath(id), nil, nil, true)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// normalize rejects responses that do not identify the task.
func normalize(t model.Task, method string) (model.Task, error) {
	if t.ID == "" {
		return model.Task{}, &APIError{
			Status:  http.StatusOK,
			Message: fmt.Sprintf("%s response carried no task id", method),
		}
	}
	return t, nil
}
