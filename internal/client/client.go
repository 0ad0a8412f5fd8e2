package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	gs "github.com/mind-engage/mindengage-gradescale/internal/gradescale"
)

// Client talks to a gradescaled server. It implements gradescale.Transport
// for one course.
type Client struct {
	base     string
	courseID string
	http     *http.Client
}

type Config struct {
	BaseURL  string
	CourseID string

	// Client credentials; used when TokenURL is set.
	TokenURL     string
	ClientID     string
	ClientSecret string
	// Token is a pre-issued bearer token, e.g. from /auth/login.
	Token string

	Timeout time.Duration
}

// SaveRequest is the body of POST /gradescales/update.
type SaveRequest struct {
	CourseID   string        `json:"courseId,omitempty"`
	GradeScale gs.GradeScale `json:"gradeScale"`
}

// StatusError is a non-2xx response.
type StatusError struct {
	Op     string
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Body)
}

func New(cfg Config) *Client {
	var h *http.Client
	switch {
	case cfg.TokenURL != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(context.Background())
	case cfg.Token != "":
		h = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	default:
		h = &http.Client{}
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{base: strings.TrimSuffix(cfg.BaseURL, "/"), courseID: cfg.CourseID, http: h}
}

func (c *Client) Save(ctx context.Context, rec gs.GradeScale) (gs.GradeScale, error) {
	courseID := rec.CourseID
	if courseID == "" {
		courseID = c.courseID
	}
	var out gs.GradeScale
	if err := c.do(ctx, "save grade scale", http.MethodPost, "/gradescales/update",
		SaveRequest{CourseID: courseID, GradeScale: rec}, &out); err != nil {
		return gs.GradeScale{}, err
	}
	out.CourseID = courseID
	return out, nil
}

func (c *Client) SetCourseUseWeights(ctx context.Context, useWeights bool) error {
	if c.courseID == "" {
		return fmt.Errorf("%w: client has no course", gs.ErrInvalidArgument)
	}
	path := "/courses/" + url.PathEscape(c.courseID) + "/use-weights"
	return c.do(ctx, "set course weights", http.MethodPost, path, map[string]bool{"useWeights": useWeights}, nil)
}

func (c *Client) Get(ctx context.Context, id string) (gs.GradeScale, error) {
	var out gs.GradeScale
	err := c.do(ctx, "get grade scale", http.MethodGet, "/gradescales/"+url.PathEscape(id), nil, &out)
	return out, err
}

// List returns the scales of the client's course.
func (c *Client) List(ctx context.Context) ([]gs.GradeScale, error) {
	var out []gs.GradeScale
	err := c.do(ctx, "list grade scales", http.MethodGet, "/gradescales?course_id="+url.QueryEscape(c.courseID), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &StatusError{Op: op, Code: res.StatusCode, Status: res.Status, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
