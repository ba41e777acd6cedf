// Package transport talks to the chatbot backend over its JSON HTTP API.
package transport

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

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Periods accepted by Schedule.
const (
	PeriodToday    = "today"
	PeriodTomorrow = "tomorrow"
)

const maxErrorBody = 4 << 10

// BackendError is a failure the backend reported in its response body. The
// message is meant for the user.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// StatusError is a non-2xx response without a usable error message.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout bounds every request. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send submits a user message and returns the backend's answer.
func (c *Client) Send(ctx context.Context, text string, settings models.Settings) (Reply, error) {
	req := chatRequest{
		Message:   text,
		Agent:     settings.Agent,
		AgentType: settings.Agent,
		Language:  settings.Language,
	}
	var resp chatResponse
	status, err := c.do(ctx, http.MethodPost, "/api/chat", req, &resp)
	if err != nil {
		return Reply{}, err
	}
	if resp.Error != "" || (resp.Success != nil && !*resp.Success) {
		msg := resp.Error
		if msg == "" {
			msg = "request failed"
		}
		return Reply{}, &BackendError{Status: status, Message: msg}
	}

	id := resp.QueryID
	if id == "" {
		id = resp.MessageID
	}
	c.logger.Debug("Chat reply received",
		zap.String("id", string(id)),
		zap.String("agent", resp.AgentName),
		zap.String("language", settings.Language))
	return Reply{Text: resp.Response, ID: string(id), Agent: resp.AgentName}, nil
}

// SendRating records a like or dislike for an answered message.
func (c *Client) SendRating(ctx context.Context, id string, rating models.Rating) error {
	var resp rateResponse
	status, err := c.do(ctx, http.MethodPost, "/api/rate/"+url.PathEscape(id), rateRequest{Rating: string(rating)}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "rating rejected"
		}
		return &BackendError{Status: status, Message: msg}
	}
	return nil
}

// Health returns nil when the backend answers its health probe.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/health", nil, nil)
	return err
}

// Groups lists the groups that have a timetable.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var resp groupsResponse
	if err := c.get(ctx, "/api/schedule/groups", &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

// Schedule returns today's or tomorrow's lessons for a group.
func (c *Client) Schedule(ctx context.Context, period, group string) (DaySchedule, error) {
	if period != PeriodToday && period != PeriodTomorrow {
		return DaySchedule{}, errors.Errorf("unknown schedule period %q", period)
	}
	var resp dayResponse
	if err := c.get(ctx, "/api/schedule/"+period+"/"+url.PathEscape(group), &resp, &resp.envelope); err != nil {
		return DaySchedule{}, err
	}
	return resp.DaySchedule, nil
}

// ScheduleOn returns the lessons of a group on a given day.
func (c *Client) ScheduleOn(ctx context.Context, group string, day time.Time) (DaySchedule, error) {
	var resp dayResponse
	path := "/api/schedule/date/" + url.PathEscape(group) + "/" + day.Format("2006-01-02")
	if err := c.get(ctx, path, &resp, &resp.envelope); err != nil {
		return DaySchedule{}, err
	}
	return resp.DaySchedule, nil
}

// Week returns the current week's lessons for a group, keyed by date.
func (c *Client) Week(ctx context.Context, group string) (WeekSchedule, error) {
	var resp weekResponse
	if err := c.get(ctx, "/api/schedule/week/"+url.PathEscape(group), &resp, &resp.envelope); err != nil {
		return WeekSchedule{}, err
	}
	return resp.WeekSchedule, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}, env *envelope) error {
	status, err := c.do(ctx, http.MethodGet, path, nil, out)
	if err != nil {
		return err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request failed"
		}
		return &BackendError{Status: status, Message: msg}
	}
	return nil
}

// do performs a JSON request. Non-2xx responses whose body carries an
// "error" field become a BackendError, others a StatusError.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			return resp.StatusCode, &BackendError{Status: resp.StatusCode, Message: env.Error}
		}
		return resp.StatusCode, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrapf(err, "decode %s response", path)
	}
	return resp.StatusCode, nil
}
