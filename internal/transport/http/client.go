package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/poll"
)

// Client is the typed player-side API client. It maps error codes back to the
// domain taxonomy so the polling synchronizer can tell "session gone" from a
// transient failure.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Join registers a player and returns the server-generated player id.
func (c *Client) Join(ctx context.Context, sessionID int64, name string) (string, error) {
	var out struct {
		PlayerID string `json:"playerId"`
	}
	path := "/play/join/" + strconv.FormatInt(sessionID, 10)
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"name": name}, &out); err != nil {
		return "", err
	}
	return out.PlayerID, nil
}

func (c *Client) Started(ctx context.Context, playerID string) (bool, error) {
	var out struct {
		Started bool `json:"started"`
	}
	if err := c.do(ctx, http.MethodGet, "/play/"+playerID+"/status", nil, &out); err != nil {
		return false, err
	}
	return out.Started, nil
}

func (c *Client) Question(ctx context.Context, playerID string) (app.ActiveQuestion, error) {
	var out app.ActiveQuestion
	err := c.do(ctx, http.MethodGet, "/play/"+playerID+"/question", nil, &out)
	return out, err
}

func (c *Client) SubmitAnswer(ctx context.Context, playerID string, answers []string) error {
	body := map[string][]string{"answers": answers}
	return c.do(ctx, http.MethodPut, "/play/"+playerID+"/answer", body, nil)
}

func (c *Client) RevealedAnswers(ctx context.Context, playerID string) ([]string, error) {
	var out struct {
		Answers []string `json:"answers"`
	}
	if err := c.do(ctx, http.MethodGet, "/play/"+playerID+"/answer", nil, &out); err != nil {
		return nil, err
	}
	return out.Answers, nil
}

func (c *Client) Results(ctx context.Context, playerID string) (domain.PlayerResult, error) {
	var out domain.PlayerResult
	err := c.do(ctx, http.MethodGet, "/play/"+playerID+"/results", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorBody
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return decodeError(apiErr)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(body errorBody) error {
	for _, entry := range errorCodes {
		if entry.code == body.Code {
			if body.Error != "" && body.Error != entry.err.Error() {
				return fmt.Errorf("%w: %s", entry.err, body.Error)
			}
			return entry.err
		}
	}
	return errors.New(body.Error)
}

// PlayerFetcher adapts the client to poll.Fetcher for one joined player.
type PlayerFetcher struct {
	client   *Client
	playerID string
}

func NewPlayerFetcher(client *Client, playerID string) *PlayerFetcher {
	return &PlayerFetcher{client: client, playerID: playerID}
}

func (f *PlayerFetcher) Snapshot(ctx context.Context) (poll.Snapshot, error) {
	started, err := f.client.Started(ctx, f.playerID)
	if err != nil {
		return poll.Snapshot{}, err
	}
	if !started {
		return poll.Snapshot{Started: false, Position: -1}, nil
	}
	question, err := f.client.Question(ctx, f.playerID)
	if err != nil {
		// Started but no live question: every question has been played and
		// the admin has yet to END. Keep polling.
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return poll.Snapshot{Started: true, Position: -1}, nil
		}
		return poll.Snapshot{}, err
	}
	return poll.Snapshot{
		Started:   true,
		Position:  question.Position,
		Duration:  question.Duration,
		StartedAt: question.StartedAt,
		Question:  question.Question,
	}, nil
}

func (f *PlayerFetcher) RevealedAnswers(ctx context.Context) ([]string, error) {
	return f.client.RevealedAnswers(ctx, f.playerID)
}
