package twchart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calvinmclean/babyapi"
	"github.com/calvinmclean/twchart"
	"github.com/google/uuid"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

var ErrNoSession = errors.New("no session created")

// Client records a manipulator session on a TWChart server. Every accepted command becomes an
// event on the session
type Client struct {
	client    *babyapi.Client[*session]
	sessionID string
}

type session struct {
	// include NilResource so we don't implement Render/Bind which are not needed
	*babyapi.NilResource
	twchart.Session
}

func (s session) GetID() string {
	return s.Session.GetID()
}

func NewClient(addr string) *Client {
	client := babyapi.NewClient[*session](addr, "/sessions")
	return &Client{client: client}
}

// SessionID is the ID returned by CreateSession
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) CreateSession(ctx context.Context, name string) (string, error) {
	resp, err := c.client.Post(ctx, &session{
		Session: twchart.Session{
			Name: name,
			Date: time.Now(),
		},
	})
	if err != nil {
		return "", err
	}

	c.sessionID = resp.Data.GetID()

	return resp.Data.GetID(), nil
}

func (c *Client) SetStartTime(ctx context.Context, startTime time.Time) error {
	if c.sessionID == "" {
		return ErrNoSession
	}
	_, err := c.client.Patch(ctx, c.sessionID, &session{Session: twchart.Session{
		StartTime: startTime,
	}})
	return err
}

func (c *Client) AddEvent(ctx context.Context, note string, now time.Time) error {
	return c.post(ctx, "add-event", twchart.Event{Note: note, Time: now})
}

func (c *Client) AddStage(ctx context.Context, name string, now time.Time) error {
	return c.post(ctx, "add-stage", twchart.Stage{Name: name, Start: now})
}

// Done closes the session. The session ID is kept so it can still be reported
func (c *Client) Done(ctx context.Context) error {
	return c.post(ctx, "done", struct {
		Time time.Time `json:"time"`
	}{time.Now()})
}

// post sends body as JSON to an action endpoint of the current session
func (c *Client) post(ctx context.Context, action string, body any) error {
	if c.sessionID == "" {
		return ErrNoSession
	}

	base, err := c.client.URL(c.sessionID)
	if err != nil {
		return fmt.Errorf("error building %s url: %w", action, err)
	}

	var buf bytes.Buffer
	err = json.NewEncoder(&buf).Encode(body)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/"+action, &buf)
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.MakeGenericRequest(req, nil)
	if err != nil {
		return fmt.Errorf("error sending %s: %w", action, err)
	}

	switch resp.Response.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	default:
		return fmt.Errorf("%s: unexpected status code %d: %v", action, resp.Response.StatusCode, resp.Body)
	}
}

// Move is one accepted command as it is recorded on the session
type Move struct {
	ID      uuid.UUID
	Command string
	Steps   elbowdriver.StepVector
}

// NewMove gives the command a fresh ID so device logs and chart events can be matched up
func NewMove(command string, steps elbowdriver.StepVector) Move {
	return Move{ID: uuid.New(), Command: command, Steps: steps}
}

// Note is the event text: "move <id>: <command> [<steps>]"
func (m Move) Note() string {
	return fmt.Sprintf("move %s: %s [%s]", m.ID, m.Command, m.Steps)
}
