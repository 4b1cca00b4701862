package ipc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Commands understood by the running instance.
const (
	CommandToggle = "toggle"
	CommandShow   = "show"
	CommandPing   = "ping"
)

// EndpointEnv overrides the default endpoint when it passes validation.
const EndpointEnv = "FREECASTNOTES_IPC"

// Request is a single command sent by a second instance.
type Request struct {
	ID      string `json:"id"`
	Command string `json:"command"`
}

// Response acknowledges a Request. Error is set when OK is false.
type Response struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewRequest returns a request for command with a fresh correlation ID.
func NewRequest(command string) Request {
	return Request{ID: uuid.NewString(), Command: command}
}

// Handler executes a request on the running instance.
type Handler interface {
	Handle(req Request) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req Request) Response

// Handle calls f(req).
func (f HandlerFunc) Handle(req Request) Response { return f(req) }

// CommandHandler routes requests by command name. Unknown commands get an
// error response.
type CommandHandler map[string]func() error

// Handle runs the function registered for req.Command.
func (h CommandHandler) Handle(req Request) Response {
	fn, ok := h[req.Command]
	if !ok {
		return Response{ID: req.ID, Error: "unknown command: " + req.Command}
	}
	if err := fn(); err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, OK: true}
}

// DefaultEndpoint returns the per-user endpoint, honoring EndpointEnv when
// it matches the platform's allowed pattern.
func DefaultEndpoint() string {
	if v := strings.TrimSpace(os.Getenv(EndpointEnv)); v != "" {
		if endpointPattern.MatchString(v) {
			return v
		}
		slog.Warn("[ipc] endpoint override rejected: value does not match allowed pattern", "env", EndpointEnv, "value", v)
	}
	return defaultEndpoint()
}

func encodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}
	if strings.TrimSpace(req.Command) == "" {
		return Request{}, errors.New("command is required")
	}
	return req, nil
}

func encodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

func decodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
