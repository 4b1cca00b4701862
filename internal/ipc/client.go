package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"time"
)

const (
	defaultDialTimeout = 2 * time.Second
	defaultRWTimeout   = 5 * time.Second
	maxResponseBytes   = 4 * 1024
)

// dialFn is replaced in tests.
var dialFn = dial

// Send delivers one request and waits for its response. An empty endpoint
// selects DefaultEndpoint.
func Send(endpoint string, req Request) (Response, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint()
	}

	conn, err := dialFn(endpoint, defaultDialTimeout)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(defaultRWTimeout)); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}

	rawReq, err := encodeRequest(req)
	if err != nil {
		return Response{}, err
	}
	if _, err := conn.Write(append(rawReq, '\n')); err != nil {
		return Response{}, err
	}

	rawResp, err := readDelimitedFrame(bufio.NewReaderSize(conn, maxResponseBytes+1), maxResponseBytes)
	if err != nil {
		return Response{}, err
	}
	resp, err := decodeResponse(rawResp)
	if err != nil {
		return Response{}, fmt.Errorf("invalid response: %w", err)
	}
	if resp.ID != "" && req.ID != "" && resp.ID != req.ID {
		return Response{}, fmt.Errorf("response id %q does not match request id %q", resp.ID, req.ID)
	}
	return resp, nil
}

// SendCommand sends command with a fresh request ID and converts a negative
// acknowledgement into an error.
func SendCommand(endpoint, command string) error {
	resp, err := Send(endpoint, NewRequest(command))
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%s rejected: %s", command, resp.Error)
	}
	return nil
}

func readDelimitedFrame(reader *bufio.Reader, maxBytes int) ([]byte, error) {
	raw, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("frame exceeds %d bytes", maxBytes)
	}
	if errors.Is(err, io.EOF) {
		if len(raw) == 0 {
			return nil, io.EOF
		}
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// IsConnectionError reports whether err means no instance is listening.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "open"
	}
	return false
}
