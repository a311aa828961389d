package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"

	"github.com/rhuss/azproxy/pkg/observability"
	"github.com/rhuss/azproxy/pkg/provider/openaicompat"
	"github.com/rhuss/azproxy/pkg/transport"
)

// writerState tracks the state of a relay ResponseWriter.
type writerState int

const (
	writerIdle      writerState = iota // No writes yet
	writerRelaying                     // Headers sent, body in progress
	writerCompleted                    // Response fully written
)

// relayBufferSize is the read size for copying upstream bodies.
const relayBufferSize = 32 << 10

// relayResponseWriter implements transport.ResponseWriter on top of an
// http.ResponseWriter. Upstream responses are relayed unchanged; event
// streams are flushed after every read so chunks reach the caller as the
// upstream produces them.
type relayResponseWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu     sync.Mutex
	state  writerState
	status int
}

var _ transport.ResponseWriter = (*relayResponseWriter)(nil)

func newRelayResponseWriter(w http.ResponseWriter) *relayResponseWriter {
	return &relayResponseWriter{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// WriteUpstream relays status, end-to-end headers and body of resp and
// closes the body. An error after the headers went out can only be logged
// by the caller.
func (s *relayResponseWriter) WriteUpstream(ctx context.Context, resp *http.Response) error {
	defer resp.Body.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != writerIdle {
		return errors.New("cannot relay response: writer already used")
	}

	requestID := s.w.Header().Get(transport.RequestIDHeader)
	openaicompat.CopyResponseHeaders(s.w.Header(), resp.Header)
	if requestID != "" {
		s.w.Header().Set(transport.RequestIDHeader, requestID)
	}
	s.w.WriteHeader(resp.StatusCode)
	s.status = resp.StatusCode
	s.state = writerRelaying

	var err error
	if isEventStream(resp.Header.Get("Content-Type")) {
		done := observability.TrackStream()
		err = s.copyFlushing(ctx, resp.Body)
		done()
	} else {
		_, err = io.Copy(s.w, resp.Body)
	}

	s.state = writerCompleted
	if err != nil {
		return fmt.Errorf("relaying upstream body: %w", err)
	}
	return nil
}

// copyFlushing copies src to the caller, flushing after each read.
func (s *relayResponseWriter) copyFlushing(ctx context.Context, src io.Reader) error {
	buf := make([]byte, relayBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := s.w.Write(buf[:n]); err != nil {
				return err
			}
			if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

// WriteJSON sends v as a JSON document.
func (s *relayResponseWriter) WriteJSON(_ context.Context, status int, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != writerIdle {
		return errors.New("cannot write JSON: writer already used")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	s.w.Header().Set("Content-Type", "application/json")
	s.w.WriteHeader(status)
	s.status = status
	s.state = writerCompleted

	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// Written reports whether headers have been sent.
func (s *relayResponseWriter) Written() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != writerIdle
}

// Status returns the status that was sent, or 0.
func (s *relayResponseWriter) Status() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func isEventStream(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/event-stream"
}
