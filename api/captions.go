package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// CaptionConfig configures a live caption stream. Captions are a preview
// shown while recording; the recorded file is still uploaded and transcribed
// in full afterwards.
type CaptionConfig struct {
	// Language is an optional ISO-639-1 hint for the input audio
	Language string

	// OnCaption is called for each caption segment received
	OnCaption func(text string, isFinal bool)

	// OnError is called when the stream fails
	OnError func(err error)
}

// CaptionStream is a WebSocket connection to the server's live caption
// endpoint. Audio frames go up; interim caption text comes down.
type CaptionStream struct {
	config *CaptionConfig

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
}

type captionInitMessage struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
}

type captionResponse struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	IsFinal bool   `json:"is_final,omitempty"`
	Message string `json:"message,omitempty"`
}

// OpenCaptionStream connects to the live caption endpoint and starts
// delivering captions to the config callbacks. Close releases the
// connection; it is safe to call on every exit path.
func (c *Client) OpenCaptionStream(ctx context.Context, config *CaptionConfig) (*CaptionStream, error) {
	if config == nil {
		config = &CaptionConfig{}
	}

	url := websocketURL(c.baseURL) + "/api/captions/live"
	c.logger.Debug("connecting caption stream", "url", url)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("caption stream connection failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("caption stream connection failed: %w", err)
	}

	s := &CaptionStream{config: config, conn: conn, connected: true}

	init := captionInitMessage{Type: "init", Language: config.Language}
	if err := conn.WriteJSON(init); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to send init message: %w", err)
	}

	go s.readCaptions()
	return s, nil
}

func (s *CaptionStream) readCaptions() {
	defer func() {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		conn, closed := s.conn, s.closed
		s.mu.Unlock()
		if closed || conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed, onError := s.closed, s.config.OnError
			s.mu.Unlock()
			if onError != nil && !closed {
				onError(fmt.Errorf("caption stream read error: %w", err))
			}
			return
		}

		var resp captionResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			if s.config.OnError != nil {
				s.config.OnError(fmt.Errorf("failed to parse caption: %w", err))
			}
			continue
		}

		switch resp.Type {
		case "caption":
			if s.config.OnCaption != nil {
				s.config.OnCaption(resp.Text, resp.IsFinal)
			}
		case "error":
			if s.config.OnError != nil {
				s.config.OnError(&APIError{Message: resp.Message})
			}
		}
	}
}

// SendAudio sends one frame of captured audio.
func (s *CaptionStream) SendAudio(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.conn == nil {
		return fmt.Errorf("caption stream not connected")
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close tears down the connection. Safe to call more than once.
func (s *CaptionStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// IsConnected reports whether the stream is still live.
func (s *CaptionStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// websocketURL converts an http(s) base URL to its ws(s) equivalent.
func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}
