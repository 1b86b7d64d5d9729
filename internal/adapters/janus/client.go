// Package janus allocates video rooms on a Janus media server through its
// REST API.
package janus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const videoRoomPlugin = "janus.plugin.videoroom"

var (
	ErrJanus         = errors.New("janus error")
	ErrNotConfigured = errors.New("janus url is not configured")
)

type Client struct {
	baseURL    string
	publishers int
	http       *http.Client
	newRoomID  func() int64
}

func New(baseURL string, publishers int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		publishers: publishers,
		http:       &http.Client{Timeout: timeout},
		newRoomID:  func() int64 { return 100_000_000 + rand.Int64N(900_000_000) },
	}
}

type request struct {
	Janus       string `json:"janus"`
	Transaction string `json:"transaction"`
	Plugin      string `json:"plugin,omitempty"`
	Body        any    `json:"body,omitempty"`
}

type response struct {
	Janus       string `json:"janus"`
	Transaction string `json:"transaction"`
	Data        struct {
		ID int64 `json:"id"`
	} `json:"data"`
	Error *struct {
		Code   int    `json:"code"`
		Reason string `json:"reason"`
	} `json:"error"`
	PluginData struct {
		Plugin string `json:"plugin"`
		Data   struct {
			VideoRoom string `json:"videoroom"`
			Room      int64  `json:"room"`
			ErrorCode int    `json:"error_code"`
			Error     string `json:"error"`
		} `json:"data"`
	} `json:"plugindata"`
}

type createRoom struct {
	Request     string `json:"request"`
	Room        int64  `json:"room"`
	Description string `json:"description"`
	Publishers  int    `json:"publishers"`
}

// AllocateRoom creates a session, attaches the videoroom plugin, creates a
// room with a random id and destroys the session again.
func (c *Client) AllocateRoom(ctx context.Context) (int64, error) {
	if c.baseURL == "" {
		return 0, ErrNotConfigured
	}
	logger := log.With().Str("module", "janus").Str("url", c.baseURL).Logger()

	sess, err := c.call(ctx, c.baseURL, request{Janus: "create"})
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	sessionURL := fmt.Sprintf("%s/%d", c.baseURL, sess.Data.ID)
	logger.Debug().Int64("session", sess.Data.ID).Msg("session created")
	defer c.destroy(sessionURL)

	handle, err := c.call(ctx, sessionURL, request{Janus: "attach", Plugin: videoRoomPlugin})
	if err != nil {
		return 0, fmt.Errorf("attach %s: %w", videoRoomPlugin, err)
	}
	handleURL := fmt.Sprintf("%s/%d", sessionURL, handle.Data.ID)

	roomID := c.newRoomID()
	resp, err := c.call(ctx, handleURL, request{
		Janus: "message",
		Body: createRoom{
			Request:     "create",
			Room:        roomID,
			Description: "Video Meeting Room",
			Publishers:  c.publishers,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("create room: %w", err)
	}
	pd := resp.PluginData.Data
	if pd.ErrorCode != 0 || pd.VideoRoom != "created" {
		return 0, fmt.Errorf("%w: create room: %d %s", ErrJanus, pd.ErrorCode, pd.Error)
	}
	if pd.Room != 0 {
		roomID = pd.Room
	}
	logger.Info().Int64("room", roomID).Msg("room created")
	return roomID, nil
}

func (c *Client) destroy(sessionURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.http.Timeout)
	defer cancel()
	if _, err := c.call(ctx, sessionURL, request{Janus: "destroy"}); err != nil {
		log.Warn().Err(err).Str("module", "janus").Str("url", sessionURL).Msg("destroy session")
	}
}

func (c *Client) call(ctx context.Context, url string, req request) (*response, error) {
	req.Transaction = uuid.NewString()
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrJanus, httpResp.StatusCode)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode reply: %v", ErrJanus, err)
	}
	if resp.Janus == "error" {
		if resp.Error != nil {
			return nil, fmt.Errorf("%w: %d %s", ErrJanus, resp.Error.Code, resp.Error.Reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrJanus, raw)
	}
	if resp.Transaction != req.Transaction {
		return nil, fmt.Errorf("%w: transaction mismatch", ErrJanus)
	}
	return &resp, nil
}
