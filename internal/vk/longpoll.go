package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// Long poll update codes and flags we care about
const (
	updateNewMessage = 4
	flagOutbox       = 2

	// peer ids above this belong to group chats, not private dialogs
	chatPeerOffset = 2000000000

	longPollWait = 25
)

// Event is one inbound user message
type Event struct {
	UserID int64
	Text   string
}

type lpServer struct {
	Key    string `json:"key"`
	Server string `json:"server"`
	TS     int64  `json:"ts"`
}

type lpResponse struct {
	TS      int64             `json:"ts"`
	Failed  int               `json:"failed"`
	Updates []json.RawMessage `json:"updates"`
}

// LongPoller consumes the VK long poll stream and yields inbound messages
type LongPoller struct {
	client *Client
	logger *zap.Logger
}

// NewLongPoller creates a poller on top of the given client's token
func NewLongPoller(client *Client, logger *zap.Logger) *LongPoller {
	return &LongPoller{client: client, logger: logger}
}

// Run polls for updates until the context is canceled, sending inbound user
// messages to events. Key expiry and history loss are re-synced in place.
func (lp *LongPoller) Run(ctx context.Context, events chan<- Event) error {
	server, err := lp.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to long poll: %w", err)
	}
	lp.logger.Info("long poll connected")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := lp.poll(ctx, server)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lp.logger.Warn("long poll request failed", zap.Error(err))
			continue
		}

		switch resp.Failed {
		case 0:
			server.TS = resp.TS
		case 1:
			// History is out of date, only the ts needs refreshing
			server.TS = resp.TS
			continue
		default:
			// Key expired or lost, reconnect from scratch
			lp.logger.Warn("long poll key expired, reconnecting")
			server, err = lp.connect(ctx)
			if err != nil {
				return fmt.Errorf("failed to reconnect to long poll: %w", err)
			}
			continue
		}

		for _, raw := range resp.Updates {
			event, ok := parseMessageUpdate(raw)
			if !ok {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (lp *LongPoller) connect(ctx context.Context) (*lpServer, error) {
	var server lpServer
	if err := lp.client.call(ctx, "messages.getLongPollServer", url.Values{}, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

func (lp *LongPoller) poll(ctx context.Context, server *lpServer) (*lpResponse, error) {
	params := url.Values{}
	params.Set("act", "a_check")
	params.Set("key", server.Key)
	params.Set("ts", strconv.FormatInt(server.TS, 10))
	params.Set("wait", strconv.Itoa(longPollWait))
	params.Set("mode", "2")
	params.Set("version", "3")

	endpoint := "https://" + server.Server + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poll request: %w", err)
	}

	resp, err := lp.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read poll response: %w", err)
	}

	var decoded lpResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return &decoded, nil
}

// parseMessageUpdate extracts an inbound private message from a raw long
// poll update: [4, message_id, flags, peer_id, timestamp, text, ...].
func parseMessageUpdate(raw json.RawMessage) (Event, bool) {
	var fields []interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) < 6 {
		return Event{}, false
	}

	code, ok := fields[0].(float64)
	if !ok || int(code) != updateNewMessage {
		return Event{}, false
	}

	flags, ok := fields[2].(float64)
	if !ok || int(flags)&flagOutbox != 0 {
		return Event{}, false
	}

	peerID, ok := fields[3].(float64)
	if !ok || int64(peerID) >= chatPeerOffset {
		return Event{}, false
	}

	text, ok := fields[5].(string)
	if !ok {
		return Event{}, false
	}

	return Event{UserID: int64(peerID), Text: text}, true
}
