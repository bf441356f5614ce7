package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-restaurant-sync/internal/model"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Remote talks to the document server: HTTP for get/put and a websocket per
// subscription.
type Remote struct {
	baseURL   string
	timeout   time.Duration
	reconnect time.Duration
	dialer    *websocket.Dialer
}

func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   10 * time.Second,
		reconnect: time.Second,
		dialer:    websocket.DefaultDialer,
	}
}

// SetReconnectDelay sets the pause between websocket redials.
func (r *Remote) SetReconnectDelay(d time.Duration) {
	r.reconnect = d
}

func (r *Remote) documentURL(key string) string {
	return r.baseURL + "/api/v1/documents/" + url.PathEscape(key)
}

func (r *Remote) subscribeURL(key string) (string, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/documents/" + url.PathEscape(key)
	return u.String(), nil
}

func (r *Remote) Get(ctx context.Context, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	agent := fiber.Get(r.documentURL(key)).Timeout(r.timeout)
	if err := agent.Parse(); err != nil {
		return Document{}, err
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return Document{}, fmt.Errorf("get %s: %w", key, errs[0])
	}
	if code != fiber.StatusOK {
		return Document{}, fmt.Errorf("get %s: status %d: %s", key, code, body)
	}
	return decodeEnvelope(key, body), nil
}

func (r *Remote) Put(ctx context.Context, key string, state model.SystemState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	agent := fiber.Put(r.documentURL(key)).Timeout(r.timeout).JSON(state)
	if err := agent.Parse(); err != nil {
		return err
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("put %s: %w", key, errs[0])
	}
	if code != fiber.StatusOK {
		return fmt.Errorf("put %s: status %d: %s", key, code, body)
	}
	return nil
}

// Subscribe dials once up front so a dead server is reported to the caller,
// then redials in the background whenever the connection drops. The server
// sends the current value on every (re)connect.
func (r *Remote) Subscribe(ctx context.Context, key string) (<-chan Document, error) {
	wsURL, err := r.subscribeURL(key)
	if err != nil {
		return nil, err
	}
	conn, _, err := r.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", key, err)
	}

	out := make(chan Document, 1)
	go func() {
		defer close(out)
		for {
			r.pump(ctx, key, conn, out)
			conn = nil
			for conn == nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.reconnect):
				}
				c, _, err := r.dialer.DialContext(ctx, wsURL, nil)
				if err != nil {
					log.Warn().Err(err).Str("key", key).Msg("resubscribe failed")
					continue
				}
				conn = c
			}
		}
	}()
	return out, nil
}

// pump forwards envelopes until the connection fails or ctx ends.
func (r *Remote) pump(ctx context.Context, key string, conn *websocket.Conn, out chan Document) {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Str("key", key).Msg("subscription dropped")
			}
			return
		}
		offerLatest(out, decodeEnvelope(key, data))
	}
}

func decodeEnvelope(key string, body []byte) Document {
	var env model.DocumentEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("malformed envelope")
		return Document{}
	}
	if !env.Exists {
		return Document{}
	}
	return decode(key, env.Data)
}
