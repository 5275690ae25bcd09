package game

import (
	"encoding/json"

	"golang.org/x/time/rate"
)

// Client is one live connection. The read pump feeds envelopes to the hub;
// the write pump drains the inbox onto the socket. The id is the opaque
// per-connection token everything else keys off.
type Client struct {
	id       string
	session  NetworkSession
	hub      *Hub
	limiter  *rate.Limiter
	inbox    chan []byte
	pingChan chan struct{}
}

func NewClient(id string, session NetworkSession, hub *Hub) *Client {
	return &Client{
		id:       id,
		session:  session,
		hub:      hub,
		limiter:  rate.NewLimiter(rate.Limit(1), 5),
		inbox:    make(chan []byte, 256),
		pingChan: make(chan struct{}, 1),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) ReadPump() {
	defer c.hub.Unregister(c)

	for {
		data, err := c.session.Read()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}

		var ev wireEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Event == "" {
			continue
		}
		c.hub.Post(envelope{from: c, event: ev.Event, data: ev.Data})
	}
}

func (c *Client) WritePump() {
	for {
		select {
		case data, ok := <-c.inbox:
			if !ok {
				return
			}
			if err := c.session.Write(data); err != nil {
				return
			}
		case _, ok := <-c.pingChan:
			if !ok {
				return
			}
			if err := c.session.Ping(); err != nil {
				return
			}
		}
	}
}

// send marshals an event onto the inbox. A client that has stopped
// draining its inbox gets dropped messages rather than blocking the hub.
func (c *Client) send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	raw, err := json.Marshal(wireEvent{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case c.inbox <- raw:
	default:
	}
}

func (c *Client) ping() {
	select {
	case c.pingChan <- struct{}{}:
	default:
	}
}
