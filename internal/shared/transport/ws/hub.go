package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

// Hub fans feed frames out to every registered viewer. Viewers that cannot
// keep up are dropped.
type Hub struct {
	register   chan WSConn
	unregister chan WSConn
	broadcast  chan []byte
	clients    map[WSConn]struct{}
	count      atomic.Int64
	log        logx.Logger
}

func NewHub(l logx.Logger) *Hub {
	if l == nil {
		l = logx.Nop()
	}
	return &Hub{
		register:   make(chan WSConn),
		unregister: make(chan WSConn),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[WSConn]struct{}),
		log:        l,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.Close()
			}
			h.clients = map[WSConn]struct{}{}
			h.count.Store(0)
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			go h.watch(ctx, c)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				h.count.Store(int64(len(h.clients)))
			}
		case frame := <-h.broadcast:
			for c := range h.clients {
				if !c.SendRaw(frame) {
					h.log.Warn("ws hub drop slow viewer", zap.String("conn", c.ID()))
					delete(h.clients, c)
					c.Close()
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// watch unregisters the connection once it ends.
func (h *Hub) watch(ctx context.Context, c WSConn) {
	select {
	case <-c.Done():
	case <-ctx.Done():
		return
	}
	select {
	case h.unregister <- c:
	case <-ctx.Done():
	}
}

func (h *Hub) Register(ctx context.Context, c WSConn) {
	select {
	case h.register <- c:
	case <-ctx.Done():
	}
}

// Broadcast encodes v once and queues it for every viewer. It never blocks;
// a full queue drops the frame.
func (h *Hub) Broadcast(v any) bool {
	frame, err := json.Marshal(v)
	if err != nil {
		h.log.Error("ws hub marshal broadcast", zap.Error(err))
		return false
	}
	select {
	case h.broadcast <- frame:
		return true
	default:
		h.log.Warn("ws hub broadcast queue full, frame dropped")
		return false
	}
}

func (h *Hub) Count() int {
	return int(h.count.Load())
}
