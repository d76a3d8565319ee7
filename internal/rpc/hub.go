package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512 * 1024
	sendBuffer     = 256
)

// Hub serves the WebSocket surface: clients subscribe to the ledger,
// transaction and offer streams and can issue any registered RPC
// method over the same connection. Stream fan-out happens on the
// node's close hooks; a client too slow to drain its send buffer is
// dropped rather than allowed to stall a close.
type Hub struct {
	node     *service.Service
	registry *MethodRegistry
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger

	mu     sync.RWMutex
	conns  map[uint64]*wsConn
	nextID atomic.Uint64
}

type wsConn struct {
	id     uint64
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	streams map[string]bool
}

// NewHub builds a hub over the given node. A nil logger disables
// logging.
func NewHub(node *service.Service, version string, log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		node:     node,
		registry: newRegistry(node, version, time.Now()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin filtering is the fronting proxy's job.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[uint64]*wsConn),
		log:   log,
	}
}

// Hooks returns the node hooks that feed the hub's streams. Wire them
// in with SetHooks on the node the hub was built over.
func (h *Hub) Hooks() service.Hooks {
	return service.Hooks{
		OnLedgerClosed: func(ev service.LedgerClosedEvent) {
			h.Broadcast(StreamLedger, NewLedgerClosedMessage(ev))
		},
		OnTransaction: func(ev service.TransactionEvent) {
			h.Broadcast(StreamTransactions, NewTransactionMessage(ev))
		},
		OnOffer: func(ev service.OfferEvent) {
			h.Broadcast(StreamOffers, NewOfferMessage(ev))
		},
	}
}

// ServeHTTP upgrades the request and runs the connection until either
// side closes it. The connection's lifetime is independent of the
// request context; upgraded sockets outlive the handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Infow("ws_upgrade_failed", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &wsConn{
		id:      h.nextID.Add(1),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
		streams: make(map[string]bool),
	}
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	h.log.Debugw("ws_connected", "conn", c.id, "remote", conn.RemoteAddr().String())

	go h.writePump(c)
	h.readPump(c)
}

// ConnCount returns the number of live connections.
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close drops every live connection. Stop routing new upgrades to the
// hub before calling it.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[uint64]*wsConn)
	h.mu.Unlock()

	for _, c := range conns {
		c.cancel()
		c.conn.Close()
	}
}

// Broadcast queues one message for every connection subscribed to the
// stream.
func (h *Hub) Broadcast(stream string, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Errorw("ws_marshal_failed", "stream", stream, "err", err)
		return
	}

	h.mu.RLock()
	conns := make([]*wsConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.mu.RLock()
		subscribed := c.streams[stream]
		c.mu.RUnlock()
		if subscribed {
			h.enqueue(c, data)
		}
	}
}

// readPump owns reads: it refreshes the deadline on pongs and feeds
// inbound commands to the dispatcher until the connection dies.
func (h *Hub) readPump(c *wsConn) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debugw("ws_read_failed", "conn", c.id, "err", err)
			}
			return
		}
		h.handleMessage(c, message)
	}
}

// writePump owns writes: queued frames and keepalive pings.
func (h *Hub) writePump(c *wsConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one inbound frame: subscribe and
// unsubscribe manage the connection's streams, anything else runs
// through the method registry.
func (h *Hub) handleMessage(c *wsConn, message []byte) {
	var cmd map[string]any
	if err := json.Unmarshal(message, &cmd); err != nil {
		h.sendError(c, nil, RpcErrorInvalidParams("Invalid JSON: "+err.Error()))
		return
	}

	id := cmd["id"]
	command, _ := cmd["command"].(string)
	if command == "" {
		h.sendError(c, id, RpcErrorMissingCommand())
		return
	}
	delete(cmd, "command")
	delete(cmd, "id")

	switch command {
	case "subscribe":
		h.handleSubscribe(c, id, cmd, true)
	case "unsubscribe":
		h.handleSubscribe(c, id, cmd, false)
	default:
		handler, ok := h.registry.Get(command)
		if !ok {
			h.sendError(c, id, RpcErrorMethodNotFound(command))
			return
		}
		ctx := &RpcContext{
			Context:  c.ctx,
			ClientIP: c.conn.RemoteAddr().String(),
		}
		result, rpcErr := handler.Handle(ctx, cmd)
		if rpcErr != nil {
			h.sendError(c, id, rpcErr)
			return
		}
		h.sendResponse(c, id, result)
	}
}

func (h *Hub) handleSubscribe(c *wsConn, id any, params map[string]any, subscribe bool) {
	var req struct {
		Streams []string `json:"streams"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		h.sendError(c, id, rpcErr)
		return
	}
	if len(req.Streams) == 0 {
		h.sendError(c, id, RpcErrorMissingField("streams"))
		return
	}
	for _, name := range req.Streams {
		if !knownStream(name) {
			h.sendError(c, id, RpcErrorInvalidParams("Unknown stream: "+name))
			return
		}
	}

	c.mu.Lock()
	for _, name := range req.Streams {
		if subscribe {
			c.streams[name] = true
		} else {
			delete(c.streams, name)
		}
	}
	current := make([]string, 0, len(c.streams))
	for name := range c.streams {
		current = append(current, name)
	}
	c.mu.Unlock()
	sort.Strings(current)

	h.sendResponse(c, id, map[string]any{"streams": current})
}

// sendResponse queues a success frame in the response envelope.
func (h *Hub) sendResponse(c *wsConn, id any, result map[string]any) {
	if result == nil {
		result = map[string]any{}
	}
	response := map[string]any{
		"type":   "response",
		"status": "success",
		"result": result,
	}
	if id != nil {
		response["id"] = id
	}
	h.pushFrame(c, response)
}

// sendError queues an error frame; error fields ride flat on the
// frame rather than nested.
func (h *Hub) sendError(c *wsConn, id any, rpcErr *RpcError) {
	response := map[string]any{
		"type":          "response",
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if id != nil {
		response["id"] = id
	}
	h.pushFrame(c, response)
}

func (h *Hub) pushFrame(c *wsConn, frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Errorw("ws_marshal_failed", "err", err)
		return
	}
	h.enqueue(c, data)
}

// enqueue hands one encoded frame to the connection's writer, dropping
// the connection if its buffer is full.
func (h *Hub) enqueue(c *wsConn, data []byte) {
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		h.log.Infow("ws_slow_client_dropped", "conn", c.id)
		h.drop(c)
	}
}

// drop tears one connection down and forgets it. Safe to call more
// than once.
func (h *Hub) drop(c *wsConn) {
	c.cancel()
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()
	c.conn.Close()
	h.log.Debugw("ws_closed", "conn", c.id)
}
