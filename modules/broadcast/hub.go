package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/gofiber/contrib/websocket"
)

// ErrUnknownClient is returned for operations on a client that is not registered.
var ErrUnknownClient = errors.New("unknown client")

const defaultSendBuffer = 64

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a connected WebSocket client.
type Client struct {
	ID     string
	Conn   Conn
	room   string
	member domain.RosterEntry
	seq    uint64
	send   chan []byte
	done   chan struct{}
}

// Done is closed once the client's write pump has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) writePump() {
	defer close(c.done)
	for data := range c.send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[hub] Failed to send to client %s: %v", c.ID, err)
		}
	}
}

// Hub manages WebSocket connections and room broadcast groups. Each client
// has its own buffered send queue drained by a write pump, so frames reach
// a client in the order they were enqueued.
type Hub struct {
	clients    map[string]*Client         // clientID -> Client
	rooms      map[string]map[string]bool // room -> set of clientIDs
	seq        uint64
	closed     bool
	sendBuffer int
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		sendBuffer: defaultSendBuffer,
		done:       make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes every client connection.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	log.Println("[hub] Shutting down...")
	h.closeAllClients()
	close(h.done)
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, client := range h.clients {
		h.removeLocked(client)
		_ = client.Conn.Close()
	}
}

// Register adds a connection to the hub and starts its write pump.
func (h *Hub) Register(id string, conn Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, domain.ErrHubClosed
	}
	if _, exists := h.clients[id]; exists {
		return nil, fmt.Errorf("client %s already registered", id)
	}

	h.seq++
	client := &Client{
		ID:   id,
		Conn: conn,
		seq:  h.seq,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}
	h.clients[id] = client
	go client.writePump()

	log.Printf("[hub] Client %s registered", id)
	return client, nil
}

// Unregister removes a client and stops its write pump after queued frames drain.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.ID]; ok && current == client {
		h.removeLocked(client)
		log.Printf("[hub] Client %s unregistered", client.ID)
	}
}

// removeLocked drops the client from every index and closes its queue. Caller holds mu.
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	h.leaveLocked(client)
	delete(h.clients, client.ID)
	close(client.send)
}

func (h *Hub) leaveLocked(client *Client) {
	if client.room == "" {
		return
	}
	if members := h.rooms[client.room]; members != nil {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, client.room)
		}
	}
	client.room = ""
	client.member = domain.RosterEntry{}
}

// JoinRoom moves a client into a room's broadcast group.
func (h *Hub) JoinRoom(clientID, roomName string, member domain.RosterEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return fmt.Errorf("join %s: %w", clientID, ErrUnknownClient)
	}

	h.leaveLocked(client)
	client.room = roomName
	client.member = member
	if h.rooms[roomName] == nil {
		h.rooms[roomName] = make(map[string]bool)
	}
	h.rooms[roomName][clientID] = true
	log.Printf("[hub] Client %s joined room %s as %s", clientID, roomName, member.Name)
	return nil
}

// LeaveRoom removes a client from its current room.
func (h *Hub) LeaveRoom(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok || client.room == "" {
		return
	}
	room := client.room
	h.leaveLocked(client)
	log.Printf("[hub] Client %s left room %s", clientID, room)
}

// RoomMembers returns the identities of the clients in a room, oldest connection first.
func (h *Hub) RoomMembers(ctx context.Context, roomName string) ([]domain.RosterEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil, domain.ErrHubClosed
	}

	clients := h.roomClientsLocked(roomName)
	members := make([]domain.RosterEntry, 0, len(clients))
	for _, c := range clients {
		members = append(members, c.member)
	}
	return members, nil
}

func (h *Hub) roomClientsLocked(roomName string) []*Client {
	var clients []*Client
	for clientID := range h.rooms[roomName] {
		if client, ok := h.clients[clientID]; ok {
			clients = append(clients, client)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].seq < clients[j].seq })
	return clients
}

// BroadcastToRoom enqueues an event for every client in a room.
func (h *Hub) BroadcastToRoom(roomName, event string, payload any) error {
	data, err := encode(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return domain.ErrHubClosed
	}
	for _, client := range h.roomClientsLocked(roomName) {
		h.enqueue(client, data)
	}
	return nil
}

// SendToSession enqueues an event for a single client.
func (h *Hub) SendToSession(clientID, event string, payload any) error {
	data, err := encode(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		return fmt.Errorf("send to %s: %w", clientID, ErrUnknownClient)
	}
	h.enqueue(client, data)
	return nil
}

// enqueue drops the frame when the client's queue is full. Caller holds mu.
func (h *Hub) enqueue(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		log.Printf("[hub] Send queue full for client %s, dropping frame", client.ID)
	}
}

func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(domain.OutboundEnvelope{Event: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s frame: %w", event, err)
	}
	return data, nil
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomClientCount returns the number of clients in a room.
func (h *Hub) RoomClientCount(roomName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomName])
}

// RoomOccupancy returns the number of clients in every room that has at least one.
func (h *Hub) RoomOccupancy() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.rooms))
	for room, members := range h.rooms {
		out[room] = len(members)
	}
	return out
}

// Closed reports whether the hub has shut down.
func (h *Hub) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}
