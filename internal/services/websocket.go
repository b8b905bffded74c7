package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a connected dispatch-board session. Clients are
// read-mostly: the board listens for booking and payment updates and only
// sends pings.
type Client struct {
	UserID    uint
	CompanyID uint
	Conn      *websocket.Conn
	Send      chan []byte
	Hub       *Hub
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Dispatch client %d connected (company %d)", client.UserID, client.CompanyID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Dispatch client %d disconnected", client.UserID)
		}
	}
}

// BroadcastToCompany sends a message to every board session of one company.
func (h *Hub) BroadcastToCompany(companyID uint, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.CompanyID != companyID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Channel full; the client will catch up on reconnect.
			log.Printf("Warning: Could not send to client %d (channel full)", client.UserID)
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// WebSocket message types
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BookingStatusUpdate tells the board a booking changed state.
type BookingStatusUpdate struct {
	BookingID  uint   `json:"bookingId"`
	Status     string `json:"status"`
	VehicleID  *uint  `json:"vehicleId,omitempty"`
	DriverID   *uint  `json:"driverId,omitempty"`
	PickupTime string `json:"pickupTime"`
}

// PaymentStatusUpdate tells the board a payment moved.
type PaymentStatusUpdate struct {
	BookingID       uint    `json:"bookingId"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Status          string  `json:"status"`
	CapturedAmount  float64 `json:"capturedAmount,omitempty"`
}

// HandleWebSocket handles WebSocket connections
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID, companyID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		UserID:    userID,
		CompanyID: companyID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Hub:       hub,
	}

	client.Hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so control frames are processed; board
// clients do not send application messages.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// NotifyBookingUpdate broadcasts a booking's new state to its company's
// dispatch boards.
func (hub *Hub) NotifyBookingUpdate(b *models.Booking) {
	if hub == nil {
		return
	}
	message := WebSocketMessage{
		Type: "booking_update",
		Data: BookingStatusUpdate{
			BookingID:  b.ID,
			Status:     string(b.Status),
			VehicleID:  b.VehicleID,
			DriverID:   b.DriverID,
			PickupTime: b.PickupTime.Format("2006-01-02T15:04:05Z07:00"),
		},
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling booking update: %v", err)
		return
	}
	hub.BroadcastToCompany(b.CompanyID, data)
}

// NotifyPaymentUpdate broadcasts a payment state change to the company's
// dispatch boards.
func (hub *Hub) NotifyPaymentUpdate(companyID uint, p *models.BookingPayment) {
	if hub == nil {
		return
	}
	message := WebSocketMessage{
		Type: "payment_update",
		Data: PaymentStatusUpdate{
			BookingID:       p.BookingID,
			PaymentIntentID: p.PaymentIntentID,
			Status:          p.Status,
			CapturedAmount:  p.CapturedAmount,
		},
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling payment update: %v", err)
		return
	}
	hub.BroadcastToCompany(companyID, data)
}
