package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gamehub/internal/models"
	"gamehub/internal/service"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The session cookie is already checked by the auth middleware
		return true
	},
}

// chatEvent is the wire shape for messages pushed to chat clients.
type chatEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	Body      string `json:"body,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Error     string `json:"error,omitempty"`
}

// chatClient is one connected websocket with its outbound queue.
type chatClient struct {
	userID int64
	conn   *websocket.Conn
	send   chan chatEvent
}

// ChatHub fans chat messages out to every connected client. All map
// access happens on the run loop goroutine.
type ChatHub struct {
	register   chan *chatClient
	unregister chan *chatClient
	broadcast  chan chatEvent
	clients    map[*chatClient]bool
}

// NewChatHub creates a hub; call Run on its own goroutine.
func NewChatHub() *ChatHub {
	return &ChatHub{
		register:   make(chan *chatClient),
		unregister: make(chan *chatClient),
		broadcast:  make(chan chatEvent, 64),
		clients:    make(map[*chatClient]bool),
	}
}

// Run owns the client set until the hub is shut down
func (hub *ChatHub) Run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = true
		case client := <-hub.unregister:
			if _, ok := hub.clients[client]; ok {
				delete(hub.clients, client)
				close(client.send)
			}
		case event := <-hub.broadcast:
			for client := range hub.clients {
				select {
				case client.send <- event:
				default:
					// Slow consumer; drop it rather than stall the hub
					delete(hub.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// ChatHandler serves the community chat page, its history endpoint and
// the websocket stream.
type ChatHandler struct {
	chatService *service.ChatService
	hub         *ChatHub
	templates   *template.Template
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, hub *ChatHub, templates *template.Template) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		hub:         hub,
		templates:   templates,
	}
}

// Page renders the chat page with recent history
func (h *ChatHandler) Page(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	messages, err := h.chatService.RecentMessages(50)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load chat", "Error loading chat history", err)
		return
	}

	data := NewChatPageData(profile, messages)
	if err := h.templates.ExecuteTemplate(w, "chat.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering chat page", err)
	}
}

// History returns recent messages as JSON
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	messages, err := h.chatService.RecentMessages(50)
	if err != nil {
		log.Printf("Error loading chat history: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load chat")
		return
	}

	events := make([]chatEvent, 0, len(messages))
	for _, msg := range messages {
		events = append(events, messageEvent(&msg))
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"messages": events})
}

// Stream upgrades to a websocket and joins the hub. Inbound frames are
// message posts; everything else pushed on the socket comes from the
// hub broadcast.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading chat websocket: %v", err)
		return
	}

	client := &chatClient{
		userID: profile.ID,
		conn:   conn,
		send:   make(chan chatEvent, 16),
	}
	h.hub.register <- client

	go h.writeLoop(client)
	h.readLoop(client)
}

func (h *ChatHandler) readLoop(client *chatClient) {
	defer func() {
		h.hub.unregister <- client
		client.conn.Close()
	}()

	client.conn.SetReadLimit(1024)

	for {
		var inbound struct {
			Body string `json:"body"`
		}
		if err := client.conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Chat websocket error: %v", err)
			}
			return
		}

		msg, err := h.chatService.PostMessage(client.userID, inbound.Body)
		if err != nil {
			client.send <- chatEvent{Type: "error", Error: chatErrorMessage(err)}
			continue
		}

		h.hub.broadcast <- messageEvent(msg)
	}
}

func (h *ChatHandler) writeLoop(client *chatClient) {
	defer client.conn.Close()
	for event := range client.send {
		if err := client.conn.WriteJSON(event); err != nil {
			return
		}
	}
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func messageEvent(msg *models.ChatMessage) chatEvent {
	return chatEvent{
		Type:      "message",
		Username:  msg.Username,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func chatErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUserBanned):
		return "You are temporarily banned from chat"
	case errors.Is(err, service.ErrMessageRejected):
		return "Your message was rejected and you have been banned for 10 minutes"
	case errors.Is(err, service.ErrMessageEmpty):
		return "Message cannot be empty"
	default:
		return "Failed to send message"
	}
}
