package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait         = 2 * time.Second
	defaultSendBuffer = 64
)

// client tem uma fila de envio própria; só writePump escreve na conexão
// (gorilla não aceita escritas concorrentes)
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// enqueue nunca bloqueia; false quando a fila do cliente está cheia
func (c *client) enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (h *Hub) writePump(c *client) {
	for {
		select {
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				_ = c.conn.Close() // o loop de leitura limpa as assinaturas
				return
			}
			if h.OnSent != nil {
				h.OnSent()
			}
		case <-c.done:
			return
		}
	}
}

// Hub gerencia conexões WebSocket e assinaturas de partidas
// subs: mapeia matchID (ou "*") para o conjunto de clientes inscritos
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}

	// SendBuffer é o tamanho da fila de cada cliente; cliente com fila cheia é desconectado
	SendBuffer int

	OnConnect    func() // métricas
	OnDisconnect func()
	OnSent       func()
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		upgrader:   websocket.Upgrader{CheckOrigin: allowOrigin},
		log:        log,
		subs:       make(map[string]map[*client]struct{}),
		SendBuffer: defaultSendBuffer,
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em partidas e responde a pings
// Cada cliente pode se inscrever em várias partidas ou em "*"
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, h.SendBuffer), done: make(chan struct{})}
	defer close(c.done)
	go h.writePump(c)
	if h.OnConnect != nil {
		h.OnConnect()
	}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.MatchID == "" {
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.MatchID]; !ok {
				h.subs[msg.MatchID] = make(map[*client]struct{})
			}
			h.subs[msg.MatchID][c] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			h.removeLocked(msg.MatchID, c)
			h.mu.Unlock()
		case "ping":
			c.enqueue([]byte(`{"type":"pong"}`))
		}
	}

	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for id := range h.subs {
		h.removeLocked(id, c)
	}
	h.mu.Unlock()
	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
}

func (h *Hub) removeLocked(matchID string, c *client) {
	if set, ok := h.subs[matchID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, matchID)
		}
	}
}

// Broadcast enfileira a atualização para os inscritos na partida e para os inscritos em "*".
// Não espera a escrita: um cliente lento não atrasa os demais.
func (h *Hub) Broadcast(update OddsUpdate) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[update.MatchID])+len(h.subs[AllMatches]))
	for c := range h.subs[update.MatchID] {
		targets = append(targets, c)
	}
	for c := range h.subs[AllMatches] {
		if _, dup := h.subs[update.MatchID][c]; !dup {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(update)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.String("match_id", update.MatchID), zap.Error(err))
		return
	}
	for _, c := range targets {
		if !c.enqueue(b) {
			h.log.Warn("ws client too slow, dropping", zap.String("remote", c.conn.RemoteAddr().String()))
			_ = c.conn.Close()
		}
	}
}

// Subscribers devolve quantos clientes estão inscritos numa chave
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}
