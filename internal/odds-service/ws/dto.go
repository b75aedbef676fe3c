package ws

// AllMatches assina todas as partidas
const AllMatches = "*"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MatchID: obrigatório para subscribe/unsubscribe ("*" = todas)
type ClientMsg struct {
	Type    string `json:"type"`    // subscribe | unsubscribe | ping
	MatchID string `json:"matchId"` // requerido em subscribe/unsubscribe
}

// OddsUpdate representa uma atualização de odds enviada para clientes WebSocket
type OddsUpdate struct {
	MatchID string      `json:"matchId"`
	Payload interface{} `json:"payload"`
}
