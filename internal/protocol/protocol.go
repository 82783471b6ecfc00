// internal/protocol/protocol.go
package protocol

import "encoding/json"

// Event names exchanged with clients. The names and payload field names
// match the browser client and must not be changed without a client update.
const (
	// client -> server
	SetUsername      = "setUsername"
	CreateLobby      = "createLobby"
	GetLobbies       = "getLobbies"
	JoinLobby        = "joinLobby"
	PlayerReady      = "playerReady"
	PlayerJoinedGame = "playerJoinedGame"
	PlayerMoved      = "playerMoved"

	// server -> client
	UsernameSet         = "usernameSet"
	UsernameError       = "usernameError"
	UpdateOnlinePlayers = "updateOnlinePlayers"
	LobbyCreated        = "lobbyCreated"
	LobbiesList         = "lobbiesList"
	LobbyUpdate         = "lobbyUpdate"
	LobbyError          = "lobbyError"
	GameStart           = "gameStart"
	PlayerPosition      = "playerPosition"
	AllPlayersJoined    = "allPlayersJoined"
)

// Envelope is the inbound wire frame. Data is decoded per event type by the
// session router; absent or malformed data never propagates past dispatch.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is the outbound wire frame. Data is marshaled by the write pump.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// JoinedGame is the playerJoinedGame payload: the sender's spawn position.
type JoinedGame struct {
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Movement is the playerMoved payload. Timestamp is a sender-supplied
// millisecond counter used only for per-member ordering; it is relayed to
// lobby peers verbatim when accepted.
type Movement struct {
	Username  string  `json:"username"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
	Timestamp int64   `json:"timestamp"`
	IsMoving  bool    `json:"isMoving"`
}
