package handlers

import "github.com/coder/websocket"

// Application close codes, in the range reserved for libraries and frameworks.
const (
	BadSubprotocolError websocket.StatusCode = 3000
)
