package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short id for websocket sessions and subscriptions.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		return ""
	}
	return id
}
