package models

import (
	"crypto/rand"
	"math/big"
)

const idCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"

const idLength = 10

// NewID returns a random 10 character alphanumeric record id.
func NewID() string {
	id := make([]byte, idLength)
	max := big.NewInt(int64(len(idCharset)))
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("models: crypto/rand unavailable: " + err.Error())
		}
		id[i] = idCharset[n.Int64()]
	}
	return string(id)
}
