package gateway

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
)

// Signer signs and verifies the provider's data envelope. The signature is
// base64(sha1(privateKey + data + privateKey)) over the already base64
// encoded data string.
type Signer struct {
	privateKey string
}

func NewSigner(privateKey string) *Signer {
	return &Signer{privateKey: privateKey}
}

func (s *Signer) Sign(data string) string {
	h := sha1.New()
	h.Write([]byte(s.privateKey))
	h.Write([]byte(data))
	h.Write([]byte(s.privateKey))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Verify reports whether signature matches data. The comparison is constant
// time; a malformed signature is simply a mismatch, never an error.
func (s *Signer) Verify(data, signature string) bool {
	expected := s.Sign(data)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
