// Package usersig implements the TLS signature (version 2) used by real-time
// audio/video SDKs to authenticate a user against an application.
//
// A signature is a zlib-compressed JSON document carrying the identifier, the
// application id, the issue time, the lifetime in seconds and an HMAC-SHA256
// over those fields, encoded with a URL safe base64 variant.
package usersig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Version is the only document version produced and accepted.
const Version = "2.0"

var (
	ErrMalformed   = errors.New("usersig: malformed signature")
	ErrVersion     = errors.New("usersig: unsupported version")
	ErrAppMismatch = errors.New("usersig: sdkappid mismatch")
	ErrSignature   = errors.New("usersig: signature mismatch")
	ErrExpired     = errors.New("usersig: signature expired")
	ErrIdentifier  = errors.New("usersig: empty identifier")
)

// document is the JSON body of a signature.
type document struct {
	Version    string `json:"TLS.ver"`
	Identifier string `json:"TLS.identifier"`
	SDKAppID   int64  `json:"TLS.sdkappid"`
	Expire     int64  `json:"TLS.expire"`
	Time       int64  `json:"TLS.time"`
	Sig        string `json:"TLS.sig"`
	UserBuf    string `json:"TLS.userbuf,omitempty"`
}

// Generator signs identifiers for one application.
type Generator struct {
	SDKAppID int64
	Key      string
	// Expire is the signature lifetime in seconds.
	Expire int64
}

// NewGenerator builds a generator. ttl is truncated to whole seconds.
func NewGenerator(sdkAppID int64, key string, ttl time.Duration) *Generator {
	return &Generator{SDKAppID: sdkAppID, Key: key, Expire: int64(ttl / time.Second)}
}

// Generate returns the signature for identifier issued at now.
func (g *Generator) Generate(identifier string, now time.Time) (string, error) {
	return g.generate(identifier, now, nil)
}

// GenerateWithUserBuf embeds an opaque user buffer (for example a privilege
// map) that is covered by the HMAC. An empty buffer behaves like Generate.
func (g *Generator) GenerateWithUserBuf(identifier string, now time.Time, userBuf []byte) (string, error) {
	if len(userBuf) == 0 {
		userBuf = nil
	}
	return g.generate(identifier, now, userBuf)
}

func (g *Generator) generate(identifier string, now time.Time, userBuf []byte) (string, error) {
	if identifier == "" {
		return "", ErrIdentifier
	}
	doc := document{
		Version:    Version,
		Identifier: identifier,
		SDKAppID:   g.SDKAppID,
		Expire:     g.Expire,
		Time:       now.Unix(),
	}
	var encodedBuf *string
	if userBuf != nil {
		doc.UserBuf = base64.StdEncoding.EncodeToString(userBuf)
		encodedBuf = &doc.UserBuf
	}
	doc.Sig = hmacSHA256(g.Key, doc.Identifier, doc.SDKAppID, doc.Time, doc.Expire, encodedBuf)

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return encodeToken(raw)
}

func hmacSHA256(key, identifier string, sdkAppID, issued, expire int64, userBuf *string) string {
	var b strings.Builder
	b.WriteString("TLS.identifier:" + identifier + "\n")
	b.WriteString("TLS.sdkappid:" + strconv.FormatInt(sdkAppID, 10) + "\n")
	b.WriteString("TLS.time:" + strconv.FormatInt(issued, 10) + "\n")
	b.WriteString("TLS.expire:" + strconv.FormatInt(expire, 10) + "\n")
	if userBuf != nil {
		b.WriteString("TLS.userbuf:" + *userBuf + "\n")
	}
	mac := hmac.New(sha256.New, []byte(key))
	_, _ = mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
