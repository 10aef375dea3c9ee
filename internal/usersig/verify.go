package usersig

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"time"
)

// Sig is a decoded and verified signature.
type Sig struct {
	Identifier string
	SDKAppID   int64
	IssuedAt   time.Time
	Expire     time.Duration
	UserBuf    []byte
}

// ExpiresAt returns the instant the signature stops being accepted.
func (s *Sig) ExpiresAt() time.Time {
	return s.IssuedAt.Add(s.Expire)
}

// Verifier checks signatures issued for one application.
type Verifier struct {
	SDKAppID int64
	Key      string
}

// NewVerifier builds a verifier.
func NewVerifier(sdkAppID int64, key string) *Verifier {
	return &Verifier{SDKAppID: sdkAppID, Key: key}
}

// Verify decodes token and checks its version, application, HMAC and expiry
// at now.
func (v *Verifier) Verify(token string, now time.Time) (*Sig, error) {
	doc, err := decode(token)
	if err != nil {
		return nil, err
	}
	if doc.SDKAppID != v.SDKAppID {
		return nil, ErrAppMismatch
	}

	var encodedBuf *string
	if doc.UserBuf != nil {
		s := base64.StdEncoding.EncodeToString(doc.UserBuf)
		encodedBuf = &s
	}
	expected := hmacSHA256(v.Key, doc.Identifier, doc.SDKAppID, doc.IssuedAt.Unix(), int64(doc.Expire/time.Second), encodedBuf)
	got, err := base64.StdEncoding.DecodeString(doc.sig)
	if err != nil {
		return nil, ErrMalformed
	}
	want, _ := base64.StdEncoding.DecodeString(expected)
	if !hmac.Equal(got, want) {
		return nil, ErrSignature
	}
	if now.After(doc.ExpiresAt()) {
		return nil, ErrExpired
	}
	return &doc.Sig, nil
}

type decoded struct {
	Sig
	sig string
}

// Inspect parses token without checking the HMAC or expiry. It is meant for
// debugging; never trust its result for authentication.
func Inspect(token string) (*Sig, error) {
	doc, err := decode(token)
	if err != nil {
		return nil, err
	}
	return &doc.Sig, nil
}

func decode(token string) (*decoded, error) {
	raw, err := decodeToken(token)
	if err != nil {
		return nil, ErrMalformed
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrMalformed
	}
	if doc.Version != Version {
		return nil, ErrVersion
	}
	if doc.Identifier == "" || doc.Sig == "" {
		return nil, ErrMalformed
	}
	out := &decoded{
		Sig: Sig{
			Identifier: doc.Identifier,
			SDKAppID:   doc.SDKAppID,
			IssuedAt:   time.Unix(doc.Time, 0),
			Expire:     time.Duration(doc.Expire) * time.Second,
		},
		sig: doc.Sig,
	}
	if doc.UserBuf != "" {
		buf, err := base64.StdEncoding.DecodeString(doc.UserBuf)
		if err != nil {
			return nil, ErrMalformed
		}
		out.UserBuf = buf
	}
	return out, nil
}
