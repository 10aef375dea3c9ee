package domain

import "time"

// TokenFormat names the encoding of a signed token.
type TokenFormat string

const (
	TokenFormatTLS TokenFormat = "tls"
	TokenFormatJWT TokenFormat = "jwt"
)

// Credential is the signing configuration of one application. It is fixed for
// the lifetime of the issuer and never persisted.
type Credential struct {
	SDKAppID  int64
	SecretKey string
	TTL       time.Duration
	// AuxAppID and AuxBizID identify the account for mixed-stream transcoding.
	AuxAppID int64
	AuxBizID int64
	Format   TokenFormat
}

// IssuanceResult is returned to SDK clients.
type IssuanceResult struct {
	ApplicationID int64  `json:"sdkappid"`
	SignedToken   string `json:"userSig"`
	AuxAppID      int64  `json:"appId"`
	AuxBizID      int64  `json:"bizId"`
}
