package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/rtc-usersig/internal/auth"
	"github.com/spec-kit/rtc-usersig/internal/config"
	"github.com/spec-kit/rtc-usersig/internal/domain"
	"github.com/spec-kit/rtc-usersig/internal/monitor"
	"github.com/spec-kit/rtc-usersig/internal/observability"
	"github.com/spec-kit/rtc-usersig/internal/usersig"
	apperrors "github.com/spec-kit/rtc-usersig/pkg/util"
)

// SignatureDependencies encapsulates the collaborators of the signature
// service. Everything except Logger is optional.
type SignatureDependencies struct {
	Logger  *zap.Logger
	Alerter observability.Alerter
	Monitor monitor.Monitor
	Metrics *observability.Metrics
	Clock   func() time.Time
}

// SignatureService issues user signatures for SDK clients.
type SignatureService struct {
	cred      domain.Credential
	signer    tokenSigner
	generator *usersig.Generator
	misconfig error
	logger    *zap.Logger
	alerter   observability.Alerter
	monitor   monitor.Monitor
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewSignatureService validates cfg once and builds the service. A missing
// application id or secret key does not fail construction; it is reported on
// every issuance instead. An unknown token format is an error.
func NewSignatureService(cfg config.CredentialConfig, deps SignatureDependencies) (*SignatureService, error) {
	cred := domain.Credential{
		SDKAppID:  cfg.SDKAppID,
		SecretKey: cfg.SecretKey,
		TTL:       cfg.TTL(),
		AuxAppID:  cfg.AuxAppID,
		AuxBizID:  cfg.AuxBizID,
		Format:    domain.TokenFormat(cfg.TokenFormat),
	}
	if cred.Format == "" {
		cred.Format = domain.TokenFormatTLS
	}

	generator := usersig.NewGenerator(cred.SDKAppID, cred.SecretKey, cred.TTL)
	var signer tokenSigner
	switch cred.Format {
	case domain.TokenFormatTLS:
		signer = tlsSigner{gen: generator}
	case domain.TokenFormatJWT:
		signer = jwtSigner{tm: auth.NewTokenManager(cred.SDKAppID, cred.SecretKey, cred.TTL)}
	default:
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("unsupported token format %q", cfg.TokenFormat),
			[]string{config.EnvTokenFormat}, cfg.Source)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	s := &SignatureService{
		cred:      cred,
		signer:    signer,
		generator: generator,
		logger:    logger,
		alerter:   deps.Alerter,
		monitor:   deps.Monitor,
		metrics:   deps.Metrics,
		now:       now,
	}
	if fields := cfg.Problems(); len(fields) > 0 {
		location := cfg.Source
		if location == "" {
			location = "issuer configuration"
		}
		s.misconfig = apperrors.NewConfigError(
			fmt.Sprintf("configure your account first: set %s (location: %s)", strings.Join(fields, ", "), location),
			fields, location)
	}
	return s, nil
}

// ConfigError returns the configuration problem found at construction, or nil.
func (s *SignatureService) ConfigError() error {
	return s.misconfig
}

// TTL returns the lifetime of issued signatures.
func (s *SignatureService) TTL() time.Duration {
	return s.cred.TTL
}

// IssueSignature returns the application id, a fresh signed token for userID
// and the auxiliary mixed-stream ids.
func (s *SignatureService) IssueSignature(userID string) (*domain.IssuanceResult, error) {
	return s.issue(userID, string(s.cred.Format), func(now time.Time) (string, error) {
		return s.signer.sign(userID, now)
	})
}

// IssuePrivateMapKey returns a TLS signature restricted to a room. A non-empty
// roomStr takes precedence over roomID.
func (s *SignatureService) IssuePrivateMapKey(userID string, roomID uint32, roomStr string, privileges usersig.Privilege) (*domain.IssuanceResult, error) {
	if roomID == 0 && roomStr == "" {
		return nil, apperrors.NewValidationError("room id or room name is required", nil)
	}
	return s.issue(userID, "privmap", func(now time.Time) (string, error) {
		return s.generator.GeneratePrivateMapKey(userID, now, usersig.PrivilegeMap{
			RoomID:     roomID,
			RoomStr:    roomStr,
			Privileges: privileges,
		})
	})
}

func (s *SignatureService) issue(userID, kind string, sign func(time.Time) (string, error)) (*domain.IssuanceResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id is required", map[string]any{"field": "userID"})
	}

	if s.monitor != nil {
		s.monitor.SetApplicationID(s.cred.SDKAppID)
	}
	s.reportMisconfiguration()

	token, err := sign(s.now())
	if err != nil {
		s.metrics.RecordSignFailure(kind)
		s.logger.Error("sign user signature", zap.String("format", kind), zap.Error(err))
		return nil, apperrors.NewSigningError(err)
	}
	s.metrics.RecordIssued(kind)

	if s.monitor != nil {
		s.monitor.SetUserID(fmt.Sprintf("%d-%s", s.cred.SDKAppID, userID))
		s.monitor.LogInfo(fmt.Sprintf("SDKAppId: %d - userId: %s - generate User Sig", s.cred.SDKAppID, userID))
	}

	return &domain.IssuanceResult{
		ApplicationID: s.cred.SDKAppID,
		SignedToken:   token,
		AuxAppID:      s.cred.AuxAppID,
		AuxBizID:      s.cred.AuxBizID,
	}, nil
}

func (s *SignatureService) reportMisconfiguration() {
	if s.misconfig == nil {
		return
	}
	s.metrics.RecordConfigDiagnostic()
	de := apperrors.ToDomainError(s.misconfig)
	s.logger.Error(de.Message,
		zap.String("code", de.Code),
		zap.Any("fields", de.Details["fields"]),
		zap.Any("location", de.Details["location"]))
	if s.alerter != nil {
		s.alerter.Alert(de.Message)
	}
}

type tokenSigner interface {
	sign(userID string, now time.Time) (string, error)
}

type tlsSigner struct {
	gen *usersig.Generator
}

func (t tlsSigner) sign(userID string, now time.Time) (string, error) {
	return t.gen.Generate(userID, now)
}

type jwtSigner struct {
	tm *auth.TokenManager
}

func (j jwtSigner) sign(userID string, now time.Time) (string, error) {
	token, _, err := j.tm.GenerateToken(userID, now)
	return token, err
}
