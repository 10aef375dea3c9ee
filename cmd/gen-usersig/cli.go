package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/spec-kit/rtc-usersig/internal/config"
	"github.com/spec-kit/rtc-usersig/internal/domain"
	"github.com/spec-kit/rtc-usersig/internal/monitor"
	"github.com/spec-kit/rtc-usersig/internal/observability"
	"github.com/spec-kit/rtc-usersig/internal/service"
	"github.com/spec-kit/rtc-usersig/internal/usersig"
)

// Alert modes for the -alert flag.
const (
	alertAuto = "auto"
	alertTTY  = "tty"
	alertLog  = "log"
)

type cliDeps struct {
	logger   *zap.Logger
	monitor  monitor.Monitor
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	// interactive is true when stderr is a terminal.
	interactive bool
	clock       func() time.Time
	stdout      io.Writer
	stderr      io.Writer
}

type output struct {
	*domain.IssuanceResult
	ExpiresAt string `json:"expires_at"`
}

type inspection struct {
	Identifier   string         `json:"identifier"`
	SDKAppID     int64          `json:"sdkappid"`
	IssuedAt     string         `json:"issued_at"`
	ExpiresAt    string         `json:"expires_at"`
	Expired      bool           `json:"expired"`
	PrivilegeMap *privilegeView `json:"privilege_map,omitempty"`
	UserBuf      []byte         `json:"userbuf,omitempty"`
}

type privilegeView struct {
	RoomID     uint32 `json:"room_id,omitempty"`
	Room       string `json:"room,omitempty"`
	Privileges string `json:"privileges"`
	ExpiresAt  string `json:"expires_at"`
}

// run issues one signature, or decodes one with -inspect, and prints it as
// JSON. It returns the process exit code.
func run(args []string, cfg *config.Config, deps cliDeps) int {
	fs := flag.NewFlagSet("gen-usersig", flag.ContinueOnError)
	fs.SetOutput(deps.stderr)
	userID := fs.String("user", "", "user id to sign (required)")
	format := fs.String("format", cfg.Credential.TokenFormat, "token format: tls or jwt")
	roomID := fs.Uint("room-id", 0, "numeric room id; issues a private map key")
	room := fs.String("room", "", "room name; issues a private map key")
	privilege := fs.String("privilege", "0xff", "privilege bits of a private map key")
	alertMode := fs.String("alert", alertAuto, "where configuration alerts go: auto, tty or log")
	showMetrics := fs.Bool("metrics", false, "write issuer metrics to stderr after issuing")
	inspect := fs.String("inspect", "", "decode a TLS user signature without verifying it")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	clock := deps.clock
	if clock == nil {
		now := time.Now()
		clock = func() time.Time { return now }
	}

	if *inspect != "" {
		return inspectToken(*inspect, clock(), deps)
	}

	if cfg.App.IsProduction() {
		deps.logger.Error("refusing to sign with a local secret key in production, fetch user signatures from your business server",
			zap.String("env", cfg.App.Env))
		return 1
	}
	if *userID == "" {
		fmt.Fprintln(deps.stderr, "Missing required option: -user")
		fs.Usage()
		return 2
	}
	alerter, err := selectAlerter(*alertMode, deps)
	if err != nil {
		fmt.Fprintln(deps.stderr, err)
		return 2
	}

	cred := cfg.Credential
	cred.TokenFormat = strings.ToLower(*format)
	svc, err := service.NewSignatureService(cred, service.SignatureDependencies{
		Logger:  deps.logger,
		Alerter: alerter,
		Monitor: deps.monitor,
		Metrics: deps.metrics,
		Clock:   clock,
	})
	if err != nil {
		deps.logger.Error("failed to build signature service", zap.Error(err))
		return 1
	}
	if *showMetrics {
		defer writeMetrics(deps)
	}

	var res *domain.IssuanceResult
	if *roomID != 0 || *room != "" {
		if *roomID > math.MaxUint32 {
			fmt.Fprintln(deps.stderr, "The option '-room-id' must fit in 32 bits")
			return 2
		}
		bits, perr := strconv.ParseUint(*privilege, 0, 32)
		if perr != nil {
			fmt.Fprintln(deps.stderr, "The option '-privilege' requires a numeric value")
			return 2
		}
		res, err = svc.IssuePrivateMapKey(*userID, uint32(*roomID), *room, usersig.Privilege(bits))
	} else {
		res, err = svc.IssueSignature(*userID)
	}
	if err != nil {
		deps.logger.Error("failed to issue user signature", zap.String("user_id", *userID), zap.Error(err))
		return 1
	}

	return writeJSON(deps, output{
		IssuanceResult: res,
		ExpiresAt:      clock().Add(svc.TTL()).UTC().Format(time.RFC3339),
	})
}

func selectAlerter(mode string, deps cliDeps) (observability.Alerter, error) {
	switch mode {
	case alertTTY:
		return observability.NewWriterAlerter(deps.stderr), nil
	case alertLog:
		return observability.NewLogAlerter(deps.logger), nil
	case alertAuto, "":
		if deps.interactive {
			return observability.NewWriterAlerter(deps.stderr), nil
		}
		return observability.NewLogAlerter(deps.logger), nil
	default:
		return nil, fmt.Errorf("The option '-alert' must be one of %s, %s, %s", alertAuto, alertTTY, alertLog)
	}
}

func inspectToken(token string, now time.Time, deps cliDeps) int {
	sig, err := usersig.Inspect(token)
	if err != nil {
		deps.logger.Error("failed to decode user signature", zap.Error(err))
		return 1
	}
	out := inspection{
		Identifier: sig.Identifier,
		SDKAppID:   sig.SDKAppID,
		IssuedAt:   sig.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt:  sig.ExpiresAt().UTC().Format(time.RFC3339),
		Expired:    now.After(sig.ExpiresAt()),
	}
	if len(sig.UserBuf) > 0 {
		if m, err := usersig.DecodePrivilegeMap(sig.UserBuf); err == nil {
			out.PrivilegeMap = &privilegeView{
				RoomID:     m.RoomID,
				Room:       m.RoomStr,
				Privileges: fmt.Sprintf("0x%02x", uint32(m.Privileges)),
				ExpiresAt:  m.ExpiresAt.UTC().Format(time.RFC3339),
			}
		} else {
			out.UserBuf = sig.UserBuf
		}
	}
	return writeJSON(deps, out)
}

func writeJSON(deps cliDeps, v any) int {
	enc := json.NewEncoder(deps.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		deps.logger.Error("failed to write result", zap.Error(err))
		return 1
	}
	return 0
}

func writeMetrics(deps cliDeps) {
	if deps.gatherer == nil {
		return
	}
	families, err := deps.gatherer.Gather()
	if err != nil {
		deps.logger.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(deps.stderr, mf); err != nil {
			deps.logger.Warn("failed to write metrics", zap.Error(err))
			return
		}
	}
}
