package monitor

import "go.uber.org/zap"

// ZapMonitor reports to a structured logger. A nil *ZapMonitor is a no-op.
type ZapMonitor struct {
	logger *zap.Logger
}

// NewZapMonitor builds a ZapMonitor logging under the "monitor" name.
func NewZapMonitor(logger *zap.Logger) *ZapMonitor {
	return &ZapMonitor{logger: logger.Named("monitor")}
}

func (m *ZapMonitor) SetApplicationID(id int64) {
	if m == nil {
		return
	}
	m.logger.Debug("application id set", zap.Int64("sdkappid", id))
}

func (m *ZapMonitor) SetUserID(uid string) {
	if m == nil {
		return
	}
	m.logger.Debug("user id set", zap.String("uid", uid))
}

func (m *ZapMonitor) LogInfo(msg string) {
	if m == nil {
		return
	}
	m.logger.Info(msg)
}
