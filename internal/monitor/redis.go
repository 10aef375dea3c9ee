package monitor

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LogEntry is one element of the monitor log list.
type LogEntry struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"ts"`
	Message string    `json:"msg"`
}

// RedisMonitor keeps the current application id, the current user id and a
// bounded log list under a key prefix. A nil *RedisMonitor is a no-op.
type RedisMonitor struct {
	client  redis.UniversalClient
	prefix  string
	maxLog  int64
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// RedisOptions tunes a RedisMonitor.
type RedisOptions struct {
	Prefix        string
	MaxLogEntries int
	Timeout       time.Duration
}

// NewRedisMonitor builds a monitor on client.
func NewRedisMonitor(client redis.UniversalClient, opts RedisOptions, logger *zap.Logger) *RedisMonitor {
	if opts.Prefix == "" {
		opts.Prefix = "rtc:monitor"
	}
	if opts.MaxLogEntries <= 0 {
		opts.MaxLogEntries = 1000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 200 * time.Millisecond
	}
	return &RedisMonitor{
		client:  client,
		prefix:  opts.Prefix,
		maxLog:  int64(opts.MaxLogEntries),
		timeout: opts.Timeout,
		logger:  logger.Named("monitor.redis"),
		now:     time.Now,
	}
}

// ApplicationKey holds the last reported application id.
func (m *RedisMonitor) ApplicationKey() string { return m.prefix + ":sdkappid" }

// UserKey holds the last reported user id.
func (m *RedisMonitor) UserKey() string { return m.prefix + ":uid" }

// LogKey is the list of LogEntry documents, newest last.
func (m *RedisMonitor) LogKey() string { return m.prefix + ":log" }

func (m *RedisMonitor) SetApplicationID(id int64) {
	if m == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.client.Set(ctx, m.ApplicationKey(), strconv.FormatInt(id, 10), 0).Err(); err != nil {
		m.logger.Debug("set application id failed", zap.Error(err))
	}
}

func (m *RedisMonitor) SetUserID(uid string) {
	if m == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.client.Set(ctx, m.UserKey(), uid, 0).Err(); err != nil {
		m.logger.Debug("set user id failed", zap.Error(err))
	}
}

func (m *RedisMonitor) LogInfo(msg string) {
	if m == nil {
		return
	}
	entry, err := json.Marshal(LogEntry{ID: uuid.NewString(), Time: m.now().UTC(), Message: msg})
	if err != nil {
		m.logger.Debug("encode log entry failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	pipe := m.client.TxPipeline()
	pipe.RPush(ctx, m.LogKey(), entry)
	pipe.LTrim(ctx, m.LogKey(), -m.maxLog, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		m.logger.Debug("append log entry failed", zap.Error(err))
	}
}
