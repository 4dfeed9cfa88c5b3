// Package security provides structured security logging.
// All log output is JSON, one entry per line, suitable for ingestion by
// log aggregation tooling.
package security

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// LogLevel identifies the severity of a log entry.
type LogLevel string

// Log levels in increasing severity. SECURITY marks auditable security events
// regardless of severity.
const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY"
)

// SecurityEventType identifies the kind of security event being recorded.
type SecurityEventType string

// Security event types covering authentication, authorization, and the
// application lifecycle.
const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRegistration       SecurityEventType = "REGISTRATION"
	EventEmailVerified      SecurityEventType = "EMAIL_VERIFIED"
	EventOTPIssued          SecurityEventType = "OTP_ISSUED"
	EventOTPFailure         SecurityEventType = "OTP_FAILURE"
	EventApplicationSubmit  SecurityEventType = "APPLICATION_SUBMIT"
	EventApplicationForward SecurityEventType = "APPLICATION_FORWARD"
	EventApplicationApprove SecurityEventType = "APPLICATION_APPROVE"
	EventApplicationReject  SecurityEventType = "APPLICATION_REJECT"
	EventPassIssued         SecurityEventType = "PASS_ISSUED"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventCSRFViolation      SecurityEventType = "CSRF_VIOLATION"
	EventInjectionAttempt   SecurityEventType = "INJECTION_ATTEMPT"
)

// LogEntry is the JSON shape of a single log line.
type LogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Message    string                 `json:"message"`
	EventType  SecurityEventType      `json:"event_type,omitempty"`
	ActorID    string                 `json:"actor_id,omitempty"`
	ActorEmail string                 `json:"actor_email,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Method     string                 `json:"method,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Status     int                    `json:"status,omitempty"`
	LatencyMS  int64                  `json:"latency_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// Logger writes structured JSON log entries.
// The zero value is not usable; construct with NewLogger.
type Logger struct {
	output *log.Logger
}

// NewLogger creates a logger writing JSON entries to stdout.
func NewLogger() *Logger {
	return &Logger{
		output: log.New(os.Stdout, "", 0),
	}
}

// write marshals and emits one entry. Marshal failures fall back to a plain
// line so the event is never lost silently.
func (l *Logger) write(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()

	data, err := json.Marshal(entry)
	if err != nil {
		l.output.Printf(`{"level":"ERROR","message":"log marshal failed: %v"}`, err)
		return
	}

	l.output.Println(string(data))
}

// Info logs an informational message.
func (l *Logger) Info(message string) {
	l.write(LogEntry{Level: LogLevelInfo, Message: message})
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.write(LogEntry{Level: LogLevelWarning, Message: message})
}

// Error logs an error message with an optional underlying error.
func (l *Logger) Error(message string, err error) {
	entry := LogEntry{Level: LogLevelError, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// Critical logs a critical failure with an optional underlying error.
func (l *Logger) Critical(message string, err error) {
	entry := LogEntry{Level: LogLevelCritical, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// SecurityEvent logs an auditable security event with actor context.
// actorID may be empty for anonymous events (e.g., failed logins).
func (l *Logger) SecurityEvent(eventType SecurityEventType, actorID, actorEmail, ipAddress, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Level:      LogLevelSecurity,
		Message:    string(eventType),
		EventType:  eventType,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Extra:      extra,
	})
}

// HTTPRequest logs a completed HTTP request with latency.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ipAddress, userAgent string) {
	l.write(LogEntry{
		Level:     LogLevelInfo,
		Message:   fmt.Sprintf("%s %s %d (%dms)", method, path, status, latencyMS),
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
}

// Alerter delivers security alerts to an external channel (email, chat, SIEM).
type Alerter interface {
	SendAlert(ctx context.Context, severity, title, message string) error
}

// SecurityMonitor watches security event streams for suspicious patterns
// and raises alerts through the configured Alerter.
type SecurityMonitor struct {
	logger  *Logger
	config  *SecurityConfig
	alerter Alerter

	mu           sync.Mutex
	failedLogins map[string]int
	lastReset    time.Time
}

// NewSecurityMonitor creates a monitor. alerter may be nil, in which case
// threshold breaches are logged but not delivered anywhere.
func NewSecurityMonitor(logger *Logger, config *SecurityConfig, alerter Alerter) *SecurityMonitor {
	return &SecurityMonitor{
		logger:       logger,
		config:       config,
		alerter:      alerter,
		failedLogins: make(map[string]int),
		lastReset:    time.Now(),
	}
}

// MonitorLoginFailure records a failed login from the given IP and alerts
// when the per-IP count reaches the configured threshold.
func (m *SecurityMonitor) MonitorLoginFailure(ipAddress string) {
	m.mu.Lock()
	m.failedLogins[ipAddress]++
	count := m.failedLogins[ipAddress]
	m.mu.Unlock()

	if count == m.config.AlertThresholdFailures {
		m.logger.Warn(fmt.Sprintf("Repeated login failures from %s (%d attempts)", ipAddress, count))
		if m.alerter != nil {
			_ = m.alerter.SendAlert(context.Background(), "HIGH",
				"Repeated login failures",
				fmt.Sprintf("%d failed login attempts from %s", count, ipAddress))
		}
	}
}

// ResetCounters clears failure counters once the monitoring interval has
// elapsed. Called periodically by the owner.
func (m *SecurityMonitor) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastReset) < 5*time.Minute {
		return
	}

	m.failedLogins = make(map[string]int)
	m.lastReset = time.Now()
}
