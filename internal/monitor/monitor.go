// Package monitor provides the optional telemetry collaborators notified when
// a user signature is issued.
package monitor

// Monitor records which application and user are active. Implementations are
// best effort: they never report failures to the caller.
type Monitor interface {
	SetApplicationID(id int64)
	SetUserID(uid string)
	LogInfo(msg string)
}

// Multi fans calls out to every non-nil monitor.
type Multi []Monitor

func (m Multi) SetApplicationID(id int64) {
	for _, mon := range m {
		if mon != nil {
			mon.SetApplicationID(id)
		}
	}
}

func (m Multi) SetUserID(uid string) {
	for _, mon := range m {
		if mon != nil {
			mon.SetUserID(uid)
		}
	}
}

func (m Multi) LogInfo(msg string) {
	for _, mon := range m {
		if mon != nil {
			mon.LogInfo(msg)
		}
	}
}
