package usecase

// Notifier publishes lifecycle and dispatch events to interested listeners
// (the websocket hub in production). A nil-safe no-op is used in tests.
type Notifier func(code, message string, result any)

func (n Notifier) publish(code, message string, result any) {
	if n != nil {
		n(code, message, result)
	}
}
