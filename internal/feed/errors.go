package feed

import "errors"

var (
	// ErrProtocol is returned for frames that cannot be parsed or carry
	// invalid values. The session is closed.
	ErrProtocol = errors.New("protocol error")

	// ErrSessionClosed is returned when sending on a session whose socket is
	// gone or was closed locally.
	ErrSessionClosed = errors.New("session closed")

	// ErrRegistryClosed is returned by Register once shutdown has begun.
	ErrRegistryClosed = errors.New("registry closed")
)
