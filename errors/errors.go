package errors

import "fmt"

var (
	ErrMissingCredential = fmt.Errorf("missing credential")
	ErrInvalidCredential = fmt.Errorf("invalid or expired credential")
	ErrMalformedFrame    = fmt.Errorf("invalid message format")
	ErrContentRequired   = fmt.Errorf("content required")
	ErrPersistence       = fmt.Errorf("message could not be saved")
	ErrAlreadyJoined     = fmt.Errorf("connection already joined a room")
	ErrConnectionClosed  = fmt.Errorf("connection closed")
)
