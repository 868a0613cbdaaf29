package token

import "errors"

var (
	ErrTokenNotFound           = errors.New("token not found")
	ErrInvalidStatus           = errors.New("invalid token status")
	ErrInvalidStatusTransition = errors.New("invalid token status transition")
	ErrNotWaiting              = errors.New("token is not waiting")
	ErrNotCalled               = errors.New("token has not been called")
	ErrNotServing              = errors.New("token is not being served")
	ErrNoWaitingTokens         = errors.New("no waiting tokens in queue")
	ErrNumberTaken             = errors.New("token number already in use")
	ErrNumberMismatch          = errors.New("token number does not match department code")
	ErrNumberSpaceExhausted    = errors.New("no free token numbers left for department")
)
