package domain

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	// ErrInvalidReference means a write named a program or sublocation that does not exist.
	ErrInvalidReference = errors.New("referenced record does not exist")

	// ErrProtectFailed means a sensitive field could not be encrypted; the write was not attempted.
	ErrProtectFailed = errors.New("failed to protect sensitive field")

	// ErrUnrecoverableField means a stored protected field could not be revealed.
	// Malformed and undecryptable blobs both map here.
	ErrUnrecoverableField = errors.New("protected field cannot be recovered")
)
