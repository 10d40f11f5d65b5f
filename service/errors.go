package service

import "errors"

var (
	// ErrDuplicateRequest means the purchase request already produced a contract.
	ErrDuplicateRequest = errors.New("contract already exists for purchase request")
	// ErrInvalidData means the request passed schema validation but breaks a domain rule.
	ErrInvalidData = errors.New("invalid contract data")
	// ErrNotFound means no contract exists for the given id.
	ErrNotFound = errors.New("contract not found")
	// ErrArtifactNotFound means the stored PDF for a location is missing.
	ErrArtifactNotFound = errors.New("contract pdf not found")
)
