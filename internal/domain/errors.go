package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyRunning       = errors.New("bot already running")
	ErrNotRunning           = errors.New("bot not running")
	ErrWalletLoadFailed     = errors.New("wallet load failed")
	ErrWalletNotInitialized = errors.New("wallet not initialized")
	ErrNoRoute              = errors.New("no route for pair")
	ErrSimulationFailed     = errors.New("simulation failed")
	ErrTxNotConfirmed       = errors.New("transaction not confirmed")
)
