package model

import (
	"errors"
	"fmt"
)

// Сентинельные ошибки хранилища и удалённых операций.
var (
	// ErrNotFound возвращается, когда запрошенная запись отсутствует в локальном хранилище.
	ErrNotFound = errors.New("record not found")

	// ErrNotConnected — удалённая операция вызвана без активной сессии.
	// Такие вызовы не ретраятся автоматически.
	ErrNotConnected = errors.New("not connected to a remote repository")

	// ErrQuotaExceeded — запись отклонена целиком, предыдущее состояние не тронуто.
	ErrQuotaExceeded = errors.New("local storage quota exceeded: delete unused items or raise WIKID_QUOTA_BYTES")
)

// ValidationError — некорректный ввод, отклонённый до любой мутации хранилища.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// RemoteAuthError — ошибка резолва identity, обмена кода или refresh.
// После неё сессия сбрасывается, полуинициализированное состояние не сохраняется.
type RemoteAuthError struct {
	Stage string // resolving_identity | authorization_request | token_exchange | token_refresh
	Err   error
}

func (e *RemoteAuthError) Error() string {
	return fmt.Sprintf("remote auth failed at %s: %v", e.Stage, e.Err)
}

func (e *RemoteAuthError) Unwrap() error { return e.Err }

// RemoteSyncError — транзиентная ошибка push/pull. Локальное состояние не страдает.
type RemoteSyncError struct {
	Op         string // push | pull
	Collection string
	Key        string
	Err        error
}

func (e *RemoteSyncError) Error() string {
	return fmt.Sprintf("remote sync %s failed for %s/%s: %v", e.Op, e.Collection, e.Key, e.Err)
}

func (e *RemoteSyncError) Unwrap() error { return e.Err }

// RemoteDeleteError — неуспех транзакционного удаления: локальная запись
// остаётся на месте, ошибка всегда доводится до вызывающего.
type RemoteDeleteError struct {
	Collection string
	Key        string
	Err        error
}

func (e *RemoteDeleteError) Error() string {
	return fmt.Sprintf("remote delete failed for %s/%s (local copy kept): %v", e.Collection, e.Key, e.Err)
}

func (e *RemoteDeleteError) Unwrap() error { return e.Err }
