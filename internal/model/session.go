package model

import "time"

// RemoteSession — единственный изменяемый слот учётных данных удалённого
// репозитория. Активна ровно одна сессия или ни одной (строка с ID=1).
// Запись сюда разрешена только OAuth-менеджеру и клиенту репозитория.
type RemoteSession struct {
	ID            int    `gorm:"primaryKey"`
	DID           string `json:"did"`
	Handle        string `json:"handle"`
	AccessToken   string `json:"-"`
	RefreshToken  string `json:"-"`
	TokenExpiry   int64  `json:"tokenExpiry"` // unix millis
	PDSEndpoint   string `json:"pdsEndpoint"`
	AuthServer    string `json:"authServer"`
	TokenEndpoint string `json:"tokenEndpoint"`
}

// Expired сообщает, истекает ли access-токен в ближайшие skew.
// Все читатели сессии обязаны проверять срок перед использованием.
func (s *RemoteSession) Expired(skew time.Duration) bool {
	if s == nil || s.TokenExpiry == 0 {
		return true
	}
	return time.Now().Add(skew).UnixMilli() >= s.TokenExpiry
}

// PendingAuth — состояние незавершённого OAuth-потока. Сохраняется в хранилище,
// чтобы обмен кода мог возобновиться после рестарта процесса (оригинальный
// поток переживает полную навигацию страницы).
type PendingAuth struct {
	ID            int `gorm:"primaryKey"`
	Handle        string
	DID           string
	PDSEndpoint   string
	AuthServer    string
	TokenEndpoint string
	Verifier      string
	State         string
	RedirectURI   string
	CreatedAt     int64
}

// SyncState — последнее известное синхронизированное состояние записи:
// (collection, key) → удалённый rkey + штамп версии, который был отправлен.
type SyncState struct {
	Collection    string `gorm:"primaryKey"`
	Key           string `gorm:"primaryKey"`
	RKey          string
	SyncedAt      int64
	SyncedVersion int64  // UpdatedAt локальной копии на момент успешного push/pull
}
