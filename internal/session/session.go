package session

import (
	"sync"

	"github.com/google/uuid"
)

// Settings - настройки сеанса, которые раньше жили в глобальном
// состоянии UI. Передаются в вызовы явно, а не амбиентно.
type Settings struct {
	DefaultRecipient string `json:"default_recipient"`
	BidEmail         string `json:"bid_email"`
	BidPhone         string `json:"bid_phone"`
	Theme            string `json:"theme"`
}

// Store хранит настройки по токену сеанса. Процесс один, поэтому
// достаточно памяти под мьютексом.
type Store struct {
	mu       sync.RWMutex
	defaults Settings
	sessions map[string]Settings
}

// NewStore создаёт хранилище сеансов с настройками по умолчанию.
func NewStore(defaults Settings) *Store {
	if defaults.DefaultRecipient == "" {
		defaults.DefaultRecipient = "Procurement Team"
	}
	if defaults.Theme == "" {
		defaults.Theme = "Light"
	}
	return &Store{
		defaults: defaults,
		sessions: make(map[string]Settings),
	}
}

// NewSession открывает новый сеанс и возвращает его токен.
func (s *Store) NewSession() string {
	token := uuid.New().String()
	s.mu.Lock()
	s.sessions[token] = s.defaults
	s.mu.Unlock()
	return token
}

// Get возвращает настройки сеанса; неизвестный токен получает значения
// по умолчанию.
func (s *Store) Get(token string) Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.sessions[token]; ok {
		return settings
	}
	return s.defaults
}

// Put сохраняет настройки сеанса.
func (s *Store) Put(token string, settings Settings) {
	s.mu.Lock()
	s.sessions[token] = settings
	s.mu.Unlock()
}
