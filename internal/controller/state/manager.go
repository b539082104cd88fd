package state

import (
	"sync"
)

// Manager управляет состояниями диалогов по chatID
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData
}

func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
	}
}

// GetState получает текущее состояние чата
func (sm *Manager) GetState(chatID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[chatID]; exists {
		return userData.State
	}
	return StateNone
}

// SetDialog целиком заменяет состояние и данные чата под одной блокировкой,
// так что Take не увидит состояние без данных
func (sm *Manager) SetDialog(chatID int64, state UserState, data map[string]interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, chatID)
		return
	}

	copied := make(map[string]interface{}, len(data))
	for k, v := range data {
		copied[k] = v
	}
	sm.states[chatID] = &UserData{State: state, Data: copied}
}

// Take атомарно забирает данные диалога и очищает состояние.
// Нужен, чтобы один вопрос не проверялся дважды при параллельных ответах.
func (sm *Manager) Take(chatID int64, expected UserState) (map[string]interface{}, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	userData, exists := sm.states[chatID]
	if !exists || userData.State != expected {
		return nil, false
	}
	delete(sm.states, chatID)
	return userData.Data, true
}

// ClearState очищает состояние и данные чата
func (sm *Manager) ClearState(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, chatID)
}
