package ratelimit

import (
	"sync"
	"time"
)

// maxViolations предельный размер журнала отказов.
const maxViolations = 1000

// Violation одна запись журнала: кто, откуда и какое действие отклонено.
type Violation struct {
	Time     time.Time // Момент отказа
	Username string    // Имя пользователя
	IP       string    // IP клиента на момент запроса
	Action   Action    // Отклонённое действие
}

// ViolationLog ограниченный FIFO-журнал отказов, общий для всех запросов.
// При переполнении вытесняется самая старая запись; переполнение никогда
// не приводит к ошибке для вызвавшего запроса.
type ViolationLog struct {
	mu      sync.Mutex
	entries []Violation
}

// NewViolationLog создаёт пустой журнал.
func NewViolationLog() *ViolationLog {
	return &ViolationLog{entries: make([]Violation, 0, maxViolations)}
}

// Append добавляет запись в конец журнала, при необходимости вытесняя старейшую.
func (v *ViolationLog) Append(entry Violation) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.entries) >= maxViolations {
		copy(v.entries, v.entries[1:])
		v.entries = v.entries[:len(v.entries)-1]
	}
	v.entries = append(v.entries, entry)
}

// Drain атомарно возвращает снимок журнала в порядке добавления и очищает его.
// Каждая запись доставляется не более одного раза: параллельные Append
// попадают либо в этот снимок, либо в следующий, но не теряются.
func (v *ViolationLog) Drain() []Violation {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.entries) == 0 {
		return nil
	}
	snapshot := make([]Violation, len(v.entries))
	copy(snapshot, v.entries)
	v.entries = v.entries[:0]
	return snapshot
}

// Len возвращает текущее количество записей.
func (v *ViolationLog) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.entries)
}
