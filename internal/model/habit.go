package model

// Habit — привычка. Имя уникально, Position задаёт порядок в списке.
type Habit struct {
	Name     string `gorm:"primaryKey" json:"name"`
	Position int    `json:"position"`
}

// HabitDay — разреженная запись лога: имена привычек, отмеченных в этот день.
// Присутствие имени под датой означает «выполнено».
type HabitDay struct {
	Date      string   `gorm:"primaryKey" json:"date"` // YYYY-MM-DD
	Habits    []string `gorm:"serializer:json" json:"habits"`
	UpdatedAt int64    `gorm:"autoUpdateTime:false" json:"updatedAt"`
}
