package sqlite

import (
	"slices"

	"WikiKeeper/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListHabits возвращает привычки в пользовательском порядке.
func (s *Store) ListHabits() ([]model.Habit, error) {
	var res []model.Habit
	err := s.db.Order("position ASC").Find(&res).Error
	return res, wrap("list habits", err)
}

// PutHabit вставляет или перезаписывает привычку.
func (s *Store) PutHabit(h model.Habit) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&h).Error
	return wrap("put habit", err)
}

// DeleteHabit удаляет привычку и её отметки из лога по дням.
func (s *Store) DeleteHabit(name string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var days []model.HabitDay
		if err := tx.Find(&days).Error; err != nil {
			return err
		}
		for i := range days {
			if !slices.Contains(days[i].Habits, name) {
				continue
			}
			days[i].Habits = slices.DeleteFunc(days[i].Habits, func(v string) bool { return v == name })
			if len(days[i].Habits) == 0 {
				if err := tx.Delete(&model.HabitDay{}, "date = ?", days[i].Date).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&days[i]).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Habit{}, "name = ?", name).Error
	})
	return wrap("delete habit", err)
}

// GetHabitDay возвращает отметки за день.
func (s *Store) GetHabitDay(date string) (*model.HabitDay, error) {
	var d model.HabitDay
	if err := s.db.First(&d, "date = ?", date).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// ListHabitDays возвращает весь разреженный лог, по возрастанию даты.
func (s *Store) ListHabitDays() ([]model.HabitDay, error) {
	var res []model.HabitDay
	err := s.db.Order("date ASC").Find(&res).Error
	return res, wrap("list habit days", err)
}

// PutHabitDay вставляет или перезаписывает отметки за день.
func (s *Store) PutHabitDay(d model.HabitDay) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&d).Error
	return wrap("put habit day", err)
}

// DeleteHabitDay удаляет запись лога за день.
func (s *Store) DeleteHabitDay(date string) error {
	return wrap("delete habit day", s.db.Delete(&model.HabitDay{}, "date = ?", date).Error)
}
