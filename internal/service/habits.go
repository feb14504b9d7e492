package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"WikiKeeper/internal/model"
)

// GetHabits возвращает привычки в пользовательском порядке.
func (w *Wiki) GetHabits() ([]model.Habit, error) {
	return w.store.ListHabits()
}

// AddHabit добавляет привычку в конец списка. Имя уникально в наборе.
func (w *Wiki) AddHabit(name string) error {
	if name == "" {
		return &model.ValidationError{Field: "habit", Reason: "is required"}
	}
	habits, err := w.store.ListHabits()
	if err != nil {
		return err
	}
	for _, h := range habits {
		if h.Name == name {
			return &model.ValidationError{Field: "habit", Reason: "already exists"}
		}
	}
	h := model.Habit{Name: name, Position: len(habits)}
	if err := w.store.PutHabit(h); err != nil {
		return err
	}
	w.syncer.SyncBestEffort(model.CollectionHabit, name)
	return nil
}

// RemoveHabit удаляет привычку и её отметки (транзакционно с удалённой стороной).
func (w *Wiki) RemoveHabit(ctx context.Context, name string) error {
	if err := w.syncer.SyncTransactionalDelete(ctx, model.CollectionHabit, name); err != nil {
		return err
	}
	days, err := w.store.ListHabitDays()
	if err != nil {
		return err
	}
	if err := w.store.DeleteHabit(name); err != nil {
		return err
	}
	for _, d := range days {
		if slices.Contains(d.Habits, name) {
			w.syncer.SyncBestEffort(model.CollectionHabitDay, d.Date)
		}
	}
	return nil
}

// GetHabitLog возвращает разреженный лог date → имена выполненных привычек.
// Пустые дни при чтении считаются отсутствующими.
func (w *Wiki) GetHabitLog() (map[string][]string, error) {
	days, err := w.store.ListHabitDays()
	if err != nil {
		return nil, err
	}
	log := make(map[string][]string, len(days))
	for _, d := range days {
		if len(d.Habits) > 0 {
			log[d.Date] = d.Habits
		}
	}
	return log, nil
}

// ToggleHabit переключает отметку «выполнено» за день. Идемпотентно:
// двойное переключение возвращает исходное состояние.
func (w *Wiki) ToggleHabit(date, habit string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return &model.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if habit == "" {
		return &model.ValidationError{Field: "habit", Reason: "is required"}
	}

	day, err := w.store.GetHabitDay(date)
	if errors.Is(err, model.ErrNotFound) {
		day = &model.HabitDay{Date: date}
	} else if err != nil {
		return err
	}

	if slices.Contains(day.Habits, habit) {
		day.Habits = slices.DeleteFunc(day.Habits, func(v string) bool { return v == habit })
	} else {
		day.Habits = append(day.Habits, habit)
	}
	day.UpdatedAt = bumpAfter(day.UpdatedAt)

	if err := w.store.PutHabitDay(*day); err != nil {
		return err
	}
	w.syncer.SyncBestEffort(model.CollectionHabitDay, date)
	return nil
}
