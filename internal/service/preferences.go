package service

import (
	"context"

	rep "taskmaster/internal/repository"
)

func (s *TaskService) DarkMode(ctx context.Context) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.state.DarkMode
}

func (s *TaskService) SetDarkMode(ctx context.Context, enabled bool) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.state.DarkMode == enabled {
		return nil
	}
	prev := s.state.Clone()
	s.state.DarkMode = enabled
	return s.commit(ctx, prev, rep.KeyDarkMode)
}

func (s *TaskService) ToggleDarkMode(ctx context.Context) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	prev := s.state.Clone()
	s.state.DarkMode = !s.state.DarkMode
	if err := s.commit(ctx, prev, rep.KeyDarkMode); err != nil {
		return prev.DarkMode, err
	}
	return s.state.DarkMode, nil
}
