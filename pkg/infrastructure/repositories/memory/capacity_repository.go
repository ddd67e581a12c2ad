package memory

import (
	"context"
	"sort"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// LoadCapacitySettings replaces the setting for each (employee, department) pair
func (s *Store) LoadCapacitySettings(ctx context.Context, settings []entities.EmployeeCapacitySetting) error {
	defer s.lockWrite()()

	for _, in := range settings {
		replaced := false
		for i, existing := range s.settings {
			if existing.EmployeeID == in.EmployeeID && existing.Department == in.Department {
				s.settings[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			s.settings = append(s.settings, in)
		}
	}
	return nil
}

// FetchCapacitySettings returns every setting for dept, active or not, ordered by employee id
func (s *Store) FetchCapacitySettings(ctx context.Context, dept entities.Department) ([]entities.EmployeeCapacitySetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.EmployeeCapacitySetting
	for _, setting := range s.settings {
		if setting.Department == dept {
			out = append(out, setting)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}
