package component

import "sort"

// Skills holds learned ability and technique ids.
type Skills struct {
	Abilities  map[string]struct{}
	Techniques map[string]struct{}
}

func NewSkills() *Skills {
	return &Skills{
		Abilities:  make(map[string]struct{}),
		Techniques: make(map[string]struct{}),
	}
}

// LearnAbility adds id and reports whether it was new.
func (s *Skills) LearnAbility(id string) bool {
	if _, ok := s.Abilities[id]; ok {
		return false
	}
	s.Abilities[id] = struct{}{}
	return true
}

// LearnTechnique adds id and reports whether it was new.
func (s *Skills) LearnTechnique(id string) bool {
	if _, ok := s.Techniques[id]; ok {
		return false
	}
	s.Techniques[id] = struct{}{}
	return true
}

func (s *Skills) KnowsAbility(id string) bool {
	_, ok := s.Abilities[id]
	return ok
}

func (s *Skills) KnowsTechnique(id string) bool {
	_, ok := s.Techniques[id]
	return ok
}

// AbilityIDs returns the learned abilities sorted by id.
func (s *Skills) AbilityIDs() []string {
	return sortedKeys(s.Abilities)
}

// TechniqueIDs returns the learned techniques sorted by id.
func (s *Skills) TechniqueIDs() []string {
	return sortedKeys(s.Techniques)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
