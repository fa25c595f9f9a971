package component

// Effect is one active buff or debuff.
type Effect struct {
	Remaining float64 // seconds left, counted down by the running clock
	Payload   map[string]float64
}

// State stores realm, sect membership and timed effects.
type State struct {
	Realm   string
	Sect    string // empty: no sect
	Buffs   map[string]*Effect
	Debuffs map[string]*Effect
}

func NewState(realm string) *State {
	if realm == "" {
		realm = "mortal"
	}
	return &State{
		Realm:   realm,
		Buffs:   make(map[string]*Effect),
		Debuffs: make(map[string]*Effect),
	}
}

func (s *State) HasDebuff(id string) bool {
	_, ok := s.Debuffs[id]
	return ok
}

// Resistance sums the resist_<element> and resist_all payload values of
// every active buff, clamped to [0, 1].
func (s *State) Resistance(element string) float64 {
	r := 0.0
	for _, b := range s.Buffs {
		r += b.Payload["resist_all"]
		if element != "" {
			r += b.Payload["resist_"+element]
		}
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
