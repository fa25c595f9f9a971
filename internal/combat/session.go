package combat

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
)

// Strategy picks the player's action each auto-combat turn.
type Strategy string

const (
	StrategyAggressive Strategy = "aggressive"
	StrategyDefensive  Strategy = "defensive"
	StrategyBalanced   Strategy = "balanced"
	StrategyTechnical  Strategy = "technical"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyAggressive, StrategyDefensive, StrategyBalanced, StrategyTechnical:
		return true
	}
	return false
}

// Label is the display name.
func (s Strategy) Label() string {
	switch s {
	case StrategyAggressive:
		return "激进攻击"
	case StrategyDefensive:
		return "稳健防守"
	case StrategyBalanced:
		return "攻防平衡"
	case StrategyTechnical:
		return "技巧流"
	}
	return string(s)
}

// Action is one player move inside a session.
type Action string

const (
	ActionAttack  Action = "attack"
	ActionSpecial Action = "special"
	ActionHeal    Action = "heal"
	ActionDefend  Action = "defend"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAttack, ActionSpecial, ActionHeal, ActionDefend:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Session is one fight between the player side and an enemy.
type Session struct {
	ID        string
	Player    ecs.EntityID
	Enemy     ecs.EntityID
	Auto      bool
	Strategy  Strategy
	Transient bool // enemy is destroyed when the session ends
	Turn      int  // turns completed

	awaiting bool
	inTurn   bool
	pending  event.CombatResult
	ended    bool
}

// Awaiting reports whether the session is suspended for Intervene.
func (s *Session) Awaiting() bool { return s.awaiting }

// StartOptions adjust a single session.
type StartOptions struct {
	// Transient marks a synthesized enemy owned by the session.
	Transient bool
}

// StartCombat opens a session, emits combat-start and either runs the auto
// loop or asks for the first manual turn. Only the player answers prompts;
// any other entity on the player side always fights on auto without
// intervention.
func (r *Resolver) StartCombat(player, enemy ecs.EntityID, opts StartOptions) (*Session, error) {
	if _, _, ok := r.combatants(player, enemy); !ok {
		if opts.Transient {
			r.world.Destroy(enemy)
		}
		return nil, fmt.Errorf("%w: %d vs %d", ErrNotCombatant, player, enemy)
	}
	s := &Session{
		ID:        uuid.NewString(),
		Player:    player,
		Enemy:     enemy,
		Auto:      r.cfg.Auto || !r.world.IsPlayer(player),
		Strategy:  r.cfg.Strategy,
		Transient: opts.Transient,
	}
	r.sessions[s.ID] = s
	r.logSession("combat started", s, zap.Bool("auto", s.Auto))

	if err := r.bus.Emit(event.TopicCombatStart, event.CombatStart{
		Session:  s.ID,
		Player:   player,
		Enemy:    enemy,
		Auto:     s.Auto,
		Strategy: string(s.Strategy),
	}); err != nil {
		return s, err
	}
	if err := r.bus.Message("与%s展开激战！", r.world.Name(enemy)); err != nil {
		return s, err
	}
	if s.ended {
		return s, nil
	}
	if s.Auto {
		return s, r.run(s)
	}
	return s, r.askManual(s)
}

// Intervene supplies the player's action for a suspended session: an auto
// session at an intervention checkpoint, or a manual session between turns.
// The turn is resolved, then an auto session resumes its loop.
func (r *Resolver) Intervene(sessionID string, action Action) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, sessionID)
	}
	if !s.awaiting {
		return fmt.Errorf("%w: %s", ErrNotAwaitingInput, sessionID)
	}
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}
	s.awaiting = false
	if err := r.bus.Message("玩家选择：%s", action); err != nil {
		return err
	}
	if err := r.turn(s, s.Turn+1, action); err != nil {
		return err
	}
	if s.ended {
		return nil
	}
	if s.Auto {
		return r.run(s)
	}
	return r.askManual(s)
}

// AwaitingFor returns the id of the session waiting on entity's input.
func (r *Resolver) AwaitingFor(entity ecs.EntityID) (string, bool) {
	for _, id := range r.Awaiting() {
		if r.sessions[id].Player == entity {
			return id, true
		}
	}
	return "", false
}

// Awaiting returns the ids of sessions waiting for input, sorted.
func (r *Resolver) Awaiting() []string {
	var out []string
	for _, id := range slices.Sorted(maps.Keys(r.sessions)) {
		if r.sessions[id].awaiting {
			out = append(out, id)
		}
	}
	return out
}

// run is the bounded auto loop. It returns early when the session ends or
// suspends at a checkpoint; running out of turns is a draw.
func (r *Resolver) run(s *Session) error {
	for !s.ended && s.Turn < r.cfg.MaxTurns {
		next := s.Turn + 1
		if r.cfg.Intervention && r.world.IsPlayer(s.Player) && r.checkpoint(s, next) {
			s.awaiting = true
			pa, _ := r.world.Attributes.Get(s.Player)
			ea, _ := r.world.Attributes.Get(s.Enemy)
			r.logSession("combat waiting for intervention", s, zap.Int("turn", next))
			return r.bus.Emit(event.TopicCombatIntervention, event.CombatIntervention{
				Session:      s.ID,
				Turn:         next,
				PlayerHealth: pa.Health,
				EnemyHealth:  ea.Health,
			})
		}
		if err := r.turn(s, next, r.choose(s)); err != nil {
			return err
		}
	}
	if s.ended {
		return nil
	}
	return r.endSession(s, event.ResultDraw)
}

func (r *Resolver) askManual(s *Session) error {
	if s.Turn >= r.cfg.MaxTurns {
		return r.endSession(s, event.ResultDraw)
	}
	s.awaiting = true
	return r.bus.Emit(event.TopicCombatManualTurn, event.CombatManualTurn{Session: s.ID, Turn: s.Turn + 1})
}

// checkpoint: the first turn, the player below 25% health, or the enemy
// below 20%.
func (r *Resolver) checkpoint(s *Session, turn int) bool {
	pa, ea, ok := r.combatants(s.Player, s.Enemy)
	if !ok {
		return false
	}
	return turn == 1 || pa.HealthRatio() < 0.25 || ea.HealthRatio() < 0.2
}

// choose applies the session's strategy.
func (r *Resolver) choose(s *Session) Action {
	pa, ea, ok := r.combatants(s.Player, s.Enemy)
	if !ok {
		return ActionAttack
	}
	own, foe := pa.HealthRatio(), ea.HealthRatio()
	known := r.knowsAny(s.Player)
	switch s.Strategy {
	case StrategyAggressive:
		if foe < 0.3 && known {
			return ActionSpecial
		}
	case StrategyDefensive:
		if own < 0.4 {
			return ActionHeal
		}
		if own < 0.7 {
			return ActionDefend
		}
	case StrategyTechnical:
		if known && r.rng.Float64() < 0.6 {
			return ActionSpecial
		}
	default:
		if own < 0.3 {
			return ActionHeal
		}
		if foe < 0.2 && known {
			return ActionSpecial
		}
	}
	return ActionAttack
}

func (r *Resolver) knowsAny(id ecs.EntityID) bool {
	sk, ok := r.world.Skills.Get(id)
	return ok && len(sk.Abilities) > 0
}

// turn resolves one exchange: the player's action, then the enemy's basic
// attack. Deaths during the turn are held until the turn result is out.
func (r *Resolver) turn(s *Session, n int, action Action) error {
	s.Turn = n
	s.inTurn = true
	done, dealt, err := r.playerAction(s, action)
	if err == nil && s.pending == "" {
		var taken int
		taken, err = r.enemyAttack(s)
		if err == nil {
			err = r.turnResult(s, n, done, dealt, taken)
		}
	} else if err == nil {
		err = r.turnResult(s, n, done, dealt, 0)
	}
	s.inTurn = false
	if err != nil {
		return err
	}
	if s.pending != "" {
		return r.endSession(s, s.pending)
	}
	return nil
}

func (r *Resolver) turnResult(s *Session, n int, action Action, dealt, taken int) error {
	pa, _ := r.world.Attributes.Get(s.Player)
	ea, _ := r.world.Attributes.Get(s.Enemy)
	ev := event.CombatTurnResult{
		Session:      s.ID,
		Turn:         n,
		Action:       string(action),
		PlayerDamage: dealt,
		EnemyDamage:  taken,
	}
	if pa != nil {
		ev.PlayerHealth = pa.Health
	}
	if ea != nil {
		ev.EnemyHealth = ea.Health
	}
	return r.bus.Emit(event.TopicCombatTurnResult, ev)
}

// playerAction performs action and reports what was actually done (a
// special without mana becomes an attack) and the damage dealt, negative
// for healing.
func (r *Resolver) playerAction(s *Session, action Action) (Action, int, error) {
	pa, ea, ok := r.combatants(s.Player, s.Enemy)
	if !ok {
		return action, 0, nil
	}
	if r.frozen(s.Player) {
		return ActionDefend, 0, nil
	}
	switch action {
	case ActionSpecial:
		if pa.Mana < r.cfg.SpecialCost {
			return r.playerAction(s, ActionAttack)
		}
		pa.Mana -= r.cfg.SpecialCost
		base, element := pa.PhysicalAttack/2, ""
		if id := r.pickAbility(s); id != "" {
			if ab, ok := r.data.Ability(id); ok && ab.Effects.Damage > 0 {
				base, element = ab.Effects.Damage, ab.Element
			} else if ss, ok := r.data.SectSkill(id); ok && ss.Effects.Damage > 0 {
				base = ss.Effects.Damage
			}
		}
		res := 0.0
		if st, ok := r.world.State.Get(s.Enemy); ok {
			res = st.Resistance(element)
		}
		dmg, crit := SpellDamage(pa, base, res, r.rng.Float64())
		return ActionSpecial, dmg, r.ApplyDamage(s.Player, s.Enemy, dmg, crit, event.DamageSpell, element, event.CauseCombat)
	case ActionHeal:
		healed, err := r.heal(s.Player, min(r.cfg.HealCap, pa.MaxHealth-pa.Health))
		return ActionHeal, -healed, err
	case ActionDefend:
		return ActionDefend, 0, nil
	default:
		dmg, crit := PhysicalDamage(pa, ea, pa.PhysicalAttack, r.rng.Float64())
		return ActionAttack, dmg, r.ApplyDamage(s.Player, s.Enemy, dmg, crit, event.DamagePhysical, "", event.CauseCombat)
	}
}

// pickAbility: technical picks a random known ability, the others the first.
func (r *Resolver) pickAbility(s *Session) string {
	sk, ok := r.world.Skills.Get(s.Player)
	if !ok {
		return ""
	}
	ids := sk.AbilityIDs()
	if len(ids) == 0 {
		return ""
	}
	if s.Strategy == StrategyTechnical {
		return ids[r.rng.Intn(len(ids))]
	}
	return ids[0]
}

func (r *Resolver) enemyAttack(s *Session) (int, error) {
	ea, pa, ok := r.combatants(s.Enemy, s.Player)
	if !ok || r.frozen(s.Enemy) {
		return 0, nil
	}
	dmg, crit := PhysicalDamage(ea, pa, ea.PhysicalAttack, r.rng.Float64())
	return dmg, r.ApplyDamage(s.Enemy, s.Player, dmg, crit, event.DamagePhysical, "", event.CauseCombat)
}

// onDeath ends every session that references the dead entity.
func (r *Resolver) onDeath(ev event.EntityDeath) error {
	for _, id := range slices.Sorted(maps.Keys(r.sessions)) {
		s := r.sessions[id]
		var result event.CombatResult
		switch ev.Entity {
		case s.Enemy:
			result = event.ResultVictory
		case s.Player:
			result = event.ResultDefeat
		default:
			continue
		}
		if s.inTurn {
			if s.pending == "" {
				s.pending = result
			}
			continue
		}
		if err := r.endSession(s, result); err != nil {
			return err
		}
	}
	return nil
}

// endSession is the single exit for a session: stats, combat-end, message,
// and disposal of a transient enemy.
func (r *Resolver) endSession(s *Session, result event.CombatResult) error {
	if s.ended {
		return nil
	}
	s.ended = true
	s.awaiting = false
	delete(r.sessions, s.ID)

	var msg string
	switch result {
	case event.ResultVictory:
		r.stats.Wins++
		msg = fmt.Sprintf("击败了%s！", r.world.Name(s.Enemy))
	case event.ResultDefeat:
		r.stats.Losses++
		msg = fmt.Sprintf("被%s击败了……", r.world.Name(s.Enemy))
	default:
		r.stats.Draws++
		msg = "战斗超时，双方罢手"
	}
	r.logSession("combat ended", s, zap.String("result", string(result)), zap.Int("turns", s.Turn))

	if s.Transient {
		defer r.world.Destroy(s.Enemy)
	}
	if err := r.bus.Emit(event.TopicCombatEnd, event.CombatEnd{
		Session: s.ID,
		Player:  s.Player,
		Enemy:   s.Enemy,
		Result:  result,
		Turns:   s.Turn,
		Wins:    r.stats.Wins,
		Losses:  r.stats.Losses,
	}); err != nil {
		return err
	}
	return r.bus.Message("%s", msg)
}
