package event

import "github.com/l1jgo/cultivation/internal/core/ecs"

// Topic names a bus channel.
type Topic string

// Notifications emitted by the core.
const (
	TopicEntityUpdated      Topic = "entity-updated"
	TopicMessage            Topic = "message"
	TopicDayChanged         Topic = "day-changed"
	TopicMonthChanged       Topic = "month-changed"
	TopicYearChanged        Topic = "year-changed"
	TopicEntityDeath        Topic = "entity-death"
	TopicLifespanWarning    Topic = "lifespan-warning"
	TopicDamageDealt        Topic = "damage-dealt"
	TopicHealingDone        Topic = "healing-done"
	TopicStateApplied       Topic = "state-applied"
	TopicStateExpired       Topic = "state-expired"
	TopicCombatStart        Topic = "combat-start"
	TopicCombatTurnResult   Topic = "combat-turn-result"
	TopicCombatIntervention Topic = "combat-intervention"
	TopicCombatManualTurn   Topic = "combat-manual-turn"
	TopicCombatEnd          Topic = "combat-end"
	TopicEncounterStarted   Topic = "encounter-started"
	TopicExperienceGained   Topic = "experience-gained"
	TopicLevelUp            Topic = "level-up"
	TopicSkillLearned       Topic = "skill-learned"
	TopicRealmBreakthrough  Topic = "realm-breakthrough"
	TopicSectJoined         Topic = "sect-joined"
	TopicItemUsed           Topic = "item-used"
	TopicLocationChanged    Topic = "location-changed"
	TopicEngineStarted      Topic = "engine-started"
	TopicEngineStopped      Topic = "engine-stopped"

	// Recurring scheduler entries.
	TopicDailyCycle       Topic = "daily-cycle"
	TopicMonthlyCycle     Topic = "monthly-cycle"
	TopicWorldStateUpdate Topic = "world-state-update"
	TopicNpcDailyActions  Topic = "npc-daily-actions"
)

// Inputs accepted from external layers.
const (
	TopicRequestCastAbility  Topic = "request-cast-ability"
	TopicRequestAttack       Topic = "request-attack"
	TopicRequestUseItem      Topic = "request-use-item"
	TopicRequestEquip        Topic = "request-equip"
	TopicRequestBreakthrough Topic = "request-breakthrough"
	TopicRequestJoinSect     Topic = "request-join-sect"
	TopicRequestLearn        Topic = "request-learn-technique"
	TopicEncounterChoice     Topic = "encounter-choice"
	TopicSpeedChange         Topic = "speed-change"
	TopicPauseToggle         Topic = "pause-toggle"
	TopicScheduleEvent       Topic = "schedule-event"
)

type Message struct {
	Text string
}

type EntityUpdated struct {
	Entity ecs.EntityID
}

type DayChanged struct {
	OldDay int
	NewDay int
}

type MonthChanged struct {
	OldMonth    int // month of year, 1-12
	NewMonth    int
	Year        int
	TotalMonths int
}

type YearChanged struct {
	OldYear int
	NewYear int
}

// DeathCause says why an entity died.
type DeathCause string

const (
	CauseCombat   DeathCause = "combat"
	CauseOldAge   DeathCause = "old_age"
	CauseAbility  DeathCause = "ability"
	CauseScripted DeathCause = "scripted"
)

type EntityDeath struct {
	Entity ecs.EntityID
	Cause  DeathCause
}

type LifespanWarning struct {
	Entity    ecs.EntityID
	Age       int
	Lifespan  int
	Remaining int
}

// DamageKind distinguishes the two damage formulas.
type DamageKind string

const (
	DamagePhysical DamageKind = "physical"
	DamageSpell    DamageKind = "spell"
)

type DamageDealt struct {
	Attacker ecs.EntityID
	Target   ecs.EntityID
	Damage   int
	Crit     bool
	Kind     DamageKind
	Element  string
}

type HealingDone struct {
	Target ecs.EntityID
	Amount int
}

type StateApplied struct {
	Entity   ecs.EntityID
	StateID  string
	Debuff   bool
	Duration float64
}

type StateExpired struct {
	Entity  ecs.EntityID
	StateID string
	Debuff  bool
}

type CombatStart struct {
	Session  string
	Player   ecs.EntityID
	Enemy    ecs.EntityID
	Auto     bool
	Strategy string
}

type CombatTurnResult struct {
	Session      string
	Turn         int
	Action       string
	PlayerDamage int // negative when the action healed
	EnemyDamage  int
	PlayerHealth int
	EnemyHealth  int
}

type CombatIntervention struct {
	Session      string
	Turn         int
	PlayerHealth int
	EnemyHealth  int
}

type CombatManualTurn struct {
	Session string
	Turn    int
}

// CombatResult is the final state of a combat session.
type CombatResult string

const (
	ResultVictory CombatResult = "victory"
	ResultDefeat  CombatResult = "defeat"
	ResultDraw    CombatResult = "draw"
)

type CombatEnd struct {
	Session string
	Player  ecs.EntityID
	Enemy   ecs.EntityID
	Result  CombatResult
	Turns   int
	Wins    int
	Losses  int
}

type EncounterStarted struct {
	Entity      ecs.EntityID
	EncounterID string
	Name        string
	Description string
	Choices     []string
}

type ExperienceGained struct {
	Entity ecs.EntityID
	Amount int
}

type LevelUp struct {
	Entity ecs.EntityID
	Level  int
}

type SkillLearned struct {
	Entity    ecs.EntityID
	SkillID   string
	Technique bool
}

type RealmBreakthrough struct {
	Entity ecs.EntityID
	From   string
	To     string
}

type SectJoined struct {
	Entity ecs.EntityID
	SectID string
}

type ItemUsed struct {
	Entity ecs.EntityID
	ItemID string
}

type LocationChanged struct {
	Entity   ecs.EntityID
	Location string
}

type EngineStarted struct {
	Day int
}

type EngineStopped struct {
	Day      int
	GameTime float64
}

type DailyCycle struct {
	Day int
}

type MonthlyCycle struct {
	Month int
	Year  int
}

type WorldStateUpdate struct {
	Week int
}

type NpcDailyActions struct {
	Day int
}

type RequestCastAbility struct {
	Caster    ecs.EntityID
	AbilityID string
	Target    ecs.EntityID // zero: self
}

type RequestAttack struct {
	Attacker ecs.EntityID
	Target   ecs.EntityID
}

type RequestUseItem struct {
	Entity ecs.EntityID
	ItemID string
}

type RequestEquip struct {
	Entity ecs.EntityID
	Slot   string
	ItemID string // empty: unequip
}

type RequestBreakthrough struct {
	Entity ecs.EntityID
}

type RequestJoinSect struct {
	Entity ecs.EntityID
	SectID string
}

// RequestLearn names a technique or a sect skill.
type RequestLearn struct {
	Entity  ecs.EntityID
	SkillID string
}

type EncounterChoice struct {
	Entity ecs.EntityID
	Index  int
}

type SpeedChange struct {
	Speed float64
}

// PauseToggle sets the pause flag; a nil Paused flips it.
type PauseToggle struct {
	Paused *bool
}

// ScheduleEvent asks the scheduler to emit Topic with Payload after Delay
// units of game time.
type ScheduleEvent struct {
	Topic   Topic
	Delay   float64
	Payload any
}
