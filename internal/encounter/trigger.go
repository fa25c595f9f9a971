package encounter

import (
	"errors"
	"fmt"

	"github.com/l1jgo/cultivation/internal/component"
)

// TriggerKind tags the Trigger variants.
type TriggerKind uint8

const (
	TriggerLocation TriggerKind = iota + 1
	TriggerAttribute
	TriggerTime
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerLocation:
		return "location"
	case TriggerAttribute:
		return "attribute"
	case TriggerTime:
		return "time"
	}
	return fmt.Sprintf("TriggerKind(%d)", uint8(k))
}

// Comparator is the relation an attribute trigger tests.
type Comparator string

const (
	AtLeast Comparator = ">="
	AtMost  Comparator = "<="
	Equal   Comparator = "=="
)

// Trigger gates an encounter selection attempt. Only the fields of its Kind
// are meaningful.
type Trigger struct {
	Kind TriggerKind

	Location string // TriggerLocation

	Attribute string     // TriggerAttribute, a component.Attributes content name
	Threshold int        // TriggerAttribute
	Cmp       Comparator // TriggerAttribute

	Period int // TriggerTime, in days
}

func LocationTrigger(location string) Trigger {
	return Trigger{Kind: TriggerLocation, Location: location}
}

func AttributeTrigger(attribute string, threshold int, cmp Comparator) Trigger {
	return Trigger{Kind: TriggerAttribute, Attribute: attribute, Threshold: threshold, Cmp: cmp}
}

func TimeTrigger(period int) Trigger {
	return Trigger{Kind: TriggerTime, Period: period}
}

// DefaultTriggers is the stock trigger list: mountain or wilderness travel,
// low health, and every seventh day.
func DefaultTriggers() []Trigger {
	return []Trigger{
		LocationTrigger("mountain"),
		LocationTrigger("wilderness"),
		AttributeTrigger("health", 30, AtMost),
		TimeTrigger(7),
	}
}

// Context is what a check knows about the moment it runs. A daily check
// carries Day, a location check carries Location.
type Context struct {
	Day      int
	Location string
}

// Satisfied evaluates t for an entity with attributes attr.
func (t Trigger) Satisfied(attr *component.Attributes, ctx Context) bool {
	switch t.Kind {
	case TriggerLocation:
		return ctx.Location != "" && ctx.Location == t.Location
	case TriggerAttribute:
		if attr == nil {
			return false
		}
		v, ok := attr.Value(t.Attribute)
		if !ok {
			return false
		}
		switch t.Cmp {
		case AtLeast:
			return v >= t.Threshold
		case AtMost:
			return v <= t.Threshold
		case Equal:
			return v == t.Threshold
		}
		return false
	case TriggerTime:
		return t.Period > 0 && ctx.Day > 0 && ctx.Day%t.Period == 0
	}
	return false
}

// Validate reports a trigger that can never be evaluated.
func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerLocation:
		if t.Location == "" {
			return errors.New("location trigger without location")
		}
	case TriggerAttribute:
		if _, ok := (&component.Attributes{}).Value(t.Attribute); !ok {
			return fmt.Errorf("attribute trigger: unknown attribute %q", t.Attribute)
		}
		switch t.Cmp {
		case AtLeast, AtMost, Equal:
		default:
			return fmt.Errorf("attribute trigger: unknown comparator %q", t.Cmp)
		}
	case TriggerTime:
		if t.Period <= 0 {
			return fmt.Errorf("time trigger: period must be positive, got %d", t.Period)
		}
	default:
		return fmt.Errorf("unknown trigger kind %s", t.Kind)
	}
	return nil
}
