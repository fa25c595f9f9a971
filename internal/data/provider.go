package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Category names one template table.
type Category string

const (
	CategoryCharacterTemplate Category = "character_template"
	CategoryAbility           Category = "ability"
	CategoryTechnique         Category = "technique"
	CategoryItem              Category = "item"
	CategoryRealm             Category = "realm"
	CategoryEncounter         Category = "encounter"
	CategorySect              Category = "sect"
	CategorySectSkill         Category = "sect_skill"
	CategoryNPCTemplate       Category = "npc_template"
)

// Files maps each category to its YAML file name under the data directory.
// Sects and sect skills share one file.
var Files = map[Category]string{
	CategoryCharacterTemplate: "character_templates.yaml",
	CategoryAbility:           "abilities.yaml",
	CategoryTechnique:         "techniques.yaml",
	CategoryItem:              "items.yaml",
	CategoryRealm:             "realms.yaml",
	CategoryEncounter:         "encounters.yaml",
	CategorySect:              "sects.yaml",
	CategoryNPCTemplate:       "npc_templates.yaml",
}

var (
	ErrMissingID    = errors.New("template without id")
	ErrDuplicateID  = errors.New("duplicate template id")
	ErrUnknownTable = errors.New("unknown template category")
)

// Provider holds all static content, indexed by id. It is filled once at
// startup and read-only afterwards; lookups hand out shared pointers that
// callers must not mutate.
type Provider struct {
	characters   map[string]*CharacterTemplate
	abilities    map[string]*Ability
	techniques   map[string]*Technique
	items        map[string]*Item
	realms       map[string]*Realm
	encounters   map[string]*Encounter
	sects        map[string]*Sect
	sectSkills   map[string]*SectSkill
	npcTemplates map[string]*NPCTemplate
}

func NewProvider() *Provider {
	return &Provider{
		characters:   make(map[string]*CharacterTemplate),
		abilities:    make(map[string]*Ability),
		techniques:   make(map[string]*Technique),
		items:        make(map[string]*Item),
		realms:       make(map[string]*Realm),
		encounters:   make(map[string]*Encounter),
		sects:        make(map[string]*Sect),
		sectSkills:   make(map[string]*SectSkill),
		npcTemplates: make(map[string]*NPCTemplate),
	}
}

// Load reads every known table from dir. Missing files leave their table
// empty; malformed files are an error.
func Load(dir string) (*Provider, error) {
	p := NewProvider()
	cats := make([]Category, 0, len(Files))
	for c := range Files {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, c := range cats {
		path := filepath.Join(dir, Files[c])
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := p.LoadYAML(c, raw); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return p, nil
}

// --- YAML loading ---

type characterFile struct {
	Templates []*CharacterTemplate `yaml:"templates"`
}

type abilityFile struct {
	Abilities []*Ability `yaml:"abilities"`
}

type techniqueFile struct {
	Techniques []*Technique `yaml:"techniques"`
}

type itemFile struct {
	Items []*Item `yaml:"items"`
}

type realmFile struct {
	Realms []*Realm `yaml:"realms"`
}

type encounterFile struct {
	Encounters []*Encounter `yaml:"encounters"`
}

type sectFile struct {
	Sects      []*Sect      `yaml:"sects"`
	SectSkills []*SectSkill `yaml:"sect_skills"`
}

type npcFile struct {
	NPCTemplates []*NPCTemplate `yaml:"npc_templates"`
}

// LoadYAML parses one table document and merges it into p.
func (p *Provider) LoadYAML(c Category, raw []byte) error {
	switch c {
	case CategoryCharacterTemplate:
		var f characterFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		return index(p.characters, c, f.Templates, func(t *CharacterTemplate) string { return t.ID })
	case CategoryAbility:
		var f abilityFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		return index(p.abilities, c, f.Abilities, func(a *Ability) string { return a.ID })
	case CategoryTechnique:
		var f techniqueFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		return index(p.techniques, c, f.Techniques, func(t *Technique) string { return t.ID })
	case CategoryItem:
		var f itemFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		return index(p.items, c, f.Items, func(it *Item) string { return it.ID })
	case CategoryRealm:
		var f realmFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		return index(p.realms, c, f.Realms, func(r *Realm) string { return r.ID })
	case CategoryEncounter:
		var f encounterFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		return index(p.encounters, c, f.Encounters, func(e *Encounter) string { return e.ID })
	case CategorySect, CategorySectSkill:
		var f sectFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		sectID := func(s *Sect) string { return s.ID }
		skillID := func(s *SectSkill) string { return s.ID }
		if err := validate(p.sects, CategorySect, f.Sects, sectID); err != nil {
			return err
		}
		if err := validate(p.sectSkills, CategorySectSkill, f.SectSkills, skillID); err != nil {
			return err
		}
		insert(p.sects, f.Sects, sectID)
		insert(p.sectSkills, f.SectSkills, skillID)
		return nil
	case CategoryNPCTemplate:
		var f npcFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parse %s: %w", c, err)
		}
		return index(p.npcTemplates, c, f.NPCTemplates, func(t *NPCTemplate) string { return t.ID })
	}
	return fmt.Errorf("%w: %s", ErrUnknownTable, c)
}

// index adds entries to dst, or nothing at all if any entry is rejected.
func index[T any](dst map[string]*T, c Category, entries []*T, id func(*T) string) error {
	if err := validate(dst, c, entries, id); err != nil {
		return err
	}
	insert(dst, entries, id)
	return nil
}

// validate rejects a missing id or one already in dst or earlier in entries.
func validate[T any](dst map[string]*T, c Category, entries []*T, id func(*T) string) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e == nil {
			continue
		}
		key := id(e)
		if key == "" {
			return fmt.Errorf("%w: %s entry %d", ErrMissingID, c, i)
		}
		_, dup := dst[key]
		if _, again := seen[key]; dup || again {
			return fmt.Errorf("%w: %s %q", ErrDuplicateID, c, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func insert[T any](dst map[string]*T, entries []*T, id func(*T) string) {
	for _, e := range entries {
		if e != nil {
			dst[id(e)] = e
		}
	}
}

// --- Lookups ---

// Lookup is the category-generic accessor. It returns the template pointer
// (e.g. *Ability) or false when the id is unknown.
func (p *Provider) Lookup(c Category, id string) (any, bool) {
	switch c {
	case CategoryCharacterTemplate:
		return lookup(p.characters, id)
	case CategoryAbility:
		return lookup(p.abilities, id)
	case CategoryTechnique:
		return lookup(p.techniques, id)
	case CategoryItem:
		return lookup(p.items, id)
	case CategoryRealm:
		return lookup(p.realms, id)
	case CategoryEncounter:
		return lookup(p.encounters, id)
	case CategorySect:
		return lookup(p.sects, id)
	case CategorySectSkill:
		return lookup(p.sectSkills, id)
	case CategoryNPCTemplate:
		return lookup(p.npcTemplates, id)
	}
	return nil, false
}

func lookup[T any](m map[string]*T, id string) (any, bool) {
	v, ok := m[id]
	if !ok {
		return nil, false
	}
	return v, true
}

func (p *Provider) CharacterTemplate(id string) (*CharacterTemplate, bool) {
	t, ok := p.characters[id]
	return t, ok
}

func (p *Provider) Ability(id string) (*Ability, bool) {
	a, ok := p.abilities[id]
	return a, ok
}

func (p *Provider) Technique(id string) (*Technique, bool) {
	t, ok := p.techniques[id]
	return t, ok
}

func (p *Provider) Item(id string) (*Item, bool) {
	it, ok := p.items[id]
	return it, ok
}

func (p *Provider) Realm(id string) (*Realm, bool) {
	r, ok := p.realms[id]
	return r, ok
}

func (p *Provider) Encounter(id string) (*Encounter, bool) {
	e, ok := p.encounters[id]
	return e, ok
}

// Encounters returns every encounter sorted by id.
func (p *Provider) Encounters() []*Encounter {
	out := make([]*Encounter, 0, len(p.encounters))
	for _, e := range p.encounters {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (p *Provider) Sect(id string) (*Sect, bool) {
	s, ok := p.sects[id]
	return s, ok
}

func (p *Provider) SectSkill(id string) (*SectSkill, bool) {
	s, ok := p.sectSkills[id]
	return s, ok
}

func (p *Provider) NPCTemplate(id string) (*NPCTemplate, bool) {
	t, ok := p.npcTemplates[id]
	return t, ok
}

// NPCTemplateIDs returns the NPC template ids sorted.
func (p *Provider) NPCTemplateIDs() []string {
	out := make([]string, 0, len(p.npcTemplates))
	for id := range p.npcTemplates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of templates in a table.
func (p *Provider) Count(c Category) int {
	switch c {
	case CategoryCharacterTemplate:
		return len(p.characters)
	case CategoryAbility:
		return len(p.abilities)
	case CategoryTechnique:
		return len(p.techniques)
	case CategoryItem:
		return len(p.items)
	case CategoryRealm:
		return len(p.realms)
	case CategoryEncounter:
		return len(p.encounters)
	case CategorySect:
		return len(p.sects)
	case CategorySectSkill:
		return len(p.sectSkills)
	case CategoryNPCTemplate:
		return len(p.npcTemplates)
	}
	return 0
}
