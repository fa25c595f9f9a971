package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abilitiesYAML = `
abilities:
  - id: fireball
    name: Fireball
    element: fire
    cost:
      mana: 10
    effects:
      damage: 25
  - id: frost
    name: Frost
    element: ice
    effects:
      freeze_duration: 30
`

func TestLoadYAMLIndexesByID(t *testing.T) {
	p := NewProvider()
	require.NoError(t, p.LoadYAML(CategoryAbility, []byte(abilitiesYAML)))

	a, ok := p.Ability("fireball")
	require.True(t, ok)
	assert.Equal(t, "fire", a.Element)
	assert.Equal(t, 10, a.Cost.Mana)
	assert.Equal(t, 25, a.Effects.Damage)

	f, ok := p.Ability("frost")
	require.True(t, ok)
	assert.Equal(t, 30.0, f.Effects.FreezeDuration)
	assert.Equal(t, 2, p.Count(CategoryAbility))

	_, ok = p.Ability("nope")
	assert.False(t, ok)
}

func TestLookupIsCategoryGeneric(t *testing.T) {
	p := NewProvider()
	require.NoError(t, p.LoadYAML(CategoryAbility, []byte(abilitiesYAML)))

	v, ok := p.Lookup(CategoryAbility, "fireball")
	require.True(t, ok)
	a, isAbility := v.(*Ability)
	require.True(t, isAbility)
	assert.Equal(t, "Fireball", a.Name)

	_, ok = p.Lookup(CategoryItem, "fireball")
	assert.False(t, ok)
	_, ok = p.Lookup(Category("bogus"), "fireball")
	assert.False(t, ok)
}

func TestLoadYAMLRejectsBadTables(t *testing.T) {
	p := NewProvider()
	err := p.LoadYAML(CategoryItem, []byte("items:\n  - name: nameless\n"))
	assert.ErrorIs(t, err, ErrMissingID)

	p = NewProvider()
	err = p.LoadYAML(CategoryItem, []byte("items:\n  - id: a\n  - id: a\n"))
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = NewProvider().LoadYAML(Category("bogus"), []byte("{}"))
	assert.ErrorIs(t, err, ErrUnknownTable)

	err = NewProvider().LoadYAML(CategoryItem, []byte("items: [unclosed"))
	assert.Error(t, err)
}

func TestSectFileCarriesBothTables(t *testing.T) {
	raw := `
sects:
  - id: azure
    name: Azure
    skills: [azure_qi]
sect_skills:
  - id: azure_qi
    sect: azure
    power_requirement: 15
`
	p := NewProvider()
	require.NoError(t, p.LoadYAML(CategorySect, []byte(raw)))
	s, ok := p.Sect("azure")
	require.True(t, ok)
	assert.Equal(t, []string{"azure_qi"}, s.Skills)
	sk, ok := p.SectSkill("azure_qi")
	require.True(t, ok)
	assert.Equal(t, 15, sk.PowerRequirement)
}

func TestRejectedTableLeavesNothingBehind(t *testing.T) {
	p := NewProvider()
	err := p.LoadYAML(CategoryItem, []byte("items:\n  - id: herb\n  - id: pill\n  - name: nameless\n"))
	require.ErrorIs(t, err, ErrMissingID)
	_, ok := p.Item("herb")
	assert.False(t, ok)

	err = p.LoadYAML(CategoryItem, []byte("items:\n  - id: herb\n  - id: herb\n"))
	require.ErrorIs(t, err, ErrDuplicateID)
	_, ok = p.Item("herb")
	assert.False(t, ok)

	err = p.LoadYAML(CategorySect, []byte(`
sects:
  - id: azure
sect_skills:
  - sect: azure
`))
	require.ErrorIs(t, err, ErrMissingID)
	_, ok = p.Sect("azure")
	assert.False(t, ok, "a bad skill table rejects the sects beside it")

	require.NoError(t, p.LoadYAML(CategoryItem, []byte("items:\n  - id: herb\n")))
	_, ok = p.Item("herb")
	assert.True(t, ok)
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abilities.yaml"), []byte(abilitiesYAML), 0o644))

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Count(CategoryAbility))
	assert.Equal(t, 0, p.Count(CategoryItem))
	assert.Empty(t, p.Encounters())
}

func TestLoadReportsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.yaml"), []byte("items: [unclosed"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestShippedContentLoads(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "data", "yaml"))
	require.NoError(t, err)

	tmpl, ok := p.CharacterTemplate("player_template")
	require.True(t, ok)
	assert.Equal(t, 100, tmpl.InitialStats.Health)
	assert.Equal(t, "mortal", tmpl.Realm)

	mortal, ok := p.Realm("mortal")
	require.True(t, ok)
	_, ok = p.Realm(mortal.NextRealm)
	assert.True(t, ok, "next realm of mortal must exist")

	for _, e := range p.Encounters() {
		for _, c := range e.Choices {
			var sum float64
			for _, o := range c.Outcomes {
				sum += o.Probability
				for _, g := range o.Rewards.Items {
					_, ok := p.Item(g.ID)
					assert.True(t, ok, "encounter %s grants unknown item %s", e.ID, g.ID)
				}
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "encounter %s choice %q", e.ID, c.Text)
		}
	}

	for _, id := range []string{"azure_cloud", "lotus_temple"} {
		sect, ok := p.Sect(id)
		require.True(t, ok, id)
		for _, skill := range sect.Skills {
			sk, ok := p.SectSkill(skill)
			require.True(t, ok, skill)
			assert.Equal(t, sect.ID, sk.Sect)
		}
	}
	for _, id := range []string{"iron_body", "tiger_fist", "deep_meditation"} {
		tech, ok := p.Technique(id)
		require.True(t, ok, id)
		_, ok = p.Technique(tech.Prerequisite)
		assert.True(t, ok, "prerequisite of %s", id)
	}

	ids := p.NPCTemplateIDs()
	require.NotEmpty(t, ids)
	elder, ok := p.NPCTemplate("mysterious_elder")
	require.True(t, ok)
	assert.Equal(t, IntRange{120, 240}, elder.InitialStats.AgeRange)
}
