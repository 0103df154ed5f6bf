package monster_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
)

const abolethJSON = `{
	"index": "aboleth",
	"name": "Aboleth",
	"size": "Large",
	"type": "aberration",
	"alignment": "lawful evil",
	"armor_class": [{"type": "natural", "value": 17}],
	"hit_points": 135,
	"hit_dice": "18d10",
	"speed": {"walk": "10 ft.", "swim": "40 ft."},
	"strength": 21,
	"dexterity": 9,
	"constitution": 15,
	"intelligence": 18,
	"wisdom": 15,
	"charisma": 18,
	"proficiencies": [
		{"value": 6, "proficiency": {"index": "saving-throw-con", "name": "Saving Throw: CON", "url": "/api/proficiencies/saving-throw-con"}}
	],
	"damage_resistances": [],
	"damage_immunities": [],
	"languages": "Deep Speech, telepathy 120 ft.",
	"challenge_rating": 10,
	"xp": 5900,
	"special_abilities": [{"name": "Amphibious", "desc": "The aboleth can breathe air and water."}],
	"actions": [{"name": "Multiattack", "desc": "The aboleth makes three tentacle attacks."}],
	"legendary_actions": [{"name": "Detect", "desc": "The aboleth makes a Wisdom (Perception) check."}],
	"image": "/api/images/monsters/aboleth.png"
}`

func TestRecordDecode(t *testing.T) {
	var rec monster.Record
	require.NoError(t, json.Unmarshal([]byte(abolethJSON), &rec))

	assert.Equal(t, "aboleth", rec.Index)
	assert.Equal(t, 10.0, rec.ChallengeRating)
	require.NotNil(t, rec.XP)
	assert.Equal(t, 5900, *rec.XP)

	ac, ok := rec.ArmorClass()
	assert.True(t, ok)
	assert.Equal(t, 17, ac.Value)
	assert.Equal(t, "natural", ac.Type)

	assert.Equal(t, "walk 10 ft., swim 40 ft.", rec.Speed.String())
	assert.Equal(t, []string{"Saving Throw: CON"}, rec.ProficiencyNames())
	assert.Len(t, rec.LegendaryActions, 1)
	assert.Equal(t, "/api/images/monsters/aboleth.png", rec.Image)
	assert.Equal(t, monster.EntityType, rec.GetType())
	assert.Equal(t, "aboleth", rec.GetID())
}

func TestRecordDecode_FractionalChallengeRating(t *testing.T) {
	var rec monster.Record
	require.NoError(t, json.Unmarshal([]byte(`{"index":"rat","name":"Rat","challenge_rating":0.125}`), &rec))

	assert.Equal(t, 0.125, rec.ChallengeRating)
	assert.Nil(t, rec.XP)
	_, ok := rec.ArmorClass()
	assert.False(t, ok)
}

func TestSpeed_PreservesOrder(t *testing.T) {
	var speed monster.Speed
	require.NoError(t, json.Unmarshal([]byte(`{"walk":"30 ft.","fly":"60 ft.","hover":true,"burrow":"10 ft."}`), &speed))

	require.Len(t, speed, 4)
	assert.Equal(t, "walk", speed[0].Mode)
	assert.Equal(t, "fly", speed[1].Mode)
	assert.Equal(t, "true", speed[2].Value)
	assert.Equal(t, "burrow", speed[3].Mode)

	fly, ok := speed.Get("fly")
	assert.True(t, ok)
	assert.Equal(t, "60 ft.", fly)

	_, ok = speed.Get("swim")
	assert.False(t, ok)

	out, err := json.Marshal(speed)
	require.NoError(t, err)
	assert.Equal(t, `{"walk":"30 ft.","fly":"60 ft.","hover":"true","burrow":"10 ft."}`, string(out))
}

func TestSpeed_RejectsNonObject(t *testing.T) {
	var speed monster.Speed
	assert.Error(t, json.Unmarshal([]byte(`["walk"]`), &speed))
}

func TestSpeed_Null(t *testing.T) {
	var speed monster.Speed
	require.NoError(t, json.Unmarshal([]byte(`null`), &speed))
	assert.Empty(t, speed)
}

func TestAbilityModifier(t *testing.T) {
	testCases := []struct {
		score int
		want  int
	}{
		{score: 1, want: -5},
		{score: 3, want: -4},
		{score: 8, want: -1},
		{score: 9, want: -1},
		{score: 10, want: 0},
		{score: 11, want: 0},
		{score: 12, want: 1},
		{score: 21, want: 5},
		{score: 30, want: 10},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, monster.AbilityModifier(tc.score), "score %d", tc.score)
	}
}

func TestFormatModifier(t *testing.T) {
	assert.Equal(t, "+0", monster.FormatModifier(0))
	assert.Equal(t, "+5", monster.FormatModifier(5))
	assert.Equal(t, "-1", monster.FormatModifier(-1))
}

func TestAbilities(t *testing.T) {
	rec := &monster.Record{Strength: 21, Dexterity: 9, Constitution: 15, Intelligence: 18, Wisdom: 15, Charisma: 18}

	abilities := rec.Abilities()
	require.Len(t, abilities, 6)
	assert.Equal(t, "STR", abilities[0].Label)
	assert.Equal(t, 5, abilities[0].Modifier())
	assert.Equal(t, "DEX", abilities[1].Label)
	assert.Equal(t, -1, abilities[1].Modifier())
	assert.Equal(t, "CHA", abilities[5].Label)
}

func TestEntities(t *testing.T) {
	refs := []*monster.Ref{{Index: "aboleth"}, {Index: "bat"}}
	pool := monster.RefEntities(refs)
	require.Len(t, pool, 2)
	assert.Equal(t, "bat", pool[1].GetID())

	records := []*monster.Record{{Index: "owl"}}
	assert.Equal(t, "owl", monster.RecordEntities(records)[0].GetID())
}

