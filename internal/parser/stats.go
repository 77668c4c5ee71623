package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// StatPattern pulls one column out of tooltip HTML. The value is the first
// capture group.
type StatPattern struct {
	Field string
	re    *regexp.Regexp
}

func stat(field, pattern string) StatPattern {
	return StatPattern{Field: field, re: regexp.MustCompile(`(?i)` + pattern)}
}

// damage range is handled separately: one match fills two columns
var damageRe = regexp.MustCompile(`(?i)<!--dmg-->(\d+) - (\d+)`)

// StatPatterns is the column table, in output order.
var StatPatterns = []StatPattern{
	stat("ARMOR", `<!--amr-->(\d+) Armor`),
	stat("STAMINA", `<!--stat7-->\+(\d+) Stamina`),
	stat("STRENGTH", `<!--stat4-->\+(\d+) Strength`),
	stat("AGILITY", `<!--stat3-->\+(\d+) Agility`),
	stat("SPIRIT", `<!--stat6-->\+(\d+) Spirit`),
	stat("INTELLIGENCE", `<!--stat5-->\+(\d+) Intellect`),
	stat("SPEED", `<!--spd-->([\d.]+)`),
	stat("BLOCK_VALUE", `<br>(\d+) Block<br>`),
	stat("RESIST_FIRE", `\+(\d+) Fire Resistance`),
	stat("RESIST_SHADOW", `\+(\d+) Shadow Resistance`),
	stat("RESIST_NATURE", `\+(\d+) Nature Resistance`),
	stat("RESIST_FROST", `\+(\d+) Frost Resistance`),
	stat("RESIST_ARCANE", `\+(\d+) Arcane Resistance`),
	stat("MP5", `Restores (\d+) mana per 5 sec`),
	stat("HEAL_PER_5_SEC", `Restores (\d+) health per 5 sec`),
	stat("HIT_PCT", `chance to hit by (\d+)%`),
	stat("SPELL_HIT", `hit with spells by (\d+)%`),
	stat("CRIT_PCT", `critical strike by (\d+)%`),
	stat("SPELL_CRIT", `critical strike with spells by (\d+)%`),
	stat("ATTACK_POWER", `\+(\d+) Attack Power`),
	stat("R_ATTACK_POWER", `\+(\d+) ranged Attack Power`),
	stat("SPELL_DAMAGE", `damage.*by up to (\d+)`),
	stat("SPELL_HEAL", `Increases healing.*up to (\d+)`),
	stat("SPELL_FROST", `damage done by Frost.*up to (\d+)`),
	stat("SPELL_SHADOW", `damage done by Shadow.*up to (\d+)`),
	stat("SPELL_FIRE", `damage done by Fire.*up to (\d+)`),
	stat("SPELL_NATURE", `damage done by Nature.*up to (\d+)`),
	stat("DEFENSE", `Increased Defense \+(\d+)`),
	stat("DODGE_PCT", `dodge an attack by (\d+)%`),
	stat("PARRY_PCT", `parry an attack by (\d+)%`),
	stat("BLOCK_PCT", `block attacks.*by (\d+)%`),
	stat("SKILL_DAGGER", `Daggers \+(\d+)`),
	stat("SKILL_SWORD", `Swords \+(\d+)`),
	stat("SET", `/classic/item-set=(\d+)/`),
}

// StatColumns lists every column ParseStats can fill, in output order.
func StatColumns() []string {
	cols := []string{"MIN_DAMAGE", "MAX_DAMAGE"}
	for _, p := range StatPatterns {
		cols = append(cols, p.Field)
	}
	return append(cols, "COMMENTS")
}

var commentRes = []struct {
	trigger string
	prefix  string
	re      *regexp.Regexp
}{
	{"Use:", "Use: ", regexp.MustCompile(`(?i)Use:\s*(.+)`)},
	{"Chance on hit:", "Chance on hit: ", regexp.MustCompile(`(?i)Chance on hit:\s*(.+)`)},
	{"When struck", "", regexp.MustCompile(`(?i)(When struck.+)`)},
}

// ParseStats extracts stat columns from one tooltip. Columns without a match
// are absent from the result.
func ParseStats(tooltip string) map[string]string {
	data := make(map[string]string)
	if m := damageRe.FindStringSubmatch(tooltip); m != nil {
		data["MIN_DAMAGE"] = m[1]
		data["MAX_DAMAGE"] = m[2]
	}
	for _, p := range StatPatterns {
		if m := p.re.FindStringSubmatch(tooltip); m != nil {
			data[p.Field] = m[1]
		}
	}
	if _, ok := data["SET"]; !ok {
		// relative or non-classic set links
		if id := ItemSetID(tooltip, SiteBase); id > 0 {
			data["SET"] = strconv.Itoa(id)
		}
	}

	text := TooltipText(tooltip)
	var comments []string
	for _, c := range commentRes {
		if !strings.Contains(text, c.trigger) {
			continue
		}
		if m := c.re.FindStringSubmatch(text); m != nil {
			comments = append(comments, c.prefix+strings.TrimSpace(m[1]))
		}
	}
	if len(comments) > 0 {
		data["COMMENTS"] = strings.Join(comments, "; ")
	}
	return data
}
