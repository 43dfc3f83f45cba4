package safety

import (
	"strings"
	"unicode"
)

// Category names why a message falls outside workplace coaching.
type Category string

const (
	None     Category = ""
	Violence Category = "violence"
	Harm     Category = "harm"
	Health   Category = "health"
)

// Checked in order; the first category with a matching word wins.
var rules = []struct {
	category Category
	words    []string
}{
	{Violence, []string{
		"beat", "beats", "beating", "hit", "hits", "hitting", "punch", "punched", "slap", "slapped",
		"kick", "kicked", "physical", "physically", "hurt", "hurts", "injury", "injured",
		"violence", "violent", "assault", "assaulted", "attack", "attacked",
	}},
	{Harm, []string{
		"kill", "killing", "murder", "suicide", "suicidal", "weapon", "weapons", "gun", "guns",
		"knife", "blood", "stab", "stabbed", "threat", "threats", "threatened", "threatening",
		"harass", "harassed", "harassing", "harassment",
	}},
	{Health, []string{
		"headache", "headaches", "sick", "pain", "fever", "medication", "medicine", "doctor", "hospital",
	}},
}

var index = func() map[string]Category {
	m := make(map[string]Category)
	for i := len(rules) - 1; i >= 0; i-- {
		for _, w := range rules[i].words {
			m[w] = rules[i].category
		}
	}
	return m
}()

var replies = map[Category]string{
	Violence: `⚠️ **This is serious.** Physical violence at work is illegal and unacceptable.

Please take action immediately:
• Document everything (dates, witnesses, injuries)
• Report to HR or higher management NOW
• Contact workplace violence hotline: 1-800-799-7233
• If you're in immediate danger, call 911

This isn't a communication issue, it's workplace abuse. I can't coach you through this, but I strongly urge you to protect yourself and report this.`,

	Harm: `⚠️ I'm concerned about what you've shared. If you're in immediate danger or witnessing illegal activity, please contact:

• Emergency Services: 911
• National Suicide Prevention Lifeline: 988
• Workplace Violence Hotline: 1-800-799-7233

I'm designed to help with workplace communication challenges, not crisis or safety situations. Please reach out to professionals who can provide proper support.`,

	Health: "I'm specifically designed for workplace communication challenges. For health concerns, please consult a medical professional. Can we focus on a work-related communication or teamwork challenge instead?",
}

// Screen matches whole words, so "white" never trips "hit".
func Screen(text string) Category {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	found := None
	for _, w := range words {
		c, ok := index[w]
		if !ok {
			continue
		}
		if found == None || rank(c) < rank(found) {
			found = c
		}
	}
	return found
}

// Reply is the canned answer for a flagged category, empty for None.
func Reply(c Category) string {
	return replies[c]
}

func rank(c Category) int {
	for i, r := range rules {
		if r.category == c {
			return i
		}
	}
	return len(rules)
}
