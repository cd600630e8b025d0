package domain

import "strings"

// Category tags which template pool an announcement is drawn from. A closed
// enumeration: invalid categories are unrepresentable past the parse boundary.
type Category int

const (
	// CategoryVictim is the ordinary announcement for a drawn victim.
	CategoryVictim Category = iota
	// CategoryOwner is the announcement when the draw lands on the owner/admin.
	CategoryOwner
	// CategoryOnlyOwner is the response to a non-privileged invoker of a
	// privileged command.
	CategoryOnlyOwner
	// CategoryCant is the response when the daily quota is spent.
	CategoryCant
)

var categoryKeys = map[Category]string{
	CategoryVictim:    "victim",
	CategoryOwner:     "owner",
	CategoryOnlyOwner: "only_owner",
	CategoryCant:      "cant",
}

func (c Category) String() string {
	if k, ok := categoryKeys[c]; ok {
		return k
	}
	return "victim"
}

// Categories lists every phrase category in a stable order.
func Categories() []Category {
	return []Category{CategoryVictim, CategoryOwner, CategoryOnlyOwner, CategoryCant}
}

// ParseCategory maps a user-supplied name to a category. "admin" is accepted
// as an alias for the owner category.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "victim":
		return CategoryVictim, true
	case "owner", "admin":
		return CategoryOwner, true
	case "only_owner":
		return CategoryOnlyOwner, true
	case "cant":
		return CategoryCant, true
	}
	return CategoryVictim, false
}

// PhraseSource selects which pool a chat draws announcement templates from.
type PhraseSource string

const (
	SourceAll     PhraseSource = "all" // builtin + custom, the default
	SourceBuiltin PhraseSource = "builtin"
	SourceCustom  PhraseSource = "custom"
)

func ParsePhraseSource(s string) (PhraseSource, bool) {
	switch PhraseSource(strings.ToLower(strings.TrimSpace(s))) {
	case SourceAll:
		return SourceAll, true
	case SourceBuiltin:
		return SourceBuiltin, true
	case SourceCustom:
		return SourceCustom, true
	}
	return SourceAll, false
}

// mentionPlaceholder is the single substitution slot in every template.
const mentionPlaceholder = "{mention}"

// FormatPhrase substitutes the victim's mention text into a template.
func FormatPhrase(tpl, mention string) string {
	return strings.ReplaceAll(tpl, mentionPlaceholder, mention)
}

// SelfTargetPrefix is prepended when the invoker draws themselves.
const SelfTargetPrefix = "Looks like someone volunteered as tribute today!"

// AutorunPrefix flavors announcements fired by the idle scheduler.
const AutorunPrefix = "🤖 Nobody ran the draw for a while, so I did it myself."

var builtinPhrases = map[Category][]string{
	CategoryVictim: {
		"🎯 Fate has spoken: {mention} is the victim of the day!",
		"The wheel stops at {mention}. No appeals.",
		"{mention}, the chat has chosen you. Accept your destiny.",
		"Today's sacrifice, courtesy of pure randomness: {mention}.",
		"All hail {mention}, victim of the day!",
		"🎲 The dice never lie: {mention} takes the hit today.",
	},
	CategoryOwner: {
		"👑 Plot twist: the boss {mention} is today's victim!",
		"Even the throne is not safe. {mention}, you are the victim of the day.",
		"Power comes with responsibility: {mention} takes today's hit.",
	},
	CategoryOnlyOwner: {
		"Only the chat owner or a trusted picker can do that.",
		"Nice try, but this button belongs to the owner and trusted pickers.",
	},
	CategoryCant: {
		"The daily draw limit is spent. Come back tomorrow.",
		"No more picks today. The wheel needs rest.",
	},
}

// BuiltinPhrases returns the built-in template list for a category.
func BuiltinPhrases(c Category) []string {
	return builtinPhrases[c]
}
