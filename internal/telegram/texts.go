package telegram

// UI texts. Announcement phrases live in the domain package; these are the
// surrounding command responses.
const (
	welcomeGroupFmt = "👋 I am the Victim of the Day bot.\n" +
		"The chat owner, admins and trusted pickers can run /victim (up to %d time(s) a day) to draw today's victim.\n" +
		"/statistics shows everyone's hit count. More: /help"

	welcomePrivateText = "I only work in group chats. Add me to your group and use /victim!"

	helpText = "Commands:\n" +
		"/victim — draw the victim of the day\n" +
		"/statistics — hit counts for this chat\n" +
		"/set_limit N — draws allowed per day (1-100)\n" +
		"/set_autorun N — auto-draw after N idle days (1-30)\n" +
		"/chance_owner P|auto — owner's chance to be drawn\n" +
		"/add_picker, /del_picker, /list_pickers — trusted pickers\n" +
		"/exclude, /include, /list_excluded — draw pool exclusions\n" +
		"/add_phrase [category] text — add a custom phrase ({mention} is the victim)\n" +
		"/del_phrase [category] N, /list_phrases — manage custom phrases\n" +
		"/phrases_source category all|builtin|custom — pick the phrase pool\n" +
		"/reminder_on, /reminder_off [days], /reminder_time HH:MM,\n" +
		"/reminder_weekends_on, /reminder_weekends_off — daily reminder\n\n" +
		"Categories: victim, owner, only_owner, cant."

	insufficientFmt   = "Not enough members for a draw (need at least %d active, non-excluded members)."
	limitSpentFmt     = "%s\n(The daily limit is %d.)"
	noStatsText       = "Nobody has been the victim of the day here yet."
	statsHeader       = "Victim of the day — hit counts:"
	unknownTargetText = "Could not identify the user. Reply to their message or use @username."

	excludedText      = "The member is excluded from the draw."
	excludeRefused    = "Cannot exclude: too few candidates would remain."
	includedText      = "The member is back in the draw."
	noExcludedText    = "The exclusion list is empty."
	pickerAddedText   = "Trusted picker added."
	pickerRemovedText = "Trusted picker removed."
	noPickersText     = "No trusted pickers configured."

	phraseAddedText   = "Phrase added!"
	phraseDeletedText = "Phrase deleted."
	phraseMissingText = "No phrase with that index."
	noPhrasesText     = "No custom phrases added yet."

	addPhraseUsage      = "Usage: /add_phrase [category] phrase text"
	phrasesSourceUsage  = "Usage: /phrases_source category all|builtin|custom"
	reminderTimeUsage   = "Usage: /reminder_time HH:MM"
	reminderOnText      = "Reminders enabled."
	reminderOffText     = "Reminders disabled."
	reminderWeekendsOn  = "Weekend reminders enabled."
	reminderWeekendsOff = "Weekend reminders disabled."

	internalErrorText = "Something went wrong, please try again later."
)
