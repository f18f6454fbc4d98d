package seed

var commentLines = []string{
	"Can we add a source for this?",
	"This section needs more detail.",
	"I think this contradicts the intro.",
	"Great point, let's keep it.",
	"Should we move this to the appendix?",
	"Typo here.",
	"Can you clarify what you mean?",
	"Let's discuss this in the next sync.",
	"The numbers don't match the dashboard.",
	"Consider rephrasing for clarity.",
}

var replyLines = []string{
	"Agreed.",
	"Good catch, fixed.",
	"I'll look into it.",
	"Not sure, let's ask the team.",
	"Updated, please take another look.",
	"Done.",
	"I disagree, this is intentional.",
	"Thanks for flagging!",
}
