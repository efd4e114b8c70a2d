package generator

import "soulthread/internal/domain"

// Tone-keyed phrase tables. Lookups fall back to the professional set for
// unknown tones; the authoritative tone has its own greeting and closing but
// shares the professional body phrasing.

var greetings = map[string][]string{
	domain.ToneCasual: {
		"Hey there! 👋",
		"What's up! 🙌",
		"Hi friend! 😊",
	},
	domain.ToneProfessional: {
		"Good day,",
		"Hello,",
		"Greetings,",
	},
	domain.ToneFriendly: {
		"Hello there! 😊",
		"Hi friend! 👋",
		"Hey! Hope you're doing well! 🌟",
	},
	domain.ToneAuthoritative: {
		"Greetings,",
	},
}

var closings = map[string]string{
	domain.ToneCasual:        "Catch you later! ✌️\n\nYour friendly newsletter curator",
	domain.ToneProfessional:  "Best regards,\n\nYour Newsletter Team",
	domain.ToneFriendly:      "Have a great day! 🌟\n\nWarm regards,\nYour Newsletter Friend",
	domain.ToneAuthoritative: "Regards,\n\nYour Newsletter Team",
}

var intros = map[string]string{
	domain.ToneCasual:       "Welcome to your personalized %s newsletter! I've rounded up the most interesting stories that'll keep you %s and in-the-know. Let's dive in! 🚀",
	domain.ToneProfessional: "Welcome to this edition of your %s newsletter. I've curated the most relevant developments to keep you %s about the latest industry trends.",
	domain.ToneFriendly:     "I'm excited to share this week's %s highlights with you! I've handpicked these stories to help you feel %s and stay ahead of the curve. 📚",
}

var itemCommentaries = map[string][]string{
	domain.ToneCasual: {
		"**My take:** This is huge! This could really shake things up in the industry.",
		"**Quick thoughts:** Pretty interesting development here. Definitely worth keeping an eye on.",
		"**Why it matters:** This trend is picking up steam and could be a game-changer.",
	},
	domain.ToneProfessional: {
		"**Analysis:** This represents a significant development in the field that warrants attention.",
		"**Key takeaway:** Organizations should consider the implications of this trend.",
		"**Industry impact:** This development may influence strategic planning across the sector.",
	},
	domain.ToneFriendly: {
		"**Here's what I think:** This is really exciting and could open up new possibilities!",
		"**My perspective:** I find this development particularly interesting because of its potential impact.",
		"**Worth noting:** This is something that could benefit many people in our community.",
	},
}

var finalCommentaries = map[string]string{
	domain.ToneCasual: `## 🤔 Final Thoughts

So there you have it - some pretty cool stuff happening in %s! The big theme I'm seeing here is rapid innovation and change. Whether you're a pro or just getting started, these trends are definitely worth following.

What do you think about these developments? Hit reply and let me know! I love hearing your thoughts. 💬`,

	domain.ToneProfessional: `## 📈 Executive Summary

The developments highlighted in this newsletter underscore the continued evolution in %s. Key themes include technological advancement, market disruption, and emerging opportunities for strategic positioning.

**Recommended Actions:**
- Monitor these trends for potential organizational impact
- Consider strategic implications for your operations
- Stay informed on further developments in this space`,

	domain.ToneFriendly: `## 💭 My Personal Take

I've been following %s for a while now, and I have to say - these stories really show how fast things are moving! It's exciting to see all this innovation happening.

I hope you found these insights valuable. If any of these topics resonated with you, I'd love to hear about it! Feel free to reach out anytime. 😊`,
}

var callsToAction = map[string]string{
	domain.ToneCasual: `## 🎯 What's Next?

Want more content like this? Here's how to stay in the loop:
- ⭐ Share this newsletter with friends
- 💬 Reply with topics you'd like to see covered
- 🔔 Make sure you're subscribed for the next edition!`,

	domain.ToneProfessional: `## 📬 Stay Connected

**Maximize your industry insights:**
- Forward this newsletter to colleagues who may benefit
- Provide feedback on topics of interest
- Subscribe for regular updates on industry developments`,

	domain.ToneFriendly: `## 💌 Let's Stay in Touch!

I'd love to hear from you! Here are some ways to connect:
- ✨ Share this with someone who might find it helpful
- 💭 Tell me what topics you'd like to explore next
- 🎉 Join our community for more great content!`,
}

var sectionEmojis = []string{"🔥", "💡", "🚀", "⚡", "🎯", "🌟", "💻", "🔮", "📊", "🎨"}
