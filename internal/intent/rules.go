package intent

// Rule order is priority. Pricing and booking questions are answered before
// any catalogue rule so "cheapest excavator price" lands on pricing.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "pricing",
			Triggers: []string{"price", "cost", "budget", "cheap", "expensive", "how much", "fee", "afford"},
			Template: ResponseTemplate{
				Content: "Here's how **pricing** works on our marketplace:\n\n" +
					"• **Daily rates** are set by each owner and shown on every listing\n" +
					"• **Weekly rentals** usually save 15–25% compared to daily rates\n" +
					"• A refundable **security deposit** is held until the item is returned\n" +
					"• Optional **damage protection** starts at 10% of the rental total\n\n" +
					"Tell me what you need and your budget, and I'll find the best value options.",
				Suggestions: []string{"Show budget options", "How do deposits work?", "Weekly rental discounts"},
				Category:    CategoryPricing,
			},
		},
		{
			Name:     "availability",
			Triggers: []string{"available", "availability", "book", "reserve", "reservation", "schedule", "when can"},
			Template: ResponseTemplate{
				Content: "Checking **availability** is easy:\n\n" +
					"1. Open any listing and pick your **start and end dates** on the calendar\n" +
					"2. Greyed-out days are already booked\n" +
					"3. Tap **Request to book**, and most owners confirm within 2 hours\n\n" +
					"Instant-book listings are confirmed immediately. Which dates are you looking at?",
				Suggestions: []string{"This weekend", "Next week", "Instant-book only"},
				Category:    CategoryAvailability,
			},
		},
		{
			Name:     "logistics",
			Triggers: []string{"deliver", "pickup", "pick up", "pick-up", "shipping", "drop off", "drop-off", "transport"},
			Template: ResponseTemplate{
				Content: "You have two ways to get your rental:\n\n" +
					"• **Pickup**: collect from the owner at a time you both agree on\n" +
					"• **Delivery**: many owners deliver within 25 km for a flat fee\n\n" +
					"Heavy equipment is delivered on a trailer and the fee is shown at checkout.",
				Suggestions: []string{"Delivery fees", "Pickup hours", "Return options"},
				Category:    CategoryLogistics,
			},
		},
		{
			Name:     "construction",
			Triggers: []string{"construction", "renovation", "renovate", "remodel", "contractor", "build a", "building"},
			Template: ResponseTemplate{
				Content: "For **construction and renovation** projects, popular rentals include:\n\n" +
					"• **Concrete mixers** from $45/day\n" +
					"• **Scaffolding sets** from $60/day\n" +
					"• **Tile saws** from $35/day\n" +
					"• **Mini excavators** from $220/day\n\n" +
					"What kind of project are you working on?",
				Suggestions: []string{"Kitchen remodel", "Deck building", "Concrete work", "Demolition"},
				Category:    CategorySearch,
			},
		},
		{
			Name:     "power_tools",
			Triggers: []string{"tool", "drill", "saw", "power", "sander", "grinder", "nail gun"},
			Template: ResponseTemplate{
				Content: "Our **power tool** catalogue covers most jobs:\n\n" +
					"• **Hammer drills** from $15/day\n" +
					"• **Circular and miter saws** from $20/day\n" +
					"• **Orbital sanders** from $12/day\n" +
					"• **Angle grinders** from $14/day\n\n" +
					"All tools are checked before every rental and come with basic accessories.",
				Suggestions: []string{"Drills", "Saws", "Sanders", "Tool bundles"},
				Category:    CategorySearch,
			},
		},
		{
			Name:     "camera",
			Triggers: []string{"camera", "photo", "video", "shoot", "film", "lens", "drone footage"},
			Template: ResponseTemplate{
				Content: "Great choice! Our **camera and video** gear includes:\n\n" +
					"• **Mirrorless cameras** (Sony A7 IV, Canon R6) from $55/day\n" +
					"• **Cinema cameras** (RED Komodo, Blackmagic 6K) from $150/day\n" +
					"• **Lenses, gimbals and lighting kits** from $20/day\n\n" +
					"What are you shooting?",
				Suggestions: []string{"Wedding photography", "Short film", "Real estate", "YouTube/content creation"},
				Category:    CategorySearch,
			},
		},
		{
			Name:     "events",
			Triggers: []string{"wedding", "party", "event", "celebration", "birthday", "tent"},
			Template: ResponseTemplate{
				Content: "We have complete **event packages**:\n\n" +
					"• **Party package**: tables, chairs and string lights from $120/day\n" +
					"• **Wedding package**: tent, dance floor and PA system from $450/day\n" +
					"• **Sound and lighting** add-ons from $60/day\n\n" +
					"How many guests are you expecting?",
				Suggestions: []string{"Under 50 guests", "50–150 guests", "150+ guests"},
				Category:    CategorySearch,
			},
		},
		{
			Name:     "heavy_equipment",
			Triggers: []string{"excavator", "bulldozer", "backhoe", "heavy", "skid steer", "loader", "forklift"},
			Template: ResponseTemplate{
				Content: "Our **heavy equipment** fleet includes:\n\n" +
					"• **Mini excavators** (1.5–3.5 t) from $220/day\n" +
					"• **Skid steer loaders** from $250/day\n" +
					"• **Backhoes** from $350/day\n" +
					"• **Bulldozers** from $600/day\n\n" +
					"Most heavy machines require a verified operator licence at pickup.",
				Suggestions: []string{"Operator requirements", "Delivery to site", "Compare excavators"},
				Category:    CategorySearch,
			},
		},
		{
			Name:     "help",
			Triggers: []string{"help", "how", "explain", "guide", "what can you"},
			Template: ResponseTemplate{
				Content: "Here's how **renting** works:\n\n" +
					"1. **Search** for equipment by category or location\n" +
					"2. **Book** your dates and pay securely online\n" +
					"3. **Pick up** or get it delivered\n" +
					"4. **Return** it and your deposit is released\n\n" +
					"I can help you find gear, compare prices or check availability.",
				Suggestions: []string{"Find equipment", "Pricing", "Availability", "Delivery options"},
				Category:    CategoryHelp,
			},
		},
	}
}

// DefaultTemplate is returned when no rule matches.
func DefaultTemplate() ResponseTemplate {
	return ResponseTemplate{
		Content: "I'd love to help! Could you tell me a bit more about **what you're planning**?\n\n" +
			"For example, the type of project, the equipment you have in mind, or your dates.",
		Suggestions: []string{"Browse categories", "How does renting work?", "Check prices", "Talk to support"},
		Category:    CategoryInfo,
	}
}
