package resolver

import "github.com/ceosim/game-engine/internal/model"

var messages = map[model.DecisionType]map[bool]string{
	model.TypeAggressive: {
		true:  "The bold strategy paid off. The company's market presence jumped and competitors are paying attention.",
		false: "The aggressive approach created risk that did not pay off this time, but the experience will fuel future growth.",
	},
	model.TypeSafe: {
		true:  "The careful strategy delivered steady results while keeping risk to a minimum.",
		false: "The cautious approach fell short of expectations, but it avoided any serious losses.",
	},
	model.TypeInnovative: {
		true:  "The innovative idea landed with the market. The industry has noticed and new possibilities are opening up.",
		false: "The innovative bet did not produce the expected results, but it was a valuable learning opportunity.",
	},
}

var feedback = map[model.DecisionType]map[bool]model.Feedback{
	model.TypeAggressive: {
		true: {
			Why:    "Committing resources early let the company capture demand before competitors could react.",
			Lesson: "Speed is a competitive advantage when the market window is short.",
			Tip:    "Keep enough cash in reserve so one failed bet cannot end the company.",
		},
		false: {
			Why:    "High-risk moves fail more often, and the full cost is paid either way.",
			Lesson: "Aggressive strategies trade certainty for upside.",
			Tip:    "Build experience with safer moves first; success rates rise with every decision you make.",
		},
	},
	model.TypeSafe: {
		true: {
			Why:    "Low-risk options succeed most of the time and compound steadily.",
			Lesson: "Consistent execution builds reputation and keeps cash flow healthy.",
			Tip:    "Repeating a careful approach builds momentum over time.",
		},
		false: {
			Why:    "Even safe bets can miss; the downside was limited because the stakes were small.",
			Lesson: "Limiting exposure protects the company when things go wrong.",
			Tip:    "A steady strategy still needs an occasional bold move to grow market cap.",
		},
	},
	model.TypeInnovative: {
		true: {
			Why:    "New technology created value competitors could not copy quickly.",
			Lesson: "Innovation widens the gap between you and the market.",
			Tip:    "Each innovative decision makes the next one more effective.",
		},
		false: {
			Why:    "The market was not ready for the idea, or the execution needed more time.",
			Lesson: "Innovation carries uncertainty; the knowledge gained still has value.",
			Tip:    "Pair innovative bets with a stable core business.",
		},
	},
}
