// Package classify maps the files of a bundle directory to sheet kinds by
// matching their names against a regex table.
package classify

// Kind is a known sheet kind.
type Kind string

const (
	People          Kind = "People"
	Projects        Kind = "Projects"
	Objectives      Kind = "Objectives"
	KeyResults      Kind = "KeyResults"
	Pushes          Kind = "Pushes"
	Milestones      Kind = "Milestones"
	Activities      Kind = "Activities"
	DecisionMakers  Kind = "DecisionMakers"
	Budget          Kind = "Budget"
	StaffAllocation Kind = "StaffAllocation"
	CommsProfile    Kind = "CommsProfile"
	KeyMessages     Kind = "KeyMessages"
	CTAs            Kind = "CTAs"
	CommsFrames     Kind = "CommsFrames"
	FAQs            Kind = "FAQs"
	PressureSources Kind = "PressureSources"
)

// Kinds is the declared matching order. Processing order is the same minus
// PressureSources, which has no data model.
var Kinds = []Kind{
	People, Projects, Objectives, KeyResults, Pushes, Milestones, Activities,
	DecisionMakers, Budget, StaffAllocation, CommsProfile, KeyMessages, CTAs,
	CommsFrames, FAQs, PressureSources,
}

// Modelled reports whether rows of kind k are imported.
func (k Kind) Modelled() bool {
	return k != PressureSources && k.Valid()
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, x := range Kinds {
		if x == k {
			return true
		}
	}
	return false
}

// Rule lists the name patterns of one kind.
type Rule struct {
	Kind     Kind     `json:"kind" yaml:"kind"`
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// DefaultRules match normalized sheet names: lowercase, separators turned into
// single spaces, leading ordinal and "Workbook - " export prefix removed.
var DefaultRules = []Rule{
	{People, []string{`^people\b`, `^team( members| roster| directory)?$`, `^staff (directory|list|roster)$`, `^(contacts|users)$`}},
	{Projects, []string{`^projects?$`, `^projects? (list|overview|export|info)\b`, `^programs?$`}},
	{Objectives, []string{`^objectives?\b`, `^okrs?$`, `^goals?$`}},
	{KeyResults, []string{`^key ?results?\b`, `^krs?$`}},
	{Pushes, []string{`^push(es)?\b`, `^cycles?\b`, `^sprints?$`}},
	{Milestones, []string{`^milestones?\b`, `^timeline$`}},
	{Activities, []string{`^activit(y|ies)\b`, `^tasks?$`}},
	{DecisionMakers, []string{`^decision ?makers?\b`, `^stakeholders?\b`, `^targets?$`}},
	{Budget, []string{`\bbudget\b`, `^finances?$`}},
	{StaffAllocation, []string{`^staff(ing)? ?allocations?\b`, `^staffing$`, `^(staff )?hours$`}},
	{CommsProfile, []string{`^comm(s|unications?) ?profiles?$`, `^comms$`, `^communications?$`}},
	{KeyMessages, []string{`^key ?messages?\b`, `^messag(es|ing)$`}},
	{CTAs, []string{`^ctas?$`, `^calls? to action\b`}},
	{CommsFrames, []string{`^(comms )?frames?\b`, `^framing$`}},
	{FAQs, []string{`^faqs?\b`, `^frequently asked`}},
	{PressureSources, []string{`^pressure( sources?| points?)?\b`}},
}
