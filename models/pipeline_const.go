package models

// PhaseGroup is the coarse bucket a pipeline stage belongs to. Organizations
// rename stages freely, but every stage maps to exactly one group and all
// transition behavior is keyed by group, never by stage name.
type PhaseGroup string

const (
	PhaseSubmitted    PhaseGroup = "SUBMITTED"
	PhaseScreening    PhaseGroup = "SCREENING"
	PhaseInterviewing PhaseGroup = "INTERVIEWING"
	PhaseOffer        PhaseGroup = "OFFER"
	PhaseHired        PhaseGroup = "HIRED"
	PhaseRejected     PhaseGroup = "REJECTED"
	PhaseWithdrawn    PhaseGroup = "WITHDRAWN"
)

var phaseGroupHumanName = map[PhaseGroup]string{
	PhaseSubmitted:    "Submitted",
	PhaseScreening:    "Screening",
	PhaseInterviewing: "Interviewing",
	PhaseOffer:        "Offer",
	PhaseHired:        "Hired",
	PhaseRejected:     "Rejected",
	PhaseWithdrawn:    "Withdrawn",
}

func (g PhaseGroup) ToHuman() string {
	if human, exist := phaseGroupHumanName[g]; exist {
		return human
	}
	return string(g)
}

// IsTerminal reports whether the group sits outside the linear
// SUBMITTED..HIRED path or has no defined successor.
func (g PhaseGroup) IsTerminal() bool {
	return g == PhaseHired || g == PhaseRejected || g == PhaseWithdrawn
}

// ActionKind names a side effect the caller should confirm before committing
// a stage change. The planner only describes actions, it never performs them.
type ActionKind string

const (
	ActionScheduleInterview ActionKind = "SCHEDULE_INTERVIEW"
	ActionSendRejection     ActionKind = "SEND_REJECTION"
	ActionSendOffer         ActionKind = "SEND_OFFER"
	ActionNotifyTeam        ActionKind = "NOTIFY_TEAM"
)

var actionKindHumanName = map[ActionKind]string{
	ActionScheduleInterview: "Schedule an interview",
	ActionSendRejection:     "Send a rejection email",
	ActionSendOffer:         "Send an offer",
	ActionNotifyTeam:        "Notify the hiring team",
}

func (k ActionKind) ToHuman() string {
	if human, exist := actionKindHumanName[k]; exist {
		return human
	}
	return string(k)
}
