package entities

// Phase represents a patient's current phase within the ED visit
type Phase string

const (
	PhaseRegistered            Phase = "registered"
	PhaseTriaged               Phase = "triaged"
	PhaseInvestigationsPending Phase = "investigations_pending"
	PhaseTreatment             Phase = "treatment"
	PhaseDecisionPending       Phase = "decision_pending"
	PhaseDischargePending      Phase = "discharge_pending"
	PhaseAdmitted              Phase = "admitted"
	PhaseDischarged            Phase = "discharged"

	// PhaseUnknown is the fallback for phase strings the upstream sends
	// that we do not recognize. It never advances any journey stage.
	PhaseUnknown Phase = "unknown"
)

// phaseRanks orders the recognized phases along the visit. Higher rank
// means further along; terminal phases sort last.
var phaseRanks = map[Phase]int{
	PhaseRegistered:            0,
	PhaseTriaged:               1,
	PhaseInvestigationsPending: 2,
	PhaseTreatment:             3,
	PhaseDecisionPending:       4,
	PhaseDischargePending:      5,
	PhaseAdmitted:              6,
	PhaseDischarged:            7,
}

// ParsePhase maps a raw phase string to a Phase. Unrecognized values map
// to PhaseUnknown rather than failing the pipeline.
func ParsePhase(raw string) Phase {
	p := Phase(raw)
	if _, ok := phaseRanks[p]; ok {
		return p
	}
	return PhaseUnknown
}

// Rank returns the forward position of the phase and whether the phase is
// recognized. PhaseUnknown has no rank.
func (p Phase) Rank() (int, bool) {
	rank, ok := phaseRanks[p]
	return rank, ok
}

// IsTerminal reports whether the phase ends the visit.
func (p Phase) IsTerminal() bool {
	return p == PhaseAdmitted || p == PhaseDischarged
}

// StageStatus classifies one displayed journey stage.
type StageStatus string

const (
	StageComplete StageStatus = "complete"
	StageActive   StageStatus = "active"
	StagePending  StageStatus = "pending"
)

// StageName identifies one of the six displayed journey stages.
type StageName string

const (
	StageArrival        StageName = "arrival"
	StageRegistration   StageName = "registration"
	StageTriage         StageName = "triage"
	StageInvestigations StageName = "investigations"
	StageTreatment      StageName = "treatment"
	StageCompletion     StageName = "completion"
)

// StageNames lists the displayed stages in journey order.
var StageNames = []StageName{
	StageArrival,
	StageRegistration,
	StageTriage,
	StageInvestigations,
	StageTreatment,
	StageCompletion,
}

// stagePhases maps each progress-tracked stage to the phase during which
// it is the active one. Arrival and Completion are handled separately.
var stagePhases = map[StageName]Phase{
	StageRegistration:   PhaseRegistered,
	StageTriage:         PhaseTriaged,
	StageInvestigations: PhaseInvestigationsPending,
	StageTreatment:      PhaseTreatment,
}

// ClassifyStages derives the status of all six displayed stages from the
// current phase. It is a total function: every input, including
// PhaseUnknown, yields a defined classification. The classification is
// recomputed fresh from the latest snapshot on every poll, so skipped or
// jumped phases cannot leave a stage stuck.
func ClassifyStages(current Phase) map[StageName]StageStatus {
	statuses := make(map[StageName]StageStatus, len(StageNames))

	// Arrival is complete the moment a snapshot exists.
	statuses[StageArrival] = StageComplete

	currentRank, recognized := current.Rank()
	if !recognized {
		for _, stage := range StageNames[1:] {
			statuses[stage] = StagePending
		}
		return statuses
	}

	for stage, phase := range stagePhases {
		stageRank, _ := phase.Rank()
		switch {
		case currentRank == stageRank:
			statuses[stage] = StageActive
		case currentRank > stageRank:
			statuses[stage] = StageComplete
		default:
			statuses[stage] = StagePending
		}
	}

	// Completion is active while discharge is being prepared or the patient
	// is moving to a ward, and complete once the patient has left the ED.
	switch current {
	case PhaseDischargePending, PhaseAdmitted:
		statuses[StageCompletion] = StageActive
	case PhaseDischarged:
		statuses[StageCompletion] = StageComplete
	default:
		statuses[StageCompletion] = StagePending
	}

	return statuses
}
