package stageregistry

import (
	"canopy-backend/models"

	"github.com/pkg/errors"
)

// ErrUnknownStage is returned when a stage key was never registered.
// Callers map it to a not-found response; it is never retried.
var ErrUnknownStage = errors.New("unknown pipeline stage")

// StageDefinition is one registered pipeline stage. Definitions are static
// configuration loaded once at process start and never mutated afterwards.
type StageDefinition struct {
	Key        string
	Name       string
	StageOrder int
	Group      models.PhaseGroup
	Assignable bool
}

type Ordering string

const (
	OrderBefore       Ordering = "BEFORE"
	OrderAfter        Ordering = "AFTER"
	OrderEqual        Ordering = "EQUAL"
	OrderIncomparable Ordering = "INCOMPARABLE"
)

type Provider interface {
	ResolvePhaseGroup(stageKey string) (models.PhaseGroup, error)
	AssignablePhaseGroups() []models.PhaseGroup
	Compare(a, b models.PhaseGroup) Ordering
	ListStages() []StageDefinition
}

var Instance Provider

func NewHandler(defs []StageDefinition) {
	instance, err := NewRegistry(defs)
	if err != nil {
		panic(err.Error())
	}
	Instance = instance
}

// linearRank positions the forward path SUBMITTED < SCREENING < INTERVIEWING
// < OFFER < HIRED. Terminal side branches (REJECTED, WITHDRAWN) have no rank
// and are incomparable.
var linearRank = map[models.PhaseGroup]int{
	models.PhaseSubmitted:    0,
	models.PhaseScreening:    1,
	models.PhaseInterviewing: 2,
	models.PhaseOffer:        3,
	models.PhaseHired:        4,
}

var knownGroups = map[models.PhaseGroup]bool{
	models.PhaseSubmitted:    true,
	models.PhaseScreening:    true,
	models.PhaseInterviewing: true,
	models.PhaseOffer:        true,
	models.PhaseHired:        true,
	models.PhaseRejected:     true,
	models.PhaseWithdrawn:    true,
}

// NewRegistry validates the definitions and builds an immutable registry.
// A failure here is a configuration error and should abort startup.
func NewRegistry(defs []StageDefinition) (Provider, error) {
	i := &impl{
		byKey: make(map[string]StageDefinition, len(defs)),
		defs:  make([]StageDefinition, 0, len(defs)),
	}
	seenGroups := map[models.PhaseGroup]bool{}
	for _, def := range defs {
		if def.Key == "" {
			return nil, errors.New("stage definition without a key")
		}
		if !knownGroups[def.Group] {
			return nil, errors.Errorf("stage (%v) references unknown phase group (%v)", def.Key, def.Group)
		}
		if _, exists := i.byKey[def.Key]; exists {
			return nil, errors.Errorf("stage key registered twice (%v)", def.Key)
		}
		i.byKey[def.Key] = def
		i.defs = append(i.defs, def)
		if def.Assignable && !seenGroups[def.Group] {
			seenGroups[def.Group] = true
			i.assignable = append(i.assignable, def.Group)
		}
	}
	return i, nil
}

type impl struct {
	byKey      map[string]StageDefinition
	defs       []StageDefinition
	assignable []models.PhaseGroup
}

func (i *impl) ResolvePhaseGroup(stageKey string) (models.PhaseGroup, error) {
	def, exists := i.byKey[stageKey]
	if !exists {
		return "", errors.Wrapf(ErrUnknownStage, "(%v)", stageKey)
	}
	return def.Group, nil
}

// AssignablePhaseGroups returns the groups a candidate can be moved into by
// hand, in declaration order.
func (i *impl) AssignablePhaseGroups() []models.PhaseGroup {
	result := make([]models.PhaseGroup, len(i.assignable))
	copy(result, i.assignable)
	return result
}

func (i *impl) Compare(a, b models.PhaseGroup) Ordering {
	if a == b {
		return OrderEqual
	}
	rankA, okA := linearRank[a]
	rankB, okB := linearRank[b]
	if !okA || !okB {
		return OrderIncomparable
	}
	if rankA < rankB {
		return OrderBefore
	}
	return OrderAfter
}

func (i *impl) ListStages() []StageDefinition {
	result := make([]StageDefinition, len(i.defs))
	copy(result, i.defs)
	return result
}

// DefaultStageDefinitions is the stage set a new organization starts with.
// Custom stages an organization adds later still land in one of these groups.
var DefaultStageDefinitions = []StageDefinition{
	{Key: "submitted", Name: "Submitted", StageOrder: 1, Group: models.PhaseSubmitted, Assignable: true},
	{Key: "screening", Name: "Screening", StageOrder: 2, Group: models.PhaseScreening, Assignable: true},
	{Key: "phone_screen", Name: "Phone screen", StageOrder: 3, Group: models.PhaseScreening, Assignable: true},
	{Key: "interviewing", Name: "Interviewing", StageOrder: 4, Group: models.PhaseInterviewing, Assignable: true},
	{Key: "final_interview", Name: "Final interview", StageOrder: 5, Group: models.PhaseInterviewing, Assignable: true},
	{Key: "offer", Name: "Offer", StageOrder: 6, Group: models.PhaseOffer, Assignable: true},
	{Key: "hired", Name: "Hired", StageOrder: 7, Group: models.PhaseHired, Assignable: true},
	{Key: "rejected", Name: "Rejected", StageOrder: 8, Group: models.PhaseRejected, Assignable: true},
	{Key: "withdrawn", Name: "Withdrawn", StageOrder: 9, Group: models.PhaseWithdrawn, Assignable: true},
}
