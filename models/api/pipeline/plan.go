package pipelineapimodels

import "canopy-backend/models"

// ActionData is the closed set of fields the planner may prefill on an
// action. Raw provider/ORM maps never cross this boundary.
type ActionData struct {
	TemplateKey string `json:"template_key,omitempty"` // message template suggested to the dispatcher
	Regression  bool   `json:"regression,omitempty"`   // the move goes backwards on the linear path
}

type ActionView struct {
	Kind     models.ActionKind `json:"kind"`
	Required bool              `json:"required"`
	Data     ActionData        `json:"data"`
}

type TransitionPlanView struct {
	FromStage string       `json:"from_stage"`
	ToStage   string       `json:"to_stage"`
	Actions   []ActionView `json:"actions"`
}

type StageView struct {
	Key        string            `json:"key"`
	Name       string            `json:"name"`
	StageOrder int               `json:"stage_order"`
	PhaseGroup models.PhaseGroup `json:"phase_group"`
	Assignable bool              `json:"assignable"`
}
