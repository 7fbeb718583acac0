package dto

import "vaultflow/internal/domain/entities"

// AdvanceFlowCommand carries one user action against one flow instance: the
// decoded prior state, which step endpoint the client invoked, and the button
// value / text input / transaction id the client submitted.
type AdvanceFlowCommand struct {
	State         entities.FlowState
	Step          string
	SessionID     string
	UserID        string
	Action        string
	InputText     string
	TransactionID string
}

type Screen struct {
	Title     string   `json:"title"`
	BodyLines []string `json:"bodyLines,omitempty"`
	Tone      string   `json:"tone,omitempty"`
}

// ScreenAction is one selectable affordance. Value is posted back as the
// action for the next step; Target overrides the screen's NextActionPath for
// that button (used for transaction confirmation and external links).
type ScreenAction struct {
	Label  string `json:"label"`
	Value  string `json:"value,omitempty"`
	Target string `json:"target,omitempty"`
}

type AdvanceFlowOutput struct {
	State                entities.FlowState
	Screen               Screen
	NextActionPath       string
	TextInputPlaceholder string
	Actions              []ScreenAction
}
