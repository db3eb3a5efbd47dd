package fsm

import "github.com/librescoot/librefsm"

// NewDefinition creates the navigation FSM definition.
// The actions parameter provides the implementation for state entry
// and guards.
func NewDefinition(actions Actions) *librefsm.Definition {
	return librefsm.NewDefinition().
		State(StateHome,
			librefsm.WithOnEnter(actions.EnterHome),
		).
		State(StateActive,
			librefsm.WithOnEnter(actions.EnterActive),
		).

		// === Transitions ===

		// From Home
		Transition(StateHome, EvSelect, StateActive,
			librefsm.WithGuard(actions.CanResume),
			librefsm.WithAction(actions.OnResume),
		).
		Transition(StateHome, EvAction, StateActive,
			librefsm.WithGuard(actions.IsPageSlotOccupied),
			librefsm.WithAction(actions.OnOpenSlot),
		).
		Transition(StateHome, EvActivate, StateActive,
			librefsm.WithGuard(actions.IsTargetKnown),
			librefsm.WithAction(actions.OnActivate),
		).

		// From Active. Cycling between profiles stays in Active and is
		// handled outside the machine.
		Transition(StateActive, EvSelect, StateHome,
			librefsm.WithAction(actions.OnReturnHome),
		).
		Transition(StateActive, EvHome, StateHome,
			librefsm.WithAction(actions.OnForceHome),
		).

		// Initial state
		Initial(StateHome)
}
