package fsm

import "github.com/librescoot/librefsm"

// Navigation states
const (
	StateHome   librefsm.StateID = "home"
	StateActive librefsm.StateID = "active"
)

// Navigation events
const (
	// Physical inputs
	EvSelect librefsm.EventID = "select"
	EvAction librefsm.EventID = "action"

	// Host commands
	EvActivate librefsm.EventID = "activate"
	EvHome     librefsm.EventID = "home"
)
