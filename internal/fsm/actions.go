package fsm

import "github.com/librescoot/librefsm"

// Actions defines the interface for navigation state machine actions.
// MacroPad implements this interface; the page and profile being shown
// live on the implementation, the machine only tracks home vs. active.
type Actions interface {
	// State entry actions
	EnterHome(c *librefsm.Context) error
	EnterActive(c *librefsm.Context) error

	// Guards for conditional transitions
	CanResume(c *librefsm.Context) bool          // Last active profile still exists
	IsPageSlotOccupied(c *librefsm.Context) bool // Pressed action button maps to a profile on this page
	IsTargetKnown(c *librefsm.Context) bool      // Profile named by the host exists

	// Transition actions
	OnResume(c *librefsm.Context) error
	OnOpenSlot(c *librefsm.Context) error
	OnActivate(c *librefsm.Context) error
	OnReturnHome(c *librefsm.Context) error // Select pressed while active
	OnForceHome(c *librefsm.Context) error  // Host command or deleted profile
}
