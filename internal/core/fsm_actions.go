package core

import (
	"context"

	"github.com/librescoot/librefsm"

	"macropad-service/internal/config"
	"macropad-service/internal/fsm"
	"macropad-service/internal/types"
)

// Ensure MacroPad implements fsm.Actions
var _ fsm.Actions = (*MacroPad)(nil)

// Navigation is what the pad is showing. Page and LastActive matter in
// Home, Active names the profile in Active.
type Navigation struct {
	View       types.ViewState
	Page       int
	Active     string
	LastActive string
}

// navRequest carries the argument of the event being sent to the machine,
// read by guards and transition actions.
type navRequest struct {
	slot   int
	target string
}

func stateIDToView(id librefsm.StateID) types.ViewState {
	if id == fsm.StateActive {
		return types.ViewActive
	}
	return types.ViewHome
}

// initFSM initializes and starts the librefsm machine
func (m *MacroPad) initFSM(ctx context.Context) error {
	def := fsm.NewDefinition(m)
	machine, err := def.Build()
	if err != nil {
		return err
	}
	m.machine = machine

	m.machine.OnStateChange(func(from, to librefsm.StateID) {
		m.logger.Infof("State transition: %s -> %s", stateIDToView(from), stateIDToView(to))
	})

	if err := m.machine.Start(ctx); err != nil {
		return err
	}

	m.logger.Infof("librefsm state machine started")
	return nil
}

// sendEvent sends an event to the FSM with its argument. It reports
// whether the navigation state changed; a rejected event leaves it as is.
func (m *MacroPad) sendEvent(event librefsm.EventID, req navRequest) bool {
	m.mu.Lock()
	before := m.nav
	m.pending = req
	m.mu.Unlock()

	if err := m.machine.SendSync(librefsm.Event{ID: event}); err != nil {
		m.logger.Debugf("Event %s not handled: %v", event, err)
	}

	after := m.Navigation()
	return after.View != before.View || after.Active != before.Active
}

// Navigation returns a copy of the current navigation state.
func (m *MacroPad) Navigation() Navigation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nav
}

// === State Entry Actions ===

func (m *MacroPad) EnterHome(c *librefsm.Context) error {
	m.logger.Debugf("FSM: EnterHome")
	m.mu.Lock()
	m.nav.View = types.ViewHome
	m.dirty = true
	m.mu.Unlock()
	return nil
}

func (m *MacroPad) EnterActive(c *librefsm.Context) error {
	m.logger.Debugf("FSM: EnterActive")
	m.mu.Lock()
	m.nav.View = types.ViewActive
	m.dirty = true
	m.mu.Unlock()
	return nil
}

// === Guards ===

func (m *MacroPad) CanResume(c *librefsm.Context) bool {
	m.mu.Lock()
	last := m.nav.LastActive
	m.mu.Unlock()
	if last == "" {
		return false
	}
	_, ok := m.store.Get(last)
	return ok
}

func (m *MacroPad) IsPageSlotOccupied(c *librefsm.Context) bool {
	_, ok := m.slotProfile()
	return ok
}

func (m *MacroPad) IsTargetKnown(c *librefsm.Context) bool {
	m.mu.Lock()
	target := m.pending.target
	m.mu.Unlock()
	_, ok := m.store.Get(target)
	return ok
}

// slotProfile resolves the pending action slot on the current home page.
func (m *MacroPad) slotProfile() (config.Profile, bool) {
	m.mu.Lock()
	page, slot := m.nav.Page, m.pending.slot
	m.mu.Unlock()
	if slot < 0 || slot >= config.PageSize {
		return config.Profile{}, false
	}
	return m.store.At(page*config.PageSize + slot)
}

// === Transition Actions ===

func (m *MacroPad) OnResume(c *librefsm.Context) error {
	m.mu.Lock()
	m.nav.Active = m.nav.LastActive
	m.mu.Unlock()
	return nil
}

func (m *MacroPad) OnOpenSlot(c *librefsm.Context) error {
	p, ok := m.slotProfile()
	if !ok {
		return config.ErrProfileNotFound
	}
	m.mu.Lock()
	m.nav.Active = p.Key
	m.mu.Unlock()
	return nil
}

func (m *MacroPad) OnActivate(c *librefsm.Context) error {
	m.mu.Lock()
	m.nav.Active = m.pending.target
	m.mu.Unlock()
	return nil
}

func (m *MacroPad) OnReturnHome(c *librefsm.Context) error {
	m.leaveActive()
	return nil
}

func (m *MacroPad) OnForceHome(c *librefsm.Context) error {
	m.leaveActive()
	return nil
}

// leaveActive remembers the active profile for the [BACK] hint and resets
// the overview to its first page.
func (m *MacroPad) leaveActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nav.Active != "" {
		m.nav.LastActive = m.nav.Active
	}
	m.nav.Active = ""
	m.nav.Page = 0
}
