package core

import (
	"macropad-service/internal/config"
	"macropad-service/internal/display"
	"macropad-service/internal/fsm"
	"macropad-service/internal/hid"
	"macropad-service/internal/keys"
	"macropad-service/internal/protocol"
	"macropad-service/internal/types"
)

// modeOf is the mode field of outbound events: the active key, or null.
func modeOf(nav Navigation) protocol.Mode {
	if nav.View != types.ViewActive || nav.Active == "" {
		return nil
	}
	key := nav.Active
	return &key
}

// handleKey routes one key event. Releases are ignored.
func (m *MacroPad) handleKey(ev keys.Event) {
	if !ev.Pressed {
		return
	}
	m.logger.Debugf("Key pressed: %s", ev.Key)

	if m.Navigation().View == types.ViewActive {
		m.handleActiveKey(ev.Key)
	} else {
		m.handleHomeKey(ev.Key)
	}
}

func (m *MacroPad) handleActiveKey(k keys.Key) {
	nav := m.Navigation()
	switch {
	case k.Equal(keys.Select):
		if m.sendEvent(fsm.EvSelect, navRequest{}) {
			m.navChanged(true)
		}
	case k.Equal(keys.Previous), k.Equal(keys.Next):
		current, ok := m.store.Get(nav.Active)
		if !ok {
			current = config.Profile{Key: nav.Active}
		}
		var target config.Profile
		if k.Equal(keys.Next) {
			target = m.store.Next(current)
		} else {
			target = m.store.Previous(current)
		}
		if target.Key != nav.Active {
			m.mu.Lock()
			m.nav.Active = target.Key
			m.mu.Unlock()
			m.navChanged(true)
		}
	default:
		m.pressAction(nav, k)
	}
}

// pressAction sends the bound keystroke, or reports the press to the host
// when the slot has no keystroke.
func (m *MacroPad) pressAction(nav Navigation, k keys.Key) {
	profile, _ := m.store.Get(nav.Active)
	binding := profile.Binding(k.ActionIndex())

	if combo, ok := binding.Keystroke(); ok {
		names := hid.ParseCombo(combo)
		if m.keyboard == nil {
			m.logger.Warnf("No keyboard available for %s (%s)", k, combo)
			return
		}
		if err := m.keyboard.Press(names); err != nil {
			m.logger.Warnf("Failed to send %s for %s: %v", combo, k, err)
			return
		}
		m.logger.Debugf("Sent keystroke %v for %s", names, k)
		return
	}

	m.send(protocol.TypeEvent, protocol.NewKeyEvent(modeOf(nav), k))
}

func (m *MacroPad) handleHomeKey(k keys.Key) {
	switch {
	case k.Equal(keys.Previous):
		m.setPage(m.Navigation().Page - 1)
	case k.Equal(keys.Next):
		m.setPage(m.Navigation().Page + 1)
	case k.Equal(keys.Select):
		if m.sendEvent(fsm.EvSelect, navRequest{}) {
			m.navChanged(true)
		}
	default:
		if m.sendEvent(fsm.EvAction, navRequest{slot: k.ActionIndex()}) {
			m.navChanged(true)
		}
	}
}

// setPage moves the overview to page, wrapping at both ends. Past the
// last occupied page it wraps to 0; before page 0 it wraps to the last
// occupied page.
func (m *MacroPad) setPage(page int) {
	switch {
	case page < 0:
		page = m.store.PageCount() - 1
	case len(m.store.Page(page)) == 0:
		page = 0
	}

	m.mu.Lock()
	changed := m.nav.Page != page
	m.nav.Page = page
	m.mu.Unlock()

	m.requestRefresh()
	if changed {
		m.publishView()
	}
}

// activate shows profile key. It reports false when key is not stored.
func (m *MacroPad) activate(key string) bool {
	if _, ok := m.store.Get(key); !ok {
		return false
	}

	if m.Navigation().View == types.ViewActive {
		m.mu.Lock()
		changed := m.nav.Active != key
		m.nav.Active = key
		m.mu.Unlock()
		if changed {
			m.navChanged(false)
		}
		return true
	}

	if m.sendEvent(fsm.EvActivate, navRequest{target: key}) {
		m.navChanged(false)
	}
	return m.Navigation().Active == key
}

// goHome forces the overview. From Home it only resets the page.
func (m *MacroPad) goHome() {
	if m.Navigation().View == types.ViewActive {
		if m.sendEvent(fsm.EvHome, navRequest{}) {
			m.navChanged(false)
		}
		return
	}
	m.mu.Lock()
	m.nav.Page = 0
	m.mu.Unlock()
	m.requestRefresh()
	m.publishView()
}

// clampPage keeps the overview on an existing page after profiles were
// removed.
func (m *MacroPad) clampPage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nav.Page >= m.store.PageCount() {
		m.nav.Page = 0
		m.dirty = true
	}
}

// navChanged follows a change of view or active profile. Changes driven
// by the pad's own buttons are announced to the host.
func (m *MacroPad) navChanged(fromHardware bool) {
	nav := m.Navigation()
	m.logger.Infof("Now showing %s", describe(nav))
	m.requestRefresh()
	m.publishView()
	if fromHardware {
		m.sendModeEvent()
	}
}

func (m *MacroPad) sendModeEvent() {
	m.send(protocol.TypeEvent, protocol.NewModeEvent(modeOf(m.Navigation())))
}

func describe(nav Navigation) string {
	if nav.View == types.ViewActive {
		return "mode " + nav.Active
	}
	return "home"
}

// frameFor composes the display for nav. An active profile that no
// longer exists falls back to the overview.
func (m *MacroPad) frameFor(nav Navigation) display.Frame {
	if nav.View == types.ViewActive {
		if p, ok := m.store.Get(nav.Active); ok {
			return display.Profile(p, m.store.Colors())
		}
	}
	canResume := false
	if nav.LastActive != "" {
		_, canResume = m.store.Get(nav.LastActive)
	}
	return display.Home(m.store, nav.Page, canResume)
}
