package sim

import (
	"github.com/charmbracelet/bubbles/key"

	"macropad-service/internal/keys"
)

// KeyMap binds terminal keys to the pad's controls. The nine action keys
// are typed as three rows: asd, zxc and vbn.
type KeyMap struct {
	Previous key.Binding
	Select   key.Binding
	Next     key.Binding
	Actions  [keys.ActionCount]key.Binding
	TurnDown key.Binding
	TurnUp   key.Binding
	Push     key.Binding
	Quit     key.Binding
}

var actionKeys = [keys.ActionCount]string{"a", "s", "d", "z", "x", "c", "v", "b", "n"}

func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Previous: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "previous")),
		Select:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "select")),
		Next:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "next")),
		TurnDown: key.NewBinding(key.WithKeys("left", "["), key.WithHelp("←", "turn left")),
		TurnUp:   key.NewBinding(key.WithKeys("right", "]"), key.WithHelp("→", "turn right")),
		Push:     key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "push encoder")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
	for i, k := range actionKeys {
		km.Actions[i] = key.NewBinding(key.WithKeys(k))
	}
	km.Actions[0].SetHelp("asd/zxc/vbn", "actions")
	return km
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Select, k.Next, k.Actions[0], k.TurnDown, k.TurnUp, k.Push, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Previous, k.Select, k.Next, k.Actions[0]},
		{k.TurnDown, k.TurnUp, k.Push, k.Quit},
	}
}
