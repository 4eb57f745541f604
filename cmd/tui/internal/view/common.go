package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/deallock/deallock/internal/account"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Operator is the actor behind every TUI call. The TUI talks to the
// database directly and always acts with admin rights.
func Operator() account.Actor {
	return account.Actor{Role: account.RoleAdmin}
}
