package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/deallock/deallock/cmd/tui/internal/view"
	"github.com/deallock/deallock/internal/account"
	accountStore "github.com/deallock/deallock/internal/account/store"
	"github.com/deallock/deallock/internal/config"
	"github.com/deallock/deallock/internal/database"
	"github.com/deallock/deallock/internal/deal"
	dealStore "github.com/deallock/deallock/internal/deal/store"
	"github.com/deallock/deallock/internal/messaging"
	"github.com/deallock/deallock/internal/notification"
	notificationStore "github.com/deallock/deallock/internal/notification/store"
	"github.com/deallock/deallock/internal/token"
	tokenStore "github.com/deallock/deallock/internal/token/store"
)

type model struct {
	dealService *deal.Service

	currentView View

	reviewView view.ReviewModel
	listView   view.ListModel
}

type View int

const (
	ViewMenu   View = 0
	ViewReview View = 1
	ViewList   View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Mail and SMS are log-only here; the operator console should never
	// message customers on its own.
	dispatch := messaging.NewDispatcher(cfg.Dispatch.Timeout)
	tokenSvc := token.NewStore(tokenStore.New(db))
	accountSvc := account.NewService(accountStore.New(db), tokenSvc, messaging.LogMailer{}, dispatch, cfg.App.BaseURL)
	notificationSvc := notification.NewService(notificationStore.New(db), accountSvc)
	dealSvc := deal.NewService(dealStore.New(db), accountSvc, notificationSvc, messaging.LogMailer{}, messaging.LogTexter{}, dispatch, cfg.App.BaseURL)

	return model{
		dealService: dealSvc,
		currentView: ViewMenu,
		reviewView:  view.NewReviewModel(dealSvc),
		listView:    view.NewListModel(dealSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.dealService)

				return m, m.reviewView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.dealService)

				return m, m.listView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Deallock Operator Console\n\n" +
				"1. Review Pending Deals\n" +
				"2. Browse All Deals\n\n" +
				"q. Quit",
		)
	case ViewReview:
		return m.reviewView.View()
	case ViewList:
		return m.listView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
