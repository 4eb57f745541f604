package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/deallock/deallock/internal/deal"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateConfirm
)

// ListModel is the all-deals table with payment bookkeeping actions.
type ListModel struct {
	CommonModel
	dealService *deal.Service

	state listState
	table table.Model
	deals []*deal.Deal

	form          *huh.Form
	confirmAction bool
	pendingAction string

	// Filter cycling
	statusFilterIdx int
	dateFilterIdx   int

	filter  deal.ListFilter
	loading bool
	err     error
	status  string
}

func NewListModel(dealSvc *deal.Service) ListModel {
	columns := []table.Column{
		{Title: "Created", Width: 12},
		{Title: "Title", Width: 28},
		{Title: "Client", Width: 18},
		{Title: "Value", Width: 14},
		{Title: "Status", Width: 18},
		{Title: "Payment", Width: 26},
		{Title: "Secured", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		dealService: dealSvc,
		table:       t,
		filter:      deal.ListFilter{},
		loading:     true,
	}
}

func (m ListModel) Title() string { return "All Deals" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateConfirm {
		return "Confirm | Esc: cancel"
	}

	return "Esc: back | c: payment confirmed | n: not received | x: secured | s: status filter | d: date filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadDealsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDealsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.deals = msg.deals
		m.err = nil
		m.refreshTable()

		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = ""
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadDealsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadDealsCmd()
		case "c":
			return m.enterConfirm("payment confirmed")
		case "n":
			return m.enterConfirm("payment not received")
		case "x":
			return m.enterConfirm("secured")
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 4
			m.applyFilter()

			return m, m.loadDealsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter()

			return m, m.loadDealsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterConfirm(action string) (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.deals) {
		return m, nil
	}

	m.pendingAction = action
	m.confirmAction = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Mark %q as %s?", m.deals[idx].Title, action)).
				Affirmative("Yes").
				Negative("No").
				Value(&m.confirmAction),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.confirmAction {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.actionCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading deals...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabels := []string{"All", "Pending Approval", "Approved", "Rejected"}
	dateLabels := []string{"All Time", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [d] Date: %s",
		activeStyle(statusLabels[m.statusFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) applyFilter() {
	switch m.statusFilterIdx {
	case 1:
		status := deal.StatusPendingApproval
		m.filter.Status = &status
	case 2:
		status := deal.StatusApproved
		m.filter.Status = &status
	case 3:
		status := deal.StatusRejected
		m.filter.Status = &status
	default:
		m.filter.Status = nil
	}

	now := time.Now()

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0)
		m.filter.Start = &s
		m.filter.End = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0)
		m.filter.Start = &s
		m.filter.End = &e
	default:
		m.filter.Start = nil
		m.filter.End = nil
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.deals))
	for _, d := range m.deals {
		secured := ""
		if d.Secured {
			secured = "yes"
		}

		rows = append(rows, table.Row{
			FormatDate(d.CreatedAt),
			d.Title,
			d.ClientName,
			deal.FormatValue(d.Value),
			string(d.Status),
			string(d.PaymentStatus),
			secured,
		})
	}

	m.table.SetRows(rows)
}

type loadDealsMsg struct {
	deals []*deal.Deal
	err   error
}

func (m ListModel) loadDealsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		deals, err := m.dealService.ListAll(ctx, Operator(), m.filter)

		return loadDealsMsg{deals: deals, err: err}
	}
}

type actionResultMsg struct {
	err error
}

func (m ListModel) actionCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.deals) {
		return nil
	}

	id := m.deals[idx].ID
	action := m.pendingAction

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var err error

		switch action {
		case "payment confirmed":
			err = m.dealService.ConfirmPayment(ctx, Operator(), id)
		case "payment not received":
			err = m.dealService.RejectPayment(ctx, Operator(), id)
		case "secured":
			err = m.dealService.Secure(ctx, Operator(), id)
		}

		return actionResultMsg{err: err}
	}
}
