package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/deallock/deallock/internal/deal"
)

type reviewState int

const (
	reviewStateBrowse reviewState = iota
	reviewStateConfirm
)

// ReviewModel walks the queue of deals awaiting approval, one at a time.
type ReviewModel struct {
	CommonModel
	dealService *deal.Service

	state reviewState

	queue       []*deal.Deal
	currentDeal *deal.Deal

	form           *huh.Form
	confirmApprove bool
	pendingAction  string // "approve" or "reject"

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(dealSvc *deal.Service) ReviewModel {
	return ReviewModel{
		dealService: dealSvc,
		status:      "Loading pending deals...",
		loading:     true,
	}
}

func (m ReviewModel) Title() string { return "Review Pending Deals" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateConfirm {
		return "Confirm | Esc: cancel"
	}

	return "a: approve | r: reject | s: skip | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading deals: %v", msg.err)
			return m, nil
		}

		m.queue = msg.deals
		m.totalCount = len(m.queue)

		m.nextDeal()

		return m, nil

	case reviewResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving decision: %v", msg.err)
			return m, nil
		}

		m.nextDeal()

		return m, nil
	}

	switch m.state {
	case reviewStateBrowse:
		return m.updateBrowse(msg)
	case reviewStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m ReviewModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "a":
		if m.currentDeal != nil {
			return m.enterConfirm("approve")
		}
	case "r":
		if m.currentDeal != nil {
			return m.enterConfirm("reject")
		}
	case "s":
		if m.currentDeal != nil {
			m.nextDeal()
		}
	}

	return m, nil
}

func (m ReviewModel) enterConfirm(action string) (tea.Model, tea.Cmd) {
	m.pendingAction = action
	m.confirmApprove = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("%s %q?", action, m.currentDeal.Title)).
				Affirmative("Yes").
				Negative("No").
				Value(&m.confirmApprove),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = reviewStateConfirm

	return m, m.form.Init()
}

func (m ReviewModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = reviewStateBrowse
			m.form = nil

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

	m.state = reviewStateBrowse
	m.form = nil

	if !m.confirmApprove {
		return m, nil
	}

	return m, m.decideCmd(m.pendingAction)
}

func (m ReviewModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading pending deals...")
	}

	if m.currentDeal == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to back)")
	}

	d := m.currentDeal
	info := fmt.Sprintf(
		"Title:   %s\nClient:  %s\nValue:   %s\nCreated: %s\nLink:    %s\n\n%s",
		d.Title,
		d.ClientName,
		deal.FormatValue(d.Value),
		FormatDate(d.CreatedAt),
		d.Link,
		d.Description,
	)

	content := fmt.Sprintf("%s\n\n%s\n\n(a: approve, r: reject, s: skip, Esc: back)", m.status, info)

	if m.state == reviewStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

func (m *ReviewModel) nextDeal() {
	if len(m.queue) == 0 {
		m.currentDeal = nil
		m.status = "All done! No more pending deals."

		return
	}

	m.currentDeal = m.queue[0]
	m.queue = m.queue[1:]

	currentIdx := m.totalCount - len(m.queue)
	m.status = fmt.Sprintf("Reviewing %d/%d", currentIdx, m.totalCount)
}

type loadPendingMsg struct {
	deals []*deal.Deal
	err   error
}

func (m ReviewModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		status := deal.StatusPendingApproval
		deals, err := m.dealService.ListAll(ctx, Operator(), deal.ListFilter{Status: &status})

		return loadPendingMsg{deals: deals, err: err}
	}
}

type reviewResultMsg struct {
	err error
}

func (m ReviewModel) decideCmd(action string) tea.Cmd {
	id := m.currentDeal.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var err error
		if action == "approve" {
			err = m.dealService.Approve(ctx, Operator(), id)
		} else {
			err = m.dealService.Reject(ctx, Operator(), id)
		}

		return reviewResultMsg{err: err}
	}
}
