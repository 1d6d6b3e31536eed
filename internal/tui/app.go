package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dewinglab/coinmatch/internal/record"
	"github.com/dewinglab/coinmatch/internal/session"
	"github.com/dewinglab/coinmatch/internal/store"
	"github.com/dewinglab/coinmatch/internal/views"
)

// App ties together views.
type App struct {
	ctx     context.Context
	session *session.Store
	data    *store.Store
	state   appState
	modal   modalState

	// login flow
	emailInput    string
	passwordInput string
	loginField    int // 0 email, 1 password

	// registry
	regCursor int
	regFilter views.RegistryFilter
	regSort   views.RegistrySort
	mintIdx   int // 0 = all mints
	authIdx   int // 0 = all authorities

	// search
	searchInput   string
	searchResults []record.Candidate
	candCursor    int

	// compare
	compareID  string
	notesInput string

	histCursor int
	minScore   float64
	status     string
}

type appState string

const (
	viewLogin     appState = "login"
	viewDashboard appState = "dashboard"
	viewRegistry  appState = "registry"
	viewSearch    appState = "search"
	viewCompare   appState = "compare"
	viewHistory   appState = "history"
)

type modalState string

const (
	modalNone  modalState = ""
	modalQuery modalState = "query"
	modalNotes modalState = "notes"
)

func New(ctx context.Context, sess *session.Store, data *store.Store, minScore float64) *App {
	if minScore <= 0 {
		minScore = views.DefaultMinScore
	}
	return &App{
		ctx:      ctx,
		session:  sess,
		data:     data,
		state:    viewLogin,
		minScore: minScore,
	}
}

func (a *App) Init() tea.Cmd {
	return a.restoreCmd()
}

// commands
func (a *App) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		a.session.Restore(a.ctx)
		return sessionRestoredMsg{}
	}
}

func (a *App) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		if err := a.session.Login(a.ctx, email, password); err != nil {
			return errMsg{err}
		}
		return loginDoneMsg{}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		a.session.Logout(a.ctx)
		a.data.Refresh(a.ctx)
		return statusMsg("signed out")
	}
}

func (a *App) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		a.data.Refresh(a.ctx)
		return refreshDoneMsg{}
	}
}

func (a *App) searchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		token := a.session.Token()
		if token == "" {
			return errMsg{store.ErrNoSession}
		}
		raws, err := a.data.Search(a.ctx, query)
		if err != nil {
			return errMsg{err}
		}
		return searchResultsMsg(raws)
	}
}

func (a *App) decideCmd(coinID, candidateID string, status record.MatchStatus, notes string) tea.Cmd {
	return func() tea.Msg {
		rec, err := a.data.LogMatchDecision(a.ctx, coinID, candidateID, status, notes)
		if err != nil {
			return errMsg{err}
		}
		return decisionSavedMsg(rec)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewLogin {
			return a.handleLoginKey(m)
		}
		return a.handleKey(m)
	case sessionRestoredMsg:
		if a.session.State() == session.StateAuthenticated {
			a.state = viewDashboard
			a.status = "loading..."
			return a, a.refreshCmd()
		}
		a.state = viewLogin
	case loginDoneMsg:
		a.passwordInput = ""
		a.state = viewDashboard
		a.status = "loading..."
		return a, a.refreshCmd()
	case refreshDoneMsg:
		a.clampCursors()
		a.status = ""
	case searchResultsMsg:
		a.searchResults = []record.Candidate(m)
		if a.candCursor >= len(a.searchResults) {
			a.candCursor = 0
		}
		a.status = fmt.Sprintf("%d candidates", len(a.searchResults))
	case decisionSavedMsg:
		rec := record.MatchRecord(m)
		a.notesInput = ""
		a.status = fmt.Sprintf("%s: %s", strings.ToLower(string(rec.Status)), rec.CandidateTitle)
	case statusMsg:
		a.status = string(m)
		if a.session.State() != session.StateAuthenticated {
			a.state = viewLogin
		}
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleLoginKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	}
	switch m.Type {
	case tea.KeyTab, tea.KeyDown, tea.KeyUp:
		a.loginField = 1 - a.loginField
	case tea.KeyEnter:
		email := strings.TrimSpace(a.emailInput)
		if email == "" || a.passwordInput == "" {
			a.status = "enter email and password"
			return a, nil
		}
		a.status = "signing in..."
		return a, a.loginCmd(email, a.passwordInput)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if a.loginField == 0 && len(a.emailInput) > 0 {
			a.emailInput = a.emailInput[:len(a.emailInput)-1]
		}
		if a.loginField == 1 && len(a.passwordInput) > 0 {
			a.passwordInput = a.passwordInput[:len(a.passwordInput)-1]
		}
	case tea.KeySpace:
		if a.loginField == 0 {
			a.emailInput += " "
		} else {
			a.passwordInput += " "
		}
	case tea.KeyRunes:
		if a.loginField == 0 {
			a.emailInput += string(m.Runes)
		} else {
			a.passwordInput += string(m.Runes)
		}
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "d":
		a.state = viewDashboard
	case "g":
		a.state = viewRegistry
	case "s":
		a.state = viewSearch
	case "h":
		a.state = viewHistory
	case "c":
		if a.state == viewSearch && len(a.searchResults) > 0 {
			a.compareID = a.searchResults[a.candCursor].ID
			a.state = viewCompare
		} else {
			a.compareID = ""
			a.state = viewCompare
		}
	case "r":
		a.status = "refreshing..."
		return a, a.refreshCmd()
	case "x":
		a.status = "signing out..."
		return a, a.logoutCmd()
	case "/":
		if a.state == viewSearch {
			a.modal = modalQuery
		}
		if a.state == viewRegistry {
			a.modal = modalQuery
		}
	case "o":
		if a.state == viewCompare {
			a.modal = modalNotes
		}
	case "m":
		if a.state == viewRegistry {
			a.cycleMint()
		}
	case "u":
		if a.state == viewRegistry {
			a.cycleAuthority()
		}
	case "t":
		if a.state == viewRegistry {
			a.regSort.ByCatalogNumber = !a.regSort.ByCatalogNumber
		}
	case "v":
		if a.state == viewRegistry {
			a.regSort.Descending = !a.regSort.Descending
		}
	case "up", "k":
		a.moveCursor(-1)
	case "down", "j":
		a.moveCursor(1)
	case "y":
		return a.decideKey(record.StatusConfirmed)
	case "n":
		return a.decideKey(record.StatusRejected)
	case "p":
		return a.decideKey(record.StatusPending)
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	buf := &a.searchInput
	if a.modal == modalNotes {
		buf = &a.notesInput
	}
	if a.modal == modalQuery && a.state == viewRegistry {
		buf = &a.regFilter.Query
	}
	switch m.Type {
	case tea.KeyEsc:
		a.modal = modalNone
	case tea.KeyEnter:
		modal := a.modal
		a.modal = modalNone
		if modal == modalQuery && a.state == viewSearch {
			a.status = "searching..."
			return a, a.searchCmd(strings.TrimSpace(a.searchInput))
		}
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(*buf) > 0 {
			*buf = (*buf)[:len(*buf)-1]
		}
	case tea.KeySpace:
		*buf += " "
	case tea.KeyRunes:
		*buf += string(m.Runes)
	}
	return a, nil
}

func (a *App) decideKey(status record.MatchStatus) (tea.Model, tea.Cmd) {
	if a.state != viewCompare {
		return a, nil
	}
	cmp, ok := views.Compare(a.data.Coins(), a.data.Candidates(), a.data.History(), a.compareID)
	if !ok {
		a.status = "no candidate to decide on"
		return a, nil
	}
	a.status = "saving..."
	return a, a.decideCmd(cmp.Candidate.MuseumCoinID, cmp.Candidate.ID, status, strings.TrimSpace(a.notesInput))
}

func (a *App) moveCursor(delta int) {
	switch a.state {
	case viewRegistry:
		a.regCursor = clamp(a.regCursor+delta, len(a.registryCoins()))
	case viewSearch:
		a.candCursor = clamp(a.candCursor+delta, len(a.searchResults))
	case viewHistory:
		a.histCursor = clamp(a.histCursor+delta, len(a.data.History()))
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (a *App) clampCursors() {
	a.regCursor = clamp(a.regCursor, len(a.registryCoins()))
	a.candCursor = clamp(a.candCursor, len(a.searchResults))
	a.histCursor = clamp(a.histCursor, len(a.data.History()))
}

func (a *App) cycleMint() {
	mints := views.Mints(a.data.Coins())
	a.mintIdx = (a.mintIdx + 1) % (len(mints) + 1)
	if a.mintIdx == 0 {
		a.regFilter.Mint = ""
	} else {
		a.regFilter.Mint = mints[a.mintIdx-1]
	}
	a.regCursor = 0
}

func (a *App) cycleAuthority() {
	auths := views.Authorities(a.data.Coins())
	a.authIdx = (a.authIdx + 1) % (len(auths) + 1)
	if a.authIdx == 0 {
		a.regFilter.Authority = ""
	} else {
		a.regFilter.Authority = auths[a.authIdx-1]
	}
	a.regCursor = 0
}

func (a *App) registryCoins() []record.Coin {
	return views.SortCoins(views.FilterCoins(a.data.Coins(), a.regFilter), a.regSort)
}

// messages
type sessionRestoredMsg struct{}

type loginDoneMsg struct{}

type refreshDoneMsg struct{}

type searchResultsMsg []record.Candidate

type decisionSavedMsg record.MatchRecord

type statusMsg string

type errMsg struct{ error }

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewRegistry:
		body = a.renderRegistry()
	case viewSearch:
		body = a.renderSearch()
	case viewCompare:
		body = a.renderCompare()
	case viewHistory:
		body = a.renderHistory()
	case viewLogin:
		body = a.renderLogin()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

func (a *App) renderLogin() string {
	title := titleStyle.Render("CoinMatch - Sign In")
	emailMarker, passMarker := " ", " "
	if a.loginField == 0 {
		emailMarker = "▶"
	} else {
		passMarker = "▶"
	}
	body := fmt.Sprintf("%s Email:    %s\n%s Password: %s", emailMarker, a.emailInput, passMarker, strings.Repeat("*", len(a.passwordInput)))
	body += "\n[tab] Switch field  [enter] Sign in  [ctrl+c] Quit"
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderDashboard() string {
	user := a.session.User()
	title := titleStyle.Render("CoinMatch Dashboard - " + user.Name)
	s := views.Summarize(a.data.Coins(), a.data.Candidates(), a.data.History())
	body := fmt.Sprintf("Coins: %d  Candidates: %d\nConfirmed: %d  Rejected: %d  Pending: %d", s.TotalCoins, s.TotalCandidates, s.Confirmed, s.Rejected, s.Pending)
	if a.data.Loading() {
		body += "\n(refreshing...)"
	}
	body += "\nTop candidates:"
	for _, c := range s.TopCandidates {
		body += fmt.Sprintf("\n- %-40s %.2f", c.ListingReference, c.SimilarityScore)
	}
	body += "\nRecent decisions:"
	for _, rec := range s.RecentDecisions {
		body += fmt.Sprintf("\n- %-10s %s -> %s", rec.Status, rec.MuseumCoinTitle, rec.CandidateTitle)
	}
	body += "\n[g] Registry  [s] Search  [c] Compare  [h] History  [r] Refresh  [x] Sign out  [q] Quit"
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderRegistry() string {
	title := titleStyle.Render("Coin Registry")
	coins := a.registryCoins()
	out := title + "\n"
	filters := []string{}
	if a.regFilter.Query != "" {
		filters = append(filters, "query="+a.regFilter.Query)
	}
	if a.regFilter.Mint != "" {
		filters = append(filters, "mint="+a.regFilter.Mint)
	}
	if a.regFilter.Authority != "" {
		filters = append(filters, "authority="+a.regFilter.Authority)
	}
	if len(filters) > 0 {
		out += "Filter: " + strings.Join(filters, "  ") + "\n"
	}
	for i, c := range coins {
		marker := " "
		if i == a.regCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-12s %-44s %s\n", marker, c.CatalogNumber, record.CoinTitle(c), c.Authority)
	}
	if len(coins) == 0 {
		out += "  (no coins match)\n"
	} else {
		sel := coins[clamp(a.regCursor, len(coins))]
		suggested := views.SuggestedCandidates(a.data.Candidates(), a.data.History(), sel.CoinID)
		if len(suggested) > 0 {
			out += "Suggested for " + record.CoinTitle(sel) + ":\n"
			for _, c := range suggested {
				out += fmt.Sprintf("  %-44s %.2f\n", c.ListingReference, c.SimilarityScore)
			}
		}
	}
	out += "[/] Query  [m] Mint  [u] Authority  [t] Sort field  [v] Sort dir  [d] Dashboard  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderSearch() string {
	title := titleStyle.Render("Candidate Search")
	out := title + "\n"
	if a.searchInput != "" {
		out += "Query: " + a.searchInput + "\n"
	}
	results := a.searchResults
	if len(results) == 0 {
		results = views.SortCandidatesByScore(views.FilterCandidates(a.data.Candidates(), "", a.minScore))
		out += fmt.Sprintf("Loaded candidates at or above %.2f:\n", a.minScore)
	}
	for i, c := range results {
		marker := " "
		if i == a.candCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-44s %.2f  %s\n", marker, c.ListingReference, c.SimilarityScore, record.DisplayDate(c.SaleDate))
	}
	out += "[/] New search  [c] Compare selected  [d] Dashboard  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderCompare() string {
	title := titleStyle.Render("Compare")
	cmp, ok := views.Compare(a.data.Coins(), a.data.Candidates(), a.data.History(), a.compareID)
	if !ok {
		return fmt.Sprintf("%s\nNo candidates loaded.\n[s] Search  [d] Dashboard  [q] Quit", title)
	}
	coinLine := "<coin not in registry>"
	if cmp.CoinFound {
		coinLine = fmt.Sprintf("%s\n   %s\n   %s", record.CoinTitle(cmp.Coin), record.AuthorityLine(cmp.Coin), record.Measurements(cmp.Coin))
	}
	cand := cmp.Candidate
	out := fmt.Sprintf("%s\nA: %s\nB: %s\n   %s\n   %s  Score: %.2f",
		title, coinLine, cand.ListingReference,
		record.CoinTitle(cand.Metadata), record.DisplayDate(cand.SaleDate), cand.SimilarityScore)
	for _, e := range cand.Metadata.AuctionHistory {
		out += "\n   " + record.AuctionEventLabel(e)
	}
	if cmp.Existing != nil {
		out += fmt.Sprintf("\nPrior decision: %s (%s)", cmp.Existing.Status, record.DisplayDate(cmp.Existing.SavedAt))
	}
	if a.notesInput != "" {
		out += "\nNotes: " + a.notesInput
	}
	out += "\n[y] Confirm  [n] Reject  [p] Pending  [o] Notes  [s] Search  [d] Dashboard  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderHistory() string {
	title := titleStyle.Render("Match History")
	history := a.data.History()
	out := title + "\n"
	for i, rec := range history {
		marker := " "
		if i == a.histCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-10s %-30s %-40s %s\n", marker, rec.Status, rec.MuseumCoinTitle, rec.CandidateTitle, record.DisplayDate(rec.SavedAt))
	}
	if len(history) == 0 {
		out += "  (no decisions yet)\n"
	}
	out += "[d] Dashboard  [g] Registry  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalQuery:
		if a.state == viewRegistry {
			return titleStyle.Render("Filter registry") + fmt.Sprintf("\n%s\n[enter] Apply  [esc] Cancel", a.regFilter.Query)
		}
		return titleStyle.Render("Search candidates") + fmt.Sprintf("\n%s\n[enter] Search  [esc] Cancel", a.searchInput)
	case modalNotes:
		return titleStyle.Render("Decision notes") + fmt.Sprintf("\n%s\n[enter] Done  [esc] Cancel", a.notesInput)
	default:
		return ""
	}
}
