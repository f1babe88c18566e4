package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
	"github.com/MrJamesThe3rd/easysplit/internal/client"
	"github.com/MrJamesThe3rd/easysplit/internal/draft"
	"github.com/MrJamesThe3rd/easysplit/internal/live"
	"github.com/MrJamesThe3rd/easysplit/internal/localstore"
)

type editorPane int

const (
	panePeople editorPane = iota
	paneItems
)

type editorForm int

const (
	formNone editorForm = iota
	formAddPerson
	formRename
	formAddItem
	formCatalog
	formExtra
	formRates
	formMenu
	formName
)

// editorFields backs the huh forms. It lives behind a pointer so bindings survive
// model copies.
type editorFields struct {
	text      string
	amount    string
	amount2   string
	catalogID int64
}

// EditorModel edits a split and saves it shortly after the last change.
type EditorModel struct {
	CommonModel
	deps Deps

	draft *draft.Draft
	code  string

	pane         editorPane
	personCursor int
	itemCursor   int

	formKind editorForm
	form     *huh.Form
	fields   *editorFields

	debounce *live.Debouncer
	pending  bool
	saving   bool
	dirty    bool

	status string
	err    error
}

// NewEditorModel opens sp for editing, or starts a new split when sp is nil. A new split
// starts with the remembered user name as its first person.
func NewEditorModel(deps Deps, sp *client.Split) EditorModel {
	m := EditorModel{
		deps:     deps,
		fields:   &editorFields{},
		debounce: live.NewDebouncer(deps.SaveDebounce),
	}

	if sp != nil {
		m.draft = draft.FromSplit(sp)
		m.code = sp.Code

		return m
	}

	m.draft = draft.New()

	if name := deps.Store.UserName(); name != "" {
		if _, err := m.draft.AddPerson(name); err != nil {
			m.status = errorStyle(err.Error())
		}
	}

	return m
}

func (m EditorModel) Title() string {
	if m.code == "" {
		return "New Split"
	}

	return "Edit Split " + m.code
}

func (m EditorModel) ShortHelp() string {
	if m.formKind != formNone {
		return "Enter: confirm | Esc: cancel"
	}

	return "Tab: switch pane | p: person | i: item | c: from menu | m: load menu | Space: toggle | " +
		"a: everyone | e: extra | s: rates | n: name | r: rename | x: remove | Esc: back"
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveTickMsg:
		return m.handleSaveTick(msg)

	case savedMsg:
		m.saving = false

		if msg.split != nil {
			m.code = msg.split.Code
		}

		if msg.err != nil {
			m.err = msg.err
			m.status = errorStyle(fmt.Sprintf("Save failed: %v", msg.err))

			return m, nil
		}

		m.err = nil
		m.status = faint("Saved " + time.Now().Format(time.Kitchen))

		if m.dirty {
			m.dirty = false
			cmd := m.changed()

			return m, cmd
		}

		return m, nil

	case menuLoadedMsg:
		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Could not load menu %s: %v", msg.code, msg.err))
			return m, nil
		}

		m.draft.LoadMenu(msg.code, msg.menu)
		cmd := m.changed()
		m.status = fmt.Sprintf("Loaded %d items from menu %s. Press c to order.", len(msg.menu.Items), msg.code)

		return m, cmd
	}

	if m.formKind != formNone {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	return m.updateBrowse(keyMsg)
}

func (m EditorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.leave()
	case "tab":
		m.pane = (m.pane + 1) % 2
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "p":
		return m.openForm(formAddPerson)
	case "r":
		if _, ok := m.selectedPerson(); ok {
			return m.openForm(formRename)
		}
	case "e":
		if _, ok := m.selectedPerson(); ok {
			return m.openForm(formExtra)
		}
	case "i":
		return m.openForm(formAddItem)
	case "c":
		if len(m.draft.Catalog()) == 0 {
			m.status = "No menu loaded. Press m to load one."
			return m, nil
		}

		return m.openForm(formCatalog)
	case "m":
		return m.openForm(formMenu)
	case "s":
		return m.openForm(formRates)
	case "n":
		return m.openForm(formName)
	case "x", "delete":
		return m.removeSelected()
	case " ":
		person, okPerson := m.selectedPerson()
		item, okItem := m.selectedItem()

		if okPerson && okItem {
			return m.apply(m.draft.Toggle(item.InstanceID, person.ID))
		}
	case "a":
		if item, ok := m.selectedItem(); ok {
			ids := make([]string, len(m.draft.People))
			for i, p := range m.draft.People {
				ids[i] = p.ID
			}

			return m.apply(m.draft.Assign(item.InstanceID, ids))
		}
	}

	return m, nil
}

// leave saves pending edits before going back instead of waiting for the debounce.
func (m EditorModel) leave() (tea.Model, tea.Cmd) {
	m.debounce.Stop()

	if !m.dirty && !m.pending {
		return m, Back
	}

	// A first save still in flight has no code yet; a second create would duplicate it.
	if m.draft.Validate() != nil || (m.saving && m.code == "") {
		return m, Back
	}

	payload, err := m.draft.Payload()
	if err != nil {
		return m, Back
	}

	return m, tea.Batch(m.saveCmd(payload), Back)
}

func (m *EditorModel) moveCursor(delta int) {
	switch m.pane {
	case panePeople:
		m.personCursor = clamp(m.personCursor+delta, len(m.draft.People))
	case paneItems:
		m.itemCursor = clamp(m.itemCursor+delta, len(m.draft.Items))
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}

	if i >= n {
		return n - 1
	}

	return i
}

func (m EditorModel) selectedPerson() (draft.Person, bool) {
	if m.personCursor < len(m.draft.People) {
		return m.draft.People[m.personCursor], true
	}

	return draft.Person{}, false
}

func (m EditorModel) selectedItem() (draft.OrderItem, bool) {
	if m.itemCursor < len(m.draft.Items) {
		return m.draft.Items[m.itemCursor], true
	}

	return draft.OrderItem{}, false
}

func (m EditorModel) removeSelected() (tea.Model, tea.Cmd) {
	if m.pane == panePeople {
		person, ok := m.selectedPerson()
		if !ok {
			return m, nil
		}

		model, cmd := m.apply(m.draft.RemovePerson(person.ID))
		em := model.(EditorModel)
		em.personCursor = clamp(em.personCursor, len(em.draft.People))

		return em, cmd
	}

	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}

	model, cmd := m.apply(m.draft.RemoveItem(item.InstanceID))
	em := model.(EditorModel)
	em.itemCursor = clamp(em.itemCursor, len(em.draft.Items))

	return em, cmd
}

// apply reports a failed mutation or schedules a save for a successful one.
func (m EditorModel) apply(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.status = errorStyle(err.Error())
		return m, nil
	}

	cmd := m.changed()

	return m, cmd
}

// changed marks the draft as edited and starts a new debounce window.
func (m *EditorModel) changed() tea.Cmd {
	m.pending = true
	m.status = faint("Unsaved changes...")
	tag := m.debounce.Bump()

	return tea.Tick(m.debounce.Delay(), func(time.Time) tea.Msg {
		return saveTickMsg{tag: tag}
	})
}

func (m EditorModel) handleSaveTick(msg saveTickMsg) (tea.Model, tea.Cmd) {
	if !m.debounce.Current(msg.tag) {
		return m, nil
	}

	if m.saving {
		m.dirty = true
		return m, nil
	}

	if err := m.draft.Validate(); err != nil {
		m.status = faint("Not saved yet: " + strings.TrimPrefix(err.Error(), draft.ErrInvalid.Error()+": "))
		return m, nil
	}

	payload, err := m.draft.Payload()
	if err != nil {
		m.status = errorStyle(describe(err))
		return m, nil
	}

	m.pending = false
	m.saving = true
	m.status = faint("Saving...")

	return m, m.saveCmd(payload)
}

func describe(err error) string {
	if errors.Is(err, allocation.ErrExcessContribution) {
		return "Extra contributions are more than everyone else owes."
	}

	return err.Error()
}

func (m EditorModel) openForm(kind editorForm) (tea.Model, tea.Cmd) {
	*m.fields = editorFields{}

	var fields []huh.Field

	switch kind {
	case formAddPerson:
		fields = append(fields, huh.NewInput().Title("Name").Value(&m.fields.text).Validate(required("name")))
	case formRename:
		person, _ := m.selectedPerson()
		m.fields.text = person.Name
		fields = append(fields, huh.NewInput().Title("Rename "+person.Name).Value(&m.fields.text).Validate(required("name")))
	case formExtra:
		person, _ := m.selectedPerson()
		m.fields.amount = fmt.Sprintf("%.2f", person.Extra)
		fields = append(fields, huh.NewInput().
			Title("Extra from "+person.Name).
			Description("Others pay less by the same amount").
			Value(&m.fields.amount).
			Validate(amount(true)))
	case formAddItem:
		fields = append(fields,
			huh.NewInput().Title("Item").Value(&m.fields.text).Validate(required("item name")),
			huh.NewInput().Title("Price").Value(&m.fields.amount).Validate(amount(false)),
		)
	case formCatalog:
		options := make([]huh.Option[int64], len(m.draft.Catalog()))
		for i, it := range m.draft.Catalog() {
			options[i] = huh.NewOption(fmt.Sprintf("%s  %s", it.Name, FormatMoney(m.draft.Currency, it.Price)), it.ID)
		}

		fields = append(fields, huh.NewSelect[int64]().Title("Order").Options(options...).Value(&m.fields.catalogID))
	case formRates:
		m.fields.amount = fmt.Sprintf("%g", m.draft.ServiceCharge)
		m.fields.amount2 = fmt.Sprintf("%g", m.draft.TipPercent)
		fields = append(fields,
			huh.NewInput().Title("Service charge %").Value(&m.fields.amount).Validate(percent),
			huh.NewInput().Title("Tip %").Value(&m.fields.amount2).Validate(percent),
		)
	case formMenu:
		fields = append(fields, huh.NewInput().Title("Menu code").Value(&m.fields.text).Validate(required("menu code")))
	case formName:
		m.fields.text = m.draft.Name
		fields = append(fields, huh.NewInput().Title("Split name").Value(&m.fields.text))
	}

	m.formKind = kind
	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)

	return m, m.form.Init()
}

func (m EditorModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.formKind = formNone
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	kind := m.formKind
	m.formKind = formNone
	m.form = nil

	return m.submit(kind)
}

func (m EditorModel) submit(kind editorForm) (tea.Model, tea.Cmd) {
	f := m.fields

	switch kind {
	case formAddPerson:
		_, err := m.draft.AddPerson(f.text)
		if err == nil {
			m.personCursor = len(m.draft.People) - 1
		}

		return m.apply(err)
	case formRename:
		person, _ := m.selectedPerson()
		return m.apply(m.draft.RenamePerson(person.ID, f.text))
	case formExtra:
		person, _ := m.selectedPerson()
		return m.apply(m.draft.SetExtra(person.ID, parseAmount(f.amount)))
	case formAddItem:
		owner, _ := m.selectedPerson()

		_, err := m.draft.AddItem(f.text, parseAmount(f.amount), owner.ID)
		if err == nil {
			m.itemCursor = len(m.draft.Items) - 1
		}

		return m.apply(err)
	case formCatalog:
		owner, _ := m.selectedPerson()

		_, err := m.draft.AddCatalogItem(f.catalogID, owner.ID)
		if err == nil {
			m.itemCursor = len(m.draft.Items) - 1
		}

		return m.apply(err)
	case formRates:
		return m.apply(m.draft.SetRates(parseAmount(f.amount), parseAmount(f.amount2)))
	case formMenu:
		m.status = "Loading menu..."
		return m, m.loadMenuCmd(strings.ToUpper(strings.TrimSpace(f.text)))
	case formName:
		m.draft.Name = strings.TrimSpace(f.text)
		cmd := m.changed()

		return m, cmd
	}

	return m, nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}

		return nil
	}
}

func amount(allowZero bool) func(string) error {
	return func(s string) error {
		v, err := decimal.NewFromString(normalizeAmount(s))
		if err != nil {
			return fmt.Errorf("enter an amount like 12.50")
		}

		if v.IsNegative() || (!allowZero && v.IsZero()) {
			return fmt.Errorf("amount must be positive")
		}

		return nil
	}
}

func percent(s string) error {
	v, err := decimal.NewFromString(normalizeAmount(s))
	if err != nil || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("enter a percentage from 0 to 100")
	}

	return nil
}

func normalizeAmount(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}

// parseAmount reads a value the form has already validated.
func parseAmount(s string) float64 {
	v, err := decimal.NewFromString(normalizeAmount(s))
	if err != nil {
		return 0
	}

	return v.Round(2).InexactFloat64()
}

func (m EditorModel) View() string {
	res, totalsErr := m.draft.Totals()

	totals := make(map[string]allocation.PersonTotal, len(res.Totals))
	for _, pt := range res.Totals {
		totals[pt.Person.ID] = pt
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, m.viewPeople(totals), m.viewItems()),
		m.viewSummary(res, totalsErr),
	)

	if m.form != nil {
		panel := focusedPanelStyle.Padding(1, 2).Width(48).Render(m.form.View())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m EditorModel) viewHeader() string {
	name := m.draft.Name
	if name == "" {
		name = "Untitled split"
	}

	code := faint("not saved yet")
	if m.code != "" {
		code = "code " + activeStyle(m.code)
	}

	menuCode := ""
	if m.draft.MenuCode != "" {
		menuCode = " | menu " + m.draft.MenuCode
	}

	return lipgloss.NewStyle().PaddingBottom(1).Render(fmt.Sprintf(
		"%s (%s) | service %g%% | tip %g%%%s",
		lipgloss.NewStyle().Bold(true).Render(name), code, m.draft.ServiceCharge, m.draft.TipPercent, menuCode,
	))
}

func (m EditorModel) viewPeople(totals map[string]allocation.PersonTotal) string {
	var b strings.Builder

	b.WriteString("People\n\n")

	if len(m.draft.People) == 0 {
		b.WriteString(faint("Press p to add someone"))
	}

	for i, p := range m.draft.People {
		cursor := "  "
		if i == m.personCursor {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%-14s %9s", cursor, p.Name, FormatMoney(m.draft.Currency, totals[p.ID].Total))
		if p.Extra > 0 {
			line += faint(fmt.Sprintf(" (+%s)", FormatMoney(m.draft.Currency, p.Extra)))
		}

		b.WriteString(line + "\n")
	}

	style := panelStyle
	if m.pane == panePeople {
		style = focusedPanelStyle
	}

	return style.Width(38).Render(b.String())
}

func (m EditorModel) viewItems() string {
	names := make(map[string]string, len(m.draft.People))
	for _, p := range m.draft.People {
		names[p.ID] = p.Name
	}

	selected, _ := m.selectedPerson()

	var b strings.Builder

	b.WriteString("Items\n\n")

	if len(m.draft.Items) == 0 {
		b.WriteString(faint("Press i to add an item"))
	}

	for i, it := range m.draft.Items {
		cursor := "  "
		if i == m.itemCursor {
			cursor = "> "
		}

		mark := "[ ]"

		who := make([]string, 0, len(it.AssignedTo))
		for _, id := range it.AssignedTo {
			who = append(who, names[id])

			if id == selected.ID {
				mark = "[x]"
			}
		}

		assigned := faint("unassigned")
		if len(who) > 0 {
			assigned = strings.Join(who, ", ")
		}

		fmt.Fprintf(&b, "%s%s %-18s %9s  %s\n", cursor, mark, it.Name, FormatMoney(m.draft.Currency, it.Price), assigned)
	}

	style := panelStyle
	if m.pane == paneItems {
		style = focusedPanelStyle
	}

	return style.Width(72).Render(b.String())
}

func (m EditorModel) viewSummary(res allocation.Result, err error) string {
	if err != nil {
		return lipgloss.NewStyle().PaddingTop(1).Render(errorStyle(describe(err)))
	}

	c := m.draft.Currency

	return lipgloss.NewStyle().PaddingTop(1).Render(fmt.Sprintf(
		"Subtotal %s | Service %s | Tip %s | Total %s",
		FormatMoney(c, res.Subtotal), FormatMoney(c, res.Service), FormatMoney(c, res.Tip),
		activeStyle(FormatMoney(c, res.GrandTotal)),
	))
}

// Messages

type saveTickMsg struct {
	tag uint64
}

type savedMsg struct {
	split *client.Split
	err   error
}

type menuLoadedMsg struct {
	code string
	menu *client.MenuWithItems
	err  error
}

// saveCmd creates the split on first save and replaces it afterwards. The split is
// remembered locally from inside the command so a save started while leaving the editor
// is still recorded.
func (m EditorModel) saveCmd(payload client.SplitInput) tea.Cmd {
	code := m.code
	deps := m.deps

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		var (
			sp  *client.Split
			err error
		)

		if code == "" {
			sp, err = deps.Client.CreateSplit(ctx, payload)
		} else {
			sp, err = deps.Client.UpdateSplit(ctx, code, payload)
		}

		if err != nil {
			return savedMsg{err: err}
		}

		if err := deps.Store.AddMySplit(sp.Code); err != nil {
			return savedMsg{split: sp, err: fmt.Errorf("saved as %s but not remembered locally: %w", sp.Code, err)}
		}

		if code == "" {
			if err := deps.Store.SetSplitStatus(sp.Code, localstore.StatusOpen); err != nil {
				return savedMsg{split: sp, err: err}
			}
		}

		return savedMsg{split: sp}
	}
}

func (m EditorModel) loadMenuCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		menu, err := m.deps.Client.GetMenu(ctx, code)
		if errors.Is(err, client.ErrNotFound) {
			err = errors.New("no menu with that code")
		}

		return menuLoadedMsg{code: code, menu: menu, err: err}
	}
}
