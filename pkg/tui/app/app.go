// Package app hosts the root Bubble Tea model for the dashboard.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/compose"
	"tableflip.dev/dash/pkg/habit"
	"tableflip.dev/dash/pkg/reorder"
	"tableflip.dev/dash/pkg/section"
	"tableflip.dev/dash/pkg/store"
	"tableflip.dev/dash/pkg/tui/cache"
	"tableflip.dev/dash/pkg/tui/components/habittracker"
	"tableflip.dev/dash/pkg/tui/events"
	"tableflip.dev/dash/pkg/tui/poller"
	"tableflip.dev/dash/pkg/tui/registry"
	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

type errMsg struct{ err error }

type catalogLoadedMsg struct {
	widgets  []widget.Widget
	sections []section.Section
	stale    bool
	err      error
}

type sectionsLoadedMsg struct {
	sections []section.Section
	err      error
}

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct{ event store.Event }

type watchStoppedMsg struct{}

type catalogTickMsg struct{}

// Model is the root dashboard model. It owns the shared cache, the
// optimistic mutation engine, the reorder coordinator, and one poller
// task per mounted widget.
type Model struct {
	ctx  context.Context
	svc  api.Service
	snap *store.Store // optional offline snapshot store

	theme    theme.Theme
	registry *registry.Registry

	cache   *cache.Cache
	engine  *cache.Engine
	coord   *reorder.Coordinator
	polls   *poller.Poller
	eventCh chan tea.Msg

	widgets  []widget.Widget
	grouping compose.Grouping
	stale    bool
	loading  bool // no catalog applied yet
	spin     spinner.Model

	secIdx int
	widIdx int
	cursor habittracker.Cursor
	// pending marks habit/day pairs whose toggle has not settled, so
	// the triggering control is disabled for the duration.
	pending map[string]bool
	// submitting maps mutation IDs back to pending keys.
	submitting map[string]string

	regionErrs map[string]string // widget ID -> last fetch error
	status     string

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc

	termWidth  int
	termHeight int

	catalogEvery time.Duration
}

// New wires the dashboard around a remote service. snap may be nil to
// run without the offline snapshot store.
func New(ctx context.Context, svc api.Service, snap *store.Store) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	th := theme.Default()
	c := cache.New("cache")
	m := &Model{
		ctx:        ctx,
		svc:        svc,
		snap:       snap,
		theme:      th,
		registry:   registry.Default(th),
		cache:      c,
		eventCh:    make(chan tea.Msg, 64),
		pending:    make(map[string]bool),
		submitting: make(map[string]string),
		regionErrs: make(map[string]string),
		loading:    true,
		spin:       spinner.New(spinner.WithSpinner(spinner.MiniDot)),

		catalogEvery: 5 * time.Minute,
	}
	m.engine = cache.NewEngine("engine", c, m.refetchKey)
	m.coord = reorder.New("reorder", svc, m.emit)
	m.polls = poller.New("poller", svc, c, m.emit)
	return m
}

// SetCatalogInterval overrides how often the widget/section catalog is
// reloaded in the background.
func (m *Model) SetCatalogInterval(d time.Duration) {
	if d > 0 {
		m.catalogEvery = d
	}
}

func (m *Model) catalogTick() tea.Cmd {
	return tea.Tick(m.catalogEvery, func(time.Time) tea.Msg {
		return catalogTickMsg{}
	})
}

// emit pushes component events into the model's event channel without
// blocking the emitter.
func (m *Model) emit(msg tea.Msg) {
	select {
	case m.eventCh <- msg:
	default:
	}
}

// refetchKey reloads the authoritative value for a widget data key after
// a successful optimistic commit.
func (m *Model) refetchKey(ctx context.Context, key string) (any, error) {
	id, ok := strings.CutPrefix(key, "widget:")
	if !ok {
		return nil, fmt.Errorf("app: no refetcher for key %q", key)
	}
	data, err := m.svc.WidgetData(ctx, id)
	if err != nil {
		return nil, err
	}
	m.persist(key, data)
	return data, nil
}

// persist best-effort mirrors a fetched payload into the snapshot store.
func (m *Model) persist(key string, raw json.RawMessage) {
	if m.snap == nil {
		return
	}
	_ = m.snap.WriteRaw(key, raw)
}

// Init loads the catalog and begins draining component events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCatalog(),
		m.startWatch(),
		m.waitForEvent(),
		m.waitForCache(),
		m.catalogTick(),
		m.spin.Tick,
	)
}

// loadCatalog fetches widgets and sections. When the remote is down and
// a snapshot exists, the dashboard paints from the snapshot and flags
// itself stale.
func (m *Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		widgets, werr := m.svc.Widgets(m.ctx)
		sections, serr := m.svc.Sections(m.ctx)
		if werr == nil && serr == nil {
			if m.snap != nil {
				_ = m.snap.WriteJSON(cache.KeyWidgets, widgets)
				_ = m.snap.WriteJSON(cache.KeySections, sections)
			}
			return catalogLoadedMsg{widgets: widgets, sections: sections}
		}

		err := werr
		if err == nil {
			err = serr
		}
		if m.snap != nil {
			var sw []widget.Widget
			var ss []section.Section
			if m.snap.ReadJSON(cache.KeyWidgets, &sw) == nil && m.snap.ReadJSON(cache.KeySections, &ss) == nil {
				return catalogLoadedMsg{widgets: sw, sections: ss, stale: true, err: err}
			}
		}
		return catalogLoadedMsg{err: err}
	}
}

func (m *Model) reloadSections() tea.Cmd {
	return func() tea.Msg {
		sections, err := m.svc.Sections(m.ctx)
		if err == nil && m.snap != nil {
			_ = m.snap.WriteJSON(cache.KeySections, sections)
		}
		return sectionsLoadedMsg{sections: sections, err: err}
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	ch := m.eventCh
	return func() tea.Msg {
		return <-ch
	}
}

func (m *Model) waitForCache() tea.Cmd {
	ch := m.cache.Events()
	return func() tea.Msg {
		return <-ch
	}
}

func (m *Model) startWatch() tea.Cmd {
	if m.snap == nil {
		return nil
	}
	snap := m.snap
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := snap.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// applyCatalog installs a freshly loaded catalog: recompose, hand the
// authoritative order to the coordinator, and (re)mount pollers for the
// widgets that survive composition.
func (m *Model) applyCatalog(widgets []widget.Widget, sections []section.Section) {
	previous := m.widgets
	m.widgets = widgets
	m.grouping = compose.Compose(widgets, sections)
	m.coord.SetSections(m.grouping.Order)
	m.clampSelection()

	mounted := make(map[string]bool, len(widgets))
	for _, sec := range m.grouping.Order {
		for _, w := range m.grouping.ByName[sec.Name] {
			if !w.Enabled {
				continue
			}
			mounted[w.ID] = true
			m.polls.Mount(m.ctx, w)
		}
	}
	// Unmapped widgets and widgets dropped from the catalog stop polling.
	for _, w := range previous {
		if !mounted[w.ID] {
			m.polls.Unmount(w.ID)
		}
	}
	for _, w := range widgets {
		if !mounted[w.ID] {
			m.polls.Unmount(w.ID)
		}
	}
	if len(m.grouping.Unmapped) > 0 {
		ids := make([]string, 0, len(m.grouping.Unmapped))
		for _, w := range m.grouping.Unmapped {
			ids = append(ids, w.ID)
		}
		m.emit(events.UnmappedWidgetsMsg{Component: "app", WidgetIDs: ids})
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
}

// visibleSections returns the renderable sections (enabled, non-empty).
func (m *Model) visibleSections() []section.Section {
	return m.grouping.Visible()
}

func (m *Model) clampSelection() {
	vis := m.visibleSections()
	if len(vis) == 0 {
		m.secIdx, m.widIdx = 0, 0
		return
	}
	if m.secIdx >= len(vis) {
		m.secIdx = len(vis) - 1
	}
	if m.secIdx < 0 {
		m.secIdx = 0
	}
	ws := m.grouping.ByName[vis[m.secIdx].Name]
	if m.widIdx >= len(ws) {
		m.widIdx = len(ws) - 1
	}
	if m.widIdx < 0 {
		m.widIdx = 0
	}
}

// selectedWidget returns the widget under the selection, if any.
func (m *Model) selectedWidget() (widget.Widget, bool) {
	vis := m.visibleSections()
	if m.secIdx < 0 || m.secIdx >= len(vis) {
		return widget.Widget{}, false
	}
	ws := m.grouping.ByName[vis[m.secIdx].Name]
	if m.widIdx < 0 || m.widIdx >= len(ws) {
		return widget.Widget{}, false
	}
	return ws[m.widIdx], true
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height

	case errMsg:
		m.setStatus("ERR: " + msg.err.Error())

	case catalogLoadedMsg:
		if msg.widgets == nil && msg.err != nil {
			m.setStatus("ERR: " + msg.err.Error())
			break
		}
		m.stale = msg.stale
		m.loading = false
		if msg.stale {
			m.setStatus("offline: showing last-known data")
		}
		m.applyCatalog(msg.widgets, msg.sections)
		m.emit(events.SnapshotMsg{Component: "app", Stale: msg.stale, Err: msg.err})

	case sectionsLoadedMsg:
		if msg.err != nil {
			m.setStatus("ERR: " + msg.err.Error())
			break
		}
		m.applyCatalog(m.widgets, msg.sections)

	case events.SnapshotMsg:
		cmds = append(cmds, m.waitForEvent())

	case events.UnmappedWidgetsMsg:
		m.setStatus(fmt.Sprintf("%d widget(s) have no section mapping", len(msg.WidgetIDs)))
		cmds = append(cmds, m.waitForEvent())

	case events.WidgetDataMsg:
		if msg.Err != nil {
			m.regionErrs[msg.WidgetID] = msg.Err.Error()
		} else {
			delete(m.regionErrs, msg.WidgetID)
			m.persist("widget:"+msg.WidgetID, msg.Data)
		}
		cmds = append(cmds, m.waitForEvent())

	case events.SectionOrderMsg:
		// Re-sort the displayed sections immediately so the move is
		// visible while the write is in flight.
		m.grouping = regroup(m.grouping, msg.Order)
		m.clampSelection()
		cmds = append(cmds, m.waitForEvent())

	case events.ReorderSettledMsg:
		if msg.Err != nil {
			m.setStatus("ERR: reorder: " + msg.Err.Error())
		} else {
			m.setStatus("order saved")
		}
		cmds = append(cmds, m.reloadSections(), m.waitForEvent())

	case events.MutationResolvedMsg:
		if key, ok := m.submitting[msg.ID]; ok {
			delete(m.submitting, msg.ID)
			delete(m.pending, key)
		}
		if msg.Err != nil {
			m.setStatus("ERR: toggle: " + msg.Err.Error())
		}
		cmds = append(cmds, m.waitForCache())

	case events.CacheUpdateMsg:
		m.clampHabitCursor()
		cmds = append(cmds, m.waitForCache())

	case events.DebugMsg:
		cmds = append(cmds, m.waitForCache())

	case watchStartedMsg:
		if msg.err != nil {
			m.setStatus("ERR: watch " + msg.err.Error())
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case watchEventMsg:
		m.handleWatchEvent(msg.event, &cmds)
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case watchStoppedMsg:
		m.stopWatch()
		cmds = append(cmds, m.startWatch())

	case catalogTickMsg:
		cmds = append(cmds, m.loadCatalog(), m.catalogTick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKey(msg)...)
	}

	return m, tea.Batch(cmds...)
}

// handleWatchEvent reacts to another process updating the snapshot.
func (m *Model) handleWatchEvent(ev store.Event, cmds *[]tea.Cmd) {
	switch {
	case ev.Key == cache.KeyWidgets || ev.Key == cache.KeySections || ev.Key == "":
		*cmds = append(*cmds, m.loadCatalog())
	case strings.HasPrefix(ev.Key, "widget:"):
		m.polls.Refresh(strings.TrimPrefix(ev.Key, "widget:"))
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg.String() {
	case "q", "ctrl+c":
		m.stopWatch()
		m.polls.Shutdown()
		cmds = append(cmds, tea.Quit)

	case "r":
		cmds = append(cmds, m.loadCatalog())
		if w, ok := m.selectedWidget(); ok {
			m.polls.Refresh(w.ID)
		}

	case "j", "down":
		m.moveWidgetSelection(1)
	case "k", "up":
		m.moveWidgetSelection(-1)
	case "h":
		m.moveSectionSelection(-1)
	case "l":
		m.moveSectionSelection(1)

	case "K":
		m.moveSection(-1)
	case "J":
		m.moveSection(1)

	case "left":
		m.moveHabitCursor(-1)
	case "right":
		m.moveHabitCursor(1)

	case "space", "enter":
		cmds = append(cmds, m.toggleSelectedHabitDay()...)
	}
	return cmds
}

func (m *Model) moveWidgetSelection(delta int) {
	vis := m.visibleSections()
	if len(vis) == 0 {
		return
	}
	ws := m.grouping.ByName[vis[m.secIdx].Name]
	next := m.widIdx + delta
	switch {
	case next < 0:
		m.moveSectionSelection(-1)
		if vis := m.visibleSections(); len(vis) > 0 {
			m.widIdx = len(m.grouping.ByName[vis[m.secIdx].Name]) - 1
		}
	case next >= len(ws):
		m.moveSectionSelection(1)
		m.widIdx = 0
	default:
		m.widIdx = next
	}
	m.cursor = habittracker.Cursor{}
}

func (m *Model) moveSectionSelection(delta int) {
	vis := m.visibleSections()
	if len(vis) == 0 {
		return
	}
	m.secIdx = (m.secIdx + delta + len(vis)) % len(vis)
	m.widIdx = 0
	m.cursor = habittracker.Cursor{}
}

// moveSection reorders the selected section. The visible selection maps
// back to the full catalog order before calling the coordinator, since
// reorder indexes refer to the entire section list, hidden entries
// included.
func (m *Model) moveSection(delta int) {
	vis := m.visibleSections()
	if m.secIdx < 0 || m.secIdx >= len(vis) {
		return
	}
	name := vis[m.secIdx].Name
	order := m.coord.Order()
	idx := section.Find(order, name)
	if idx < 0 {
		return
	}
	if delta < 0 {
		m.coord.MoveUp(m.ctx, idx)
	} else {
		m.coord.MoveDown(m.ctx, idx)
	}
}

func (m *Model) moveHabitCursor(delta int) {
	w, ok := m.selectedWidget()
	if !ok || w.Type != widget.TypeHabitTracking {
		return
	}
	p, ok := m.habitPayload(w)
	if !ok {
		return
	}
	m.cursor = habittracker.Clamp(p, habittracker.Cursor{Habit: m.cursor.Habit, Day: m.cursor.Day + delta})
}

func (m *Model) clampHabitCursor() {
	w, ok := m.selectedWidget()
	if !ok || w.Type != widget.TypeHabitTracking {
		return
	}
	if p, ok := m.habitPayload(w); ok {
		m.cursor = habittracker.Clamp(p, m.cursor)
	}
}

func (m *Model) habitPayload(w widget.Widget) (habit.Payload, bool) {
	v, ok := m.cache.Get(w.Key())
	if !ok {
		return habit.Payload{}, false
	}
	raw, ok := v.(json.RawMessage)
	if !ok {
		return habit.Payload{}, false
	}
	p, err := habittracker.Decode(raw)
	if err != nil {
		return habit.Payload{}, false
	}
	return p, true
}

// toggleSelectedHabitDay runs the optimistic toggle for the habit/day
// under the cursor. The pair's control is disabled until the mutation
// settles; other pairs remain toggleable and serialize through the
// engine's per-key queue.
func (m *Model) toggleSelectedHabitDay() []tea.Cmd {
	w, ok := m.selectedWidget()
	if !ok || w.Type != widget.TypeHabitTracking {
		return nil
	}
	p, ok := m.habitPayload(w)
	if !ok {
		return nil
	}
	habitID, date, ok := habittracker.Target(p, m.cursor)
	if !ok {
		return nil
	}
	pendingKey := habittracker.PendingKey(habitID, date)
	if m.pending[pendingKey] {
		return nil
	}

	hi := p.FindHabit(habitID)
	di := p.Habits[hi].FindDay(date)
	completed := !p.Habits[hi].Days[di].Completed

	patch := func(current any) (any, error) {
		raw, ok := current.(json.RawMessage)
		if !ok {
			return nil, fmt.Errorf("app: no cached payload for %s", w.Key())
		}
		cur, err := habittracker.Decode(raw)
		if err != nil {
			return nil, err
		}
		next, err := cur.Toggle(habitID, date)
		if err != nil {
			return nil, err
		}
		buf, err := json.Marshal(next)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(buf), nil
	}
	commit := func(ctx context.Context) error {
		return m.svc.SetHabitCompletion(ctx, habit.Completion{
			HabitID:   habitID,
			Date:      date,
			Completed: completed,
		})
	}

	mut, err := m.engine.Apply(m.ctx, w.Key(), patch, commit)
	if err != nil {
		m.setStatus("ERR: toggle: " + err.Error())
		return nil
	}
	m.pending[pendingKey] = true
	m.submitting[mut.ID] = pendingKey
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	vis := m.visibleSections()
	if len(vis) == 0 {
		body := m.theme.Widget.Faint.Render("no widgets to display")
		if m.loading {
			body = m.spin.View() + " " + m.theme.Widget.Faint.Render("loading dashboard…")
		}
		return body + "\n" + m.footer()
	}

	width := m.termWidth
	if width <= 0 {
		width = 80
	}

	var blocks []string
	for si, sec := range vis {
		titleStyle := m.theme.Section.Title
		if si == m.secIdx {
			titleStyle = m.theme.Section.Selected
		}
		blocks = append(blocks, titleStyle.Render(sec.Title))

		for wi, w := range m.grouping.ByName[sec.Name] {
			blocks = append(blocks, m.renderWidget(w, si == m.secIdx && wi == m.widIdx, width))
		}
	}
	return strings.Join(blocks, "\n") + "\n" + m.footer()
}

func (m *Model) renderWidget(w widget.Widget, selected bool, width int) string {
	innerWidth := width - 4
	var lines []string

	if errText, ok := m.regionErrs[w.ID]; ok {
		lines = append(lines, m.theme.Widget.Error.Render("fetch failed: "+errText))
	}

	var raw json.RawMessage
	if v, ok := m.cache.Get(w.Key()); ok {
		if r, ok := v.(json.RawMessage); ok {
			raw = r
		}
	}

	if selected && w.Type == widget.TypeHabitTracking && len(raw) > 0 {
		if p, err := habittracker.Decode(raw); err == nil {
			cursor := m.cursor
			lines = append(lines, habittracker.View(p, &cursor, m.pending, m.theme)...)
		} else {
			lines = append(lines, m.theme.Widget.Error.Render(err.Error()))
		}
	} else {
		lines = append(lines, m.registry.Render(w, raw, innerWidth)...)
	}

	frame := m.theme.Section.Frame
	if selected {
		frame = frame.BorderForeground(lipgloss.Color("212"))
	}
	return frame.Render(strings.Join(lines, "\n"))
}

func (m *Model) footer() string {
	help := m.theme.Footer.Help.Render("j/k widgets · h/l sections · J/K reorder · ←/→ day · space toggle · r refresh · q quit")
	parts := []string{help}
	if m.coord.Pending() {
		parts = append(parts, m.spin.View()+" "+m.theme.Footer.Status.Render("saving order…"))
	}
	if m.stale {
		parts = append(parts, m.theme.Footer.Status.Render("offline"))
	}
	if m.status != "" {
		style := m.theme.Footer.Status
		if strings.HasPrefix(m.status, "ERR:") {
			style = m.theme.Footer.Error
		}
		parts = append(parts, style.Render(m.status))
	}
	return strings.Join(parts, "  ")
}

// regroup re-sorts an existing grouping to a pending name order without
// refetching, used while a reorder write is in flight.
func regroup(g compose.Grouping, order []string) compose.Grouping {
	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}
	sections := append([]section.Section(nil), g.Order...)
	for i := range sections {
		if pos, ok := index[sections[i].Name]; ok {
			sections[i].Position = pos
		}
	}
	widgets := make([]widget.Widget, 0)
	for _, sec := range g.Order {
		widgets = append(widgets, g.ByName[sec.Name]...)
	}
	widgets = append(widgets, g.Unmapped...)
	return compose.Compose(widgets, sections)
}

// Run launches the interactive dashboard program.
func Run(ctx context.Context, svc api.Service, snap *store.Store, catalogEvery time.Duration) error {
	m := New(ctx, svc, snap)
	if catalogEvery > 0 {
		m.SetCatalogInterval(catalogEvery)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
