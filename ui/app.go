// Package ui renders the monitor in the terminal. It consumes the core's
// display events and issues manual triggers; no alert logic lives here.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rafeeqops/rafeeq/engine"
	"github.com/rafeeqops/rafeeq/model"
)

const (
	statusIdle      = "SYSTEM ACTIVE - MONITORING PATIENT"
	statusProcessed = "Alert processed. Monitoring..."

	// statusHold keeps an alert outcome on screen before reverting.
	statusHold = 5 * time.Second
)

// manualPreset is one keyboard-driven emergency simulation.
type manualPreset struct {
	key   string
	label string
	alert model.AlertType
	hr    int
	spo2  int
	temp  float64
	fall  bool
	help  bool
}

// The presets mirror the demo's emergency buttons.
var manualPresets = []manualPreset{
	{key: "h", label: "Critical heart rate (155 BPM)", alert: model.AlertHeart, hr: 155, spo2: 96, temp: 37.0},
	{key: "o", label: "Low oxygen saturation (88%)", alert: model.AlertSpo2, hr: 110, spo2: 88, temp: 36.9},
	{key: "f", label: "Fall detected", alert: model.AlertFall, hr: 120, spo2: 95, temp: 37.1, fall: true},
	{key: "p", label: "Patient help request", alert: model.AlertHelp, hr: 105, spo2: 94, temp: 37.3, help: true},
	{key: "t", label: "High temperature (39.2°C)", alert: model.AlertTemp, hr: 98, spo2: 96, temp: 39.2},
}

type eventMsg model.DisplayEvent

type tickMsg time.Time

// Model is the bubbletea model.
type Model struct {
	monitor *engine.Monitor
	width   int
	height  int

	// Latest core state, as reported by display events.
	reading    model.VitalReading
	assess     model.DistressAssessment
	readingNum int
	unstable   string
	callsMade  int
	haveVitals bool

	status      string
	statusColor string
	statusSet   time.Time
	alertHeld   bool
}

// NewModel creates the UI model for a running monitor.
func NewModel(m *engine.Monitor) Model {
	return Model{
		monitor: m,
		status:  statusIdle,
	}
}

// Init starts event consumption and the 1s UI clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.monitor.Events()), tick())
}

func waitForEvent(ch <-chan model.DisplayEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles events, key bindings, and the status revert clock.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.alertHeld && time.Since(m.statusSet) >= statusHold {
			m.status = statusProcessed
			m.statusColor = ""
			m.alertHeld = false
		}
		return m, tick()

	case eventMsg:
		m.apply(model.DisplayEvent(msg))
		return m, waitForEvent(m.monitor.Events())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.monitor.Dispatcher().ResetCounter()
			return m, nil
		default:
			for _, p := range manualPresets {
				if msg.String() == p.key {
					m.monitor.Trigger(p.alert, p.hr, p.spo2, p.temp, p.fall, p.help)
					return m, nil
				}
			}
		}
	}
	return m, nil
}

func (m *Model) apply(ev model.DisplayEvent) {
	switch ev.Kind {
	case model.DisplayVitals:
		m.reading = ev.Reading
		m.assess = ev.Assess
		m.readingNum = ev.ReadingNum
		m.unstable = ev.Unstable
		m.callsMade = ev.CallsMade
		m.haveVitals = true

	case model.DisplayAlert, model.DisplayCallFailed:
		m.callsMade = ev.CallsMade
		m.status = ev.Status
		m.statusColor = ev.StatusColor
		m.statusSet = ev.Timestamp
		m.alertHeld = true

	case model.DisplayCounterReset:
		m.callsMade = 0
		m.status = statusIdle
		m.statusColor = ""
		m.alertHeld = false
	}
}

// View renders the full monitor screen.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("RAFEEQ HEALTH MONITOR"))
	sb.WriteString("\n\n")

	statusStyle := okStyle
	if m.statusColor != "" {
		statusStyle = hexStyle(m.statusColor)
	}
	sb.WriteString(statusStyle.Render(m.status))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Total calls: "))
	sb.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.callsMade)))
	sb.WriteString("\n")

	if m.unstable != "" {
		sb.WriteString(emotionStyle(m.assess.Emotion).Render(m.unstable))
	} else {
		sb.WriteString(okStyle.Render("Patient status: STABLE"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.vitalsPanel(width))
	sb.WriteString("\n")
	sb.WriteString(m.triggersPanel(width))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("q quit · r reset call counter · auto-call on critical readings (30s cooldown)"))
	return sb.String()
}

func (m Model) vitalsPanel(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("LIVE VITALS"))
	sb.WriteString("\n")

	if !m.haveVitals {
		sb.WriteString(dimStyle.Render("waiting for first reading..."))
	} else {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Heart rate:"),
			valueStyle.Render(fmt.Sprintf("%d BPM", m.reading.HeartRate))))
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("SpO2:      "),
			valueStyle.Render(fmt.Sprintf("%d%%", m.reading.SpO2))))
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Temp:      "),
			valueStyle.Render(fmt.Sprintf("%.1f°C", m.reading.Temperature))))
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Emotional: "),
			emotionStyle(m.assess.Emotion).Render(
				fmt.Sprintf("%s (score %d)", m.assess.Emotion, m.assess.Score))))
		sb.WriteString(dimStyle.Render(fmt.Sprintf("Reading #%d", m.readingNum)))
		sb.WriteString("\n")
		sb.WriteString(sparkline(m.monitor.History().HeartRates(), width-8, 50, 170))
	}
	return panelStyle.Width(width - 4).Render(sb.String())
}

func (m Model) triggersPanel(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("MANUAL EMERGENCY SIMULATIONS"))
	sb.WriteString("\n")
	for _, p := range manualPresets {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			keyStyle.Render("["+p.key+"]"),
			valueStyle.Render(p.label)))
	}
	return panelStyle.Width(width - 4).Render(strings.TrimRight(sb.String(), "\n"))
}
