// Package panel is a terminal front panel for the simulated Pod: the pots,
// switches and encoder are driven from the keyboard and the LEDs, meters
// and logs are drawn with tcell.
package panel

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-pod/pod/backend"
	"github.com/valerio/go-pod/pod/control"
	"github.com/valerio/go-pod/pod/sim"
)

const (
	// potStep is how far one key press moves a pot, in raw ADC counts.
	potStep = 0x1000

	meterWidth    = 20
	minTermWidth  = 60
	minTermHeight = 16
	logsY         = 10
)

var ErrNoBoard = errors.New("panel requires a simulated board")

// Backend implements backend.Backend on a terminal.
type Backend struct {
	screen tcell.Screen
	board  *sim.Board
	config backend.Config

	logs     *LogBuffer
	logLevel *slog.LevelVar
	prevLog  *slog.Logger

	quit   atomic.Bool
	events []backend.Event
}

// New returns a panel drawing on screen. A nil screen opens the terminal.
func New(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

func (p *Backend) Init(config backend.Config) error {
	if config.Board == nil {
		return ErrNoBoard
	}
	p.config = config
	p.board = config.Board

	if p.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		p.screen = screen
	}
	if err := p.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	p.logs = NewLogBuffer(100)
	p.logLevel = &slog.LevelVar{}
	p.logLevel.Set(slog.LevelInfo)
	p.prevLog = slog.Default()
	slog.SetDefault(slog.New(NewLogHandler(p.logs, p.logLevel)))

	p.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	p.screen.Clear()

	go p.handleSignals()

	slog.Info("Panel initialized")
	return nil
}

// Update applies pending key presses to the board and redraws.
func (p *Backend) Update(view backend.View) ([]backend.Event, error) {
	for p.screen.HasPendingEvent() {
		switch ev := p.screen.PollEvent().(type) {
		case *tcell.EventKey:
			p.processKey(ev)
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}

	events := p.events
	p.events = nil
	if p.quit.Load() {
		return append(events, backend.Quit), nil
	}

	p.render(view)
	p.screen.Show()
	return events, nil
}

func (p *Backend) Cleanup() error {
	if p.prevLog != nil {
		slog.SetDefault(p.prevLog)
	}
	if p.screen != nil {
		p.screen.Fini()
	}
	return nil
}

func (p *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-signals
	p.quit.Store(true)
}

func (p *Backend) processKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		p.quit.Store(true)
		return
	case tcell.KeyLeft:
		p.board.Knob.Turn(-1)
		return
	case tcell.KeyRight:
		p.board.Knob.Turn(1)
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q':
		p.board.ADC.Nudge(sim.Pot1, potStep)
	case 'a':
		p.board.ADC.Nudge(sim.Pot1, -potStep)
	case 'w':
		p.board.ADC.Nudge(sim.Pot2, potStep)
	case 's':
		p.board.ADC.Nudge(sim.Pot2, -potStep)
	case '1':
		p.board.Press(sim.Switch1, !p.board.Pressed(sim.Switch1))
	case '2':
		p.board.Press(sim.Switch2, !p.board.Pressed(sim.Switch2))
	case ' ':
		p.board.Click.Toggle()
	case 'x':
		stalled := p.board.Codec.Stalled()
		p.board.Codec.Stall(!stalled)
		slog.Warn("Codec stall toggled", "stalled", !stalled)
	case 'r':
		p.events = append(p.events, backend.Reset)
	case '+':
		p.changeLogLevel(-4)
	case '-':
		p.changeLogLevel(4)
	}
}

func (p *Backend) changeLogLevel(delta slog.Level) {
	old := p.logLevel.Level()
	next := max(slog.LevelDebug, min(old+delta, slog.LevelError))
	if next != old {
		p.logLevel.Set(next)
		slog.Info("Log filter changed", "from", old, "to", next)
	}
}

func (p *Backend) render(view backend.View) {
	w, h := p.screen.Size()
	p.screen.Clear()
	if w < minTermWidth || h < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		p.drawText(0, h/2, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	text := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	p.drawText(1, 0, " Daisy Pod ", title)

	status := fmt.Sprintf("Mode: %-11s Pitch: %8.1f Hz   Elapsed: %v", view.Mode, view.Pitch, view.Elapsed.Truncate(time.Millisecond))
	p.drawText(1, 1, status, text)

	audioLine := fmt.Sprintf("Blocks: %d  Overruns: %d  Loaded: %d samples", view.Audio.Blocks, view.Audio.Overruns, view.Loaded)
	p.drawText(1, 2, audioLine, text)
	if view.Muted {
		p.drawText(1, 3, fmt.Sprintf("MUTED: %v", view.Fault), tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}

	c := view.Controls
	p.drawText(1, 4, "Pot1 "+meter(c.Pots[0])+fmt.Sprintf(" %.2f", c.Pots[0]), text)
	p.drawText(1, 5, "Pot2 "+meter(c.Pots[1])+fmt.Sprintf(" %.2f", c.Pots[1]), text)
	p.drawText(1, 6, fmt.Sprintf("SW1 %s  SW2 %s  Encoder %+d  Click %s  Poll #%d",
		lamp(c.Pressed[0]), lamp(c.Pressed[1]), c.Delta, lamp(c.Click), c.Cycle), text)

	p.drawText(1, 7, "LED1", text)
	p.drawText(6, 7, "■", tcell.StyleDefault.Foreground(ledColor(view.LEDs[0])))
	p.drawText(9, 7, "LED2", text)
	p.drawText(14, 7, "■", tcell.StyleDefault.Foreground(ledColor(view.LEDs[1])))

	p.drawLogs(logsY, w, h-1)

	help := " q/a pot1  w/s pot2  1/2 switches  ←/→ encoder  space click  x stall  +/- logs  ESC quit "
	p.drawText(0, h-1, help, text)
}

func (p *Backend) drawLogs(top, width, bottom int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, entry := range p.logs.Recent(bottom - top) {
		line := FormatLogEntry(entry)
		if len(line) > width-2 {
			line = line[:width-2]
		}
		p.drawText(1, top+i, line, style)
	}
}

func (p *Backend) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func meter(v float32) string {
	n := int(v*meterWidth + 0.5)
	n = max(0, min(n, meterWidth))
	return "[" + strings.Repeat("#", n) + strings.Repeat("-", meterWidth-n) + "]"
}

func lamp(on bool) string {
	if on {
		return "●"
	}
	return "○"
}

func ledColor(c control.Color) tcell.Color {
	switch c {
	case control.Red:
		return tcell.ColorRed
	case control.Green:
		return tcell.ColorGreen
	case control.Blue:
		return tcell.ColorBlue
	case control.Yellow:
		return tcell.ColorYellow
	case control.Cyan:
		return tcell.ColorAqua
	case control.Magenta:
		return tcell.ColorFuchsia
	case control.White:
		return tcell.ColorWhite
	default:
		return tcell.ColorDarkGray
	}
}
