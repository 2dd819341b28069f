package control

import "errors"

// Channel identifies one analog input of the ADC.
type Channel uint8

// adcFullScale is the largest value the ADC reports (16-bit, left aligned).
const adcFullScale = 65535.0

// ErrConversion is returned by an ADC when a conversion did not complete.
var ErrConversion = errors.New("adc conversion failed")

// ADC is the analog-to-digital converter shared by all pots.
type ADC interface {
	// Read starts a conversion on ch and waits for the result.
	Read(ch Channel) (uint16, error)
}

// Timer is the control-rate timer that raises the poll interrupt.
type Timer interface {
	// ClearIRQ acknowledges the pending update interrupt.
	ClearIRQ()
}

// Pin is a digital input.
type Pin interface {
	IsHigh() bool
}

// Output is a digital output.
type Output interface {
	Set(high bool)
}

// Pot is a potentiometer read through the ADC.
type Pot struct {
	channel  Channel
	raw      uint16
	value    float32
	failures uint32
}

func NewPot(ch Channel) *Pot {
	return &Pot{channel: ch}
}

// Channel returns the ADC channel the pot is wired to.
func (p *Pot) Channel() Channel {
	return p.channel
}

// Update stores a fresh conversion result.
func (p *Pot) Update(raw uint16) {
	p.raw = raw
	p.value = float32(raw) / adcFullScale
}

// Value is the last good reading normalized to [0, 1].
func (p *Pot) Value() float32 {
	return p.value
}

func (p *Pot) Raw() uint16 {
	return p.raw
}

// Failures counts conversions that were skipped because the ADC failed.
func (p *Pot) Failures() uint32 {
	return p.failures
}

// Switch is a debounced push button or toggle.
//
// Each Update shifts the current pin level into an 8-sample history; the
// switch counts as pressed once eight consecutive samples agree.
type Switch struct {
	pin       Pin
	activeLow bool
	history   uint8
}

// NewSwitch returns a switch on pin. Most panel switches pull the line low
// when pressed, so set activeLow for those.
func NewSwitch(pin Pin, activeLow bool) *Switch {
	return &Switch{pin: pin, activeLow: activeLow}
}

// Update samples the pin once.
func (s *Switch) Update() {
	level := s.pin.IsHigh()
	if s.activeLow {
		level = !level
	}
	s.history <<= 1
	if level {
		s.history |= 1
	}
}

// Pressed reports a stable pressed state.
func (s *Switch) Pressed() bool {
	return s.history == 0xFF
}

// RisingEdge reports the first stable pressed sample.
func (s *Switch) RisingEdge() bool {
	return s.history == 0x7F
}

// FallingEdge reports the first released sample after a stable press.
func (s *Switch) FallingEdge() bool {
	return s.history == 0x80
}

// Color is an RGB LED command; each bit lights one die.
type Color uint8

const (
	Off   Color = 0
	Red   Color = 1 << 0
	Green Color = 1 << 1
	Blue  Color = 1 << 2

	Yellow  = Red | Green
	Cyan    = Green | Blue
	Magenta = Red | Blue
	White   = Red | Green | Blue
)

func (c Color) String() string {
	switch c {
	case Off:
		return "off"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Cyan:
		return "cyan"
	case Magenta:
		return "magenta"
	case White:
		return "white"
	default:
		return "invalid"
	}
}

// LED is an RGB LED. SetColor only records the command; the outputs are
// driven on the next Update.
type LED struct {
	r, g, b Output
	color   Color
	shown   Color
}

func NewLED(r, g, b Output) *LED {
	return &LED{r: r, g: g, b: b}
}

// SetColor queues a color for the next Update.
func (l *LED) SetColor(c Color) {
	l.color = c & White
}

// Color returns the most recently queued color.
func (l *LED) Color() Color {
	return l.color
}

// Shown returns the color currently driven on the outputs.
func (l *LED) Shown() Color {
	return l.shown
}

// Update drives the outputs with the queued color.
func (l *LED) Update() {
	l.r.Set(l.color&Red != 0)
	l.g.Set(l.color&Green != 0)
	l.b.Set(l.color&Blue != 0)
	l.shown = l.color
}

// Encoder is a quadrature rotary encoder with a push switch.
type Encoder struct {
	a, b  Pin
	aHist uint8
	bHist uint8
	delta int
	Click *Switch
}

func NewEncoder(a, b Pin, click *Switch) *Encoder {
	return &Encoder{a: a, b: b, Click: click}
}

// Update samples both phases and the push switch. A falling edge on one
// phase while the other is low is one detent in that direction.
func (e *Encoder) Update() {
	e.aHist = e.aHist<<1 | bitOf(e.a.IsHigh())
	e.bHist = e.bHist<<1 | bitOf(e.b.IsHigh())

	e.delta = 0
	switch {
	case e.aHist&0x03 == 0x02 && e.bHist&0x03 == 0x00:
		e.delta = 1
	case e.bHist&0x03 == 0x02 && e.aHist&0x03 == 0x00:
		e.delta = -1
	}

	if e.Click != nil {
		e.Click.Update()
	}
}

// Delta is the signed number of detents since the previous Update.
func (e *Encoder) Delta() int {
	return e.delta
}

func bitOf(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
