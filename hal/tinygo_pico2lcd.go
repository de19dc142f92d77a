//go:build tinygo && baremetal && pico2lcd

package hal

import (
	"machine"

	"tinygo.org/x/drivers/ili9341"
)

// Pico 2 with an SPI ILI9341 panel (320x240 landscape).
//
// SPI1: SCK GP10, SDO GP11, SDI GP12; CS GP13, DC GP14, RESET GP15.
type pico2LCDHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     Framebuffer
	kbd    Keyboard
	t      *tinyGoTime
	net    Network
}

// New returns the Pico 2 + ILI9341 HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	var fb Framebuffer
	if lcd, err := newILI9341Framebuffer(); err == nil {
		fb = lcd
	} else {
		fb = &stubFramebuffer{w: 320, h: 240, format: PixelFormatRGB565}
	}

	return &pico2LCDHAL{
		logger: &uartLogger{uart: uart},
		led:    &pinLED{pin: ledPin},
		fb:     fb,
		kbd:    &stubKeyboard{},
		t:      newTinyGoTime(),
		net:    nullNetwork{},
	}
}

func (h *pico2LCDHAL) Logger() Logger   { return h.logger }
func (h *pico2LCDHAL) LED() LED         { return h.led }
func (h *pico2LCDHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *pico2LCDHAL) Input() Input     { return tinyGoInput{kbd: h.kbd} }
func (h *pico2LCDHAL) Time() Time       { return h.t }
func (h *pico2LCDHAL) Network() Network { return h.net }

type ili9341Framebuffer struct {
	w      int
	h      int
	stride int
	buf    []byte
	tx     []byte

	lcd *ili9341.Device
}

func newILI9341Framebuffer() (*ili9341Framebuffer, error) {
	err := machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		SDI:       machine.GP12,
		Frequency: 40_000_000,
	})
	if err != nil {
		return nil, err
	}

	lcd := ili9341.NewSPI(machine.SPI1, machine.GP14, machine.GP13, machine.GP15)
	lcd.Configure(ili9341.Config{})
	lcd.SetRotation(ili9341.Rotation270)

	const w = 320
	const h = 240
	return &ili9341Framebuffer{
		w:      w,
		h:      h,
		stride: w * 2,
		buf:    make([]byte, w*h*2),
		tx:     make([]byte, w*h*2),
		lcd:    lcd,
	}, nil
}

func (f *ili9341Framebuffer) Width() int          { return f.w }
func (f *ili9341Framebuffer) Height() int         { return f.h }
func (f *ili9341Framebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *ili9341Framebuffer) StrideBytes() int    { return f.stride }
func (f *ili9341Framebuffer) Buffer() []byte      { return f.buf }

func (f *ili9341Framebuffer) ClearRGB(r, g, b uint8) {
	pixel := RGB565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *ili9341Framebuffer) Present() error {
	if f.lcd == nil {
		return ErrNotImplemented
	}
	// Pixels are stored little-endian; the panel wants big-endian.
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.tx[i] = f.buf[i+1]
		f.tx[i+1] = f.buf[i]
	}
	return f.lcd.DrawRGBBitmap8(0, 0, f.tx, int16(f.w), int16(f.h))
}
