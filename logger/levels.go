package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// ANSI color codes for the console encoder.
type color uint8

const (
	colorRed     color = 31
	colorGreen   color = 32
	colorYellow  color = 33
	colorBlue    color = 34
	colorMagenta color = 35
	colorCyan    color = 36
	colorWhite   color = 37
)

func (c color) Wrap(s string) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", uint8(c), s)
}

var (
	unknownLevelColor = colorRed

	levelToCapitalColorString = map[zapcore.Level]string{
		zapcore.DebugLevel:  colorMagenta.Wrap(zapcore.DebugLevel.CapitalString()),
		zapcore.InfoLevel:   colorBlue.Wrap(zapcore.InfoLevel.CapitalString()),
		zapcore.WarnLevel:   colorYellow.Wrap(zapcore.WarnLevel.CapitalString()),
		zapcore.ErrorLevel:  colorRed.Wrap(zapcore.ErrorLevel.CapitalString()),
		zapcore.DPanicLevel: colorRed.Wrap(zapcore.DPanicLevel.CapitalString()),
		zapcore.PanicLevel:  colorRed.Wrap(zapcore.PanicLevel.CapitalString()),
		zapcore.FatalLevel:  colorRed.Wrap(zapcore.FatalLevel.CapitalString()),
	}
)
