package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Success logs a completed step.
func Success(args ...any) {
	defaultLogger.Info(color.GreenString("✓") + " " + fmt.Sprint(args...))
}

// Successf logs a formatted completed step.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs an in-flight step.
func Progress(args ...any) {
	defaultLogger.Info(color.CyanString("→") + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted in-flight step.
func Progressf(format string, args ...any) {
	Progress(fmt.Sprintf(format, args...))
}

// LogSection prints a titled separator block.
func LogSection(title string) {
	line := strings.Repeat("=", 50)
	c := color.New(color.FgCyan)
	c.Println(line)
	color.New(color.FgCyan, color.Bold).Println(title)
	c.Println(line)
}

// LogKeyValue prints an aligned key/value line.
func LogKeyValue(key string, value any) {
	fmt.Printf("%s %v\n", color.CyanString("%s:", key), value)
}

// LogList prints a titled bulleted list.
func LogList(title string, items []string) {
	Info(title)
	for _, item := range items {
		fmt.Printf("  • %s\n", item)
	}
}
