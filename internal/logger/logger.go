package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger writes tagged, colored log lines to stdout. One instance is created
// in main and handed to every component.
type Logger struct {
	mu    sync.Mutex
	debug bool
}

var (
	infoColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgCyan)
	fatalColor   = color.New(color.FgRed, color.Bold)
	processColor = color.New(color.FgMagenta)
)

func NewLogger() *Logger {
	return &Logger{
		debug: strings.EqualFold(os.Getenv("LOG_DEBUG"), "true"),
	}
}

func (l *Logger) write(c *color.Color, level, tag, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	c.Printf("[%s] %-5s [%s] %s\n", timestamp, level, tag, msg)
}

func (l *Logger) Info(tag, msg string) {
	l.write(infoColor, "INFO", tag, msg)
}

func (l *Logger) Warn(tag, msg string) {
	l.write(warnColor, "WARN", tag, msg)
}

func (l *Logger) Error(tag, msg string) {
	l.write(errorColor, "ERROR", tag, msg)
}

func (l *Logger) Debug(tag, msg string) {
	if !l.debug {
		return
	}
	l.write(debugColor, "DEBUG", tag, msg)
}

func (l *Logger) Fatal(tag, msg string) {
	l.write(fatalColor, "FATAL", tag, msg)
	os.Exit(1)
}

// LogProcess marks a lifecycle step (startup, shutdown, component init).
func (l *Logger) LogProcess(stage, msg string) {
	l.write(processColor, "PROC", stage, msg)
}

func (l *Logger) LogDatabase(action, backend, msg string) {
	l.write(infoColor, "DB", action+":"+backend, msg)
}

func (l *Logger) LogKafka(action, topic, msg string) {
	l.write(infoColor, "KAFKA", action+":"+topic, msg)
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.write(infoColor, "API", method, fmt.Sprintf("%s - %s (%s)", path, status, duration))
}

func (l *Logger) LogPayment(action, id, msg string) {
	l.write(infoColor, "PAY", action+":"+id, msg)
}

func (l *Logger) LogCart(action, sessionID, msg string) {
	l.write(infoColor, "CART", action+":"+sessionID, msg)
}

func (l *Logger) LogEmail(action, recipient, msg string) {
	l.write(infoColor, "MAIL", action+":"+recipient, msg)
}

func (l *Logger) LogSecurity(action, msg string) {
	l.write(warnColor, "SEC", action, msg)
}

// Close exists for symmetry with components that hold resources; the logger
// only writes to stdout.
func (l *Logger) Close() {}
