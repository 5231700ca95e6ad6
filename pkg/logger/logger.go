package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Minimal leveled logger for the vertraege service. Init(level) picks the
// threshold; everything below it is dropped.

type level int

const (
	levelInfo level = iota
	levelWarn
	levelError
	levelFatal
)

var (
	mu  sync.RWMutex
	out *log.Logger = log.New(os.Stdout, "", 0)
	min level       = levelInfo
)

// Init sets the global log level (case-insensitive: info, warn, error,
// fatal). Call early during startup. Default and fallback is info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "warn", "warning":
		min = levelWarn
	case "error":
		min = levelError
	case "fatal":
		min = levelFatal
	default:
		min = levelInfo
	}
}

func header(lvl string) string {
	return fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(lvl))
}

func enabled(l level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= min
}

func Infof(format string, v ...interface{}) {
	if !enabled(levelInfo) {
		return
	}
	out.Printf(header("info")+format, v...)
}

func Warnf(format string, v ...interface{}) {
	if !enabled(levelWarn) {
		return
	}
	out.Printf(header("warn")+format, v...)
}

func Errorf(format string, v ...interface{}) {
	if !enabled(levelError) {
		return
	}
	out.Printf(header("error")+format, v...)
}

func Fatalf(format string, v ...interface{}) {
	out.Printf(header("fatal")+format, v...)
	os.Exit(1)
}
