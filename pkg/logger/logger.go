package logger

import (
	"log"
	"os"
)

// Initialize logging flags (called once from main)
func Init() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if os.Getenv("LOG_DEBUG") == "" {
		debugEnabled = false
	}
}

var debugEnabled = true

func Infof(format string, v ...any) {
	log.Printf("[INFO] "+format, v...)
}

func Warnf(format string, v ...any) {
	log.Printf("[WARN] "+format, v...)
}

func Errorf(format string, v ...any) {
	log.Printf("[ERROR] "+format, v...)
}

func Debugf(format string, v ...any) {
	if !debugEnabled {
		return
	}
	log.Printf("[DEBUG] "+format, v...)
}

func Fatalf(format string, v ...any) {
	log.Fatalf("[FATAL] "+format, v...)
}
