// Package logger wires the standard logger to stdout plus a
// size-rotated file.
package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger at stdout and a rotating log file.
// Rotation is size-based with a bounded number of backups, so a
// long-running bot cannot fill the disk.
func Setup(filename string, maxSizeMB, maxBackups int) {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
