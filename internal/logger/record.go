// internal/logger/record.go

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Record is a single log event as handed to every sink.
type Record struct {
	Time        time.Time
	Level       Level
	LoggerName  string
	ProcessName string
	PID         int
	ThreadName  string
	ThreadID    uint64
	Function    string
	File        string
	Line        int
	Message     string
}

var processName = filepath.Base(os.Args[0])

// newRecord fills the process, goroutine and call-site fields. skip is the
// number of frames between the caller of interest and newRecord.
func newRecord(name string, level Level, msg string, skip int) *Record {
	rec := &Record{
		Time:        time.Now(),
		Level:       level,
		LoggerName:  name,
		ProcessName: processName,
		PID:         os.Getpid(),
		ThreadName:  "goroutine",
		ThreadID:    goroutineID(),
		Function:    "?",
		File:        "?",
		Message:     msg,
	}
	if pc, file, line, ok := runtime.Caller(skip + 1); ok {
		rec.File = file
		rec.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			rec.Function = shortFuncName(fn.Name())
		}
	}
	return rec
}

// shortFuncName strips the package path: "a/b/pkg.(*T).M" -> "(*T).M".
func shortFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	if i := strings.Index(full, "."); i >= 0 {
		return full[i+1:]
	}
	return full
}

// goroutineID parses the id out of the "goroutine N [running]:" stack header.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
