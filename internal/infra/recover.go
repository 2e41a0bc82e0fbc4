package infra

import (
	"fmt"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
)

// GoRecoverable runs f and restarts it in a fresh goroutine whenever it
// panics. maxPanics is the number of restarts left; negative means restart
// forever, zero left is fatal.
func GoRecoverable(maxPanics int, id string, f func()) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("job %q panicked at %s: %v", id, panicOrigin(), err)
			if maxPanics == 0 {
				log.Fatalf("panic limit exceeded for job %q, exiting", id)
			}
			if maxPanics > 0 {
				maxPanics--
			}
			log.Debugf("restarting job %q", id)
			go GoRecoverable(maxPanics, id, f)
		}
	}()
	f()
}

// panicOrigin reports the first non-runtime frame below the recovery
// handler, which is where the panic was raised.
func panicOrigin() string {
	var pc [16]uintptr
	n := runtime.Callers(3, pc[:])
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", frame.Function, frame.Line)
		}
		if !more {
			return "unknown"
		}
	}
}
