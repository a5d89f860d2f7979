package archivist

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/voodooEntity/neurosplit/src/system/interfaces"
)

const (
	LEVEL_DEBUG   = 1
	LEVEL_INFO    = 2
	LEVEL_WARNING = 3
	LEVEL_ERROR   = 4
	LEVEL_FATAL   = 5
)

// Constants for granular debug levels
const (
	DEBUG_LEVEL_TRACE  = iota + 1 // compile phase flow
	DEBUG_LEVEL_INFO              // per slice / per edge decisions
	DEBUG_LEVEL_DETAIL            // estimates and bounds
	DEBUG_LEVEL_DUMP              // whole records and tables
	DEBUG_LEVEL_MAX
)

var levelNames = [5]string{"debug", "info", "warning", "error", "fatal"}

// Archivist is the levelled logger shared by every compile phase.
type Archivist struct {
	logFlags   [5]bool
	logger     interfaces.LoggerInterface
	debugLevel int
	scope      string
}

type Config struct {
	Logger     interfaces.LoggerInterface
	LogLevel   int
	DebugLevel int
}

func New(conf *Config) *Archivist {
	archivist := &Archivist{
		logFlags: [5]bool{false, true, true, true, true},
	}
	if nil == conf {
		conf = &Config{}
	}

	// no logger given means we write to stdout
	archivist.SetLogger(conf.Logger)
	archivist.SetLogLevel(conf.LogLevel)

	// debug verbosity only matters if the log level is debug
	if conf.LogLevel == LEVEL_DEBUG {
		archivist.SetDebugLevel(conf.DebugLevel)
	}

	return archivist
}

// Discard returns an archivist that drops everything, handy in tests.
func Discard() *Archivist {
	return New(&Config{Logger: log.New(io.Discard, "", 0), LogLevel: LEVEL_FATAL})
}

// Scoped returns a copy of the archivist that prefixes every line with the
// given scope, e.g. the compile phase or the population label.
func (a *Archivist) Scoped(scope string) *Archivist {
	child := *a
	if "" != a.scope {
		child.scope = a.scope + "/" + scope
	} else {
		child.scope = scope
	}
	return &child
}

func (a *Archivist) enabled(level int) bool {
	return a.logFlags[level-1]
}

func (a *Archivist) emit(level int, message string, formatted bool, params []interface{}) {
	// caller is two frames up: emit <- Info/Debug/... <- caller
	_, file, line, _ := runtime.Caller(2)
	arrPackagePath := strings.Split(file, "/")
	packageFile := arrPackagePath[len(arrPackagePath)-1]

	logLine := time.Now().Format("2006-01-02 15:04:05") + "|" + levelNames[level-1] + "|" + packageFile + "#" + strconv.Itoa(line) + "|"
	if "" != a.scope {
		logLine = logLine + a.scope + "|"
	}
	switch {
	case formatted:
		logLine = logLine + fmt.Sprintf(message, params...)
	case 0 < len(params):
		logLine = logLine + message + "|" + fmt.Sprintf("%+v", params)
	default:
		logLine = logLine + message
	}

	a.logger.Println(logLine)
}

func (a *Archivist) Error(message string, params ...interface{}) {
	if a.enabled(LEVEL_ERROR) {
		a.emit(LEVEL_ERROR, message, false, params)
	}
}

func (a *Archivist) ErrorF(message string, params ...interface{}) {
	if a.enabled(LEVEL_ERROR) {
		a.emit(LEVEL_ERROR, message, true, params)
	}
}

func (a *Archivist) Fatal(message string, params ...interface{}) {
	if a.enabled(LEVEL_FATAL) {
		a.emit(LEVEL_FATAL, message, false, params)
	}
}

func (a *Archivist) FatalF(message string, params ...interface{}) {
	if a.enabled(LEVEL_FATAL) {
		a.emit(LEVEL_FATAL, message, true, params)
	}
}

func (a *Archivist) Info(message string, params ...interface{}) {
	if a.enabled(LEVEL_INFO) {
		a.emit(LEVEL_INFO, message, false, params)
	}
}

func (a *Archivist) InfoF(message string, params ...interface{}) {
	if a.enabled(LEVEL_INFO) {
		a.emit(LEVEL_INFO, message, true, params)
	}
}

func (a *Archivist) Warning(message string, params ...interface{}) {
	if a.enabled(LEVEL_WARNING) {
		a.emit(LEVEL_WARNING, message, false, params)
	}
}

func (a *Archivist) WarningF(message string, params ...interface{}) {
	if a.enabled(LEVEL_WARNING) {
		a.emit(LEVEL_WARNING, message, true, params)
	}
}

func (a *Archivist) Debug(level int, message string, params ...interface{}) {
	if a.enabled(LEVEL_DEBUG) && level <= a.debugLevel {
		a.emit(LEVEL_DEBUG, message, false, params)
	}
}

func (a *Archivist) DebugF(level int, message string, params ...interface{}) {
	if a.enabled(LEVEL_DEBUG) && level <= a.debugLevel {
		a.emit(LEVEL_DEBUG, message, true, params)
	}
}

func (a *Archivist) SetLogLevel(logLevel int) {
	// non initialized log level
	if 0 == logLevel {
		logLevel = LEVEL_WARNING
	}

	if logLevel < LEVEL_DEBUG || logLevel > LEVEL_FATAL {
		a.Error("Given LOG_LEVEL is unknown, defaulting to LEVEL_WARNING provided was: ", logLevel)
		logLevel = LEVEL_WARNING
	}
	for index := range a.logFlags {
		a.logFlags[index] = logLevel-1 <= index
	}
}

func (a *Archivist) SetDebugLevel(level int) {
	if level < 0 {
		level = 0
	}
	a.debugLevel = level
}

func (a *Archivist) SetLogger(logger interfaces.LoggerInterface) {
	if nil == logger {
		logger = log.New(os.Stdout, "", 0)
	}
	a.logger = logger
}
