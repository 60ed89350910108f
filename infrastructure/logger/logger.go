// Package logger wires infrastructure/logs into one backend per
// process, tagged the way the teacher's logger/logger.go tags btcd's
// subsystems. Loggers are usable immediately (writing only to stdout)
// and gain file output once InitLogRotators is called, exactly as the
// teacher's package does.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghostdag-network/consensus/infrastructure/logs"
	"github.com/jrick/logrotate/rotator"
)

// logWriter fans a line out to stdout and, once initiated, the
// rotating combined log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if initiated {
		LogRotator.Write(p)
	}
	return len(p), nil
}

// errLogWriter fans a line out to stdout and, once initiated, the
// rotating error-only log file.
type errLogWriter struct{}

func (errLogWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if initiated {
		ErrLogRotator.Write(p)
	}
	return len(p), nil
}

// backendLog is the single backend every subsystem logger is minted
// from. It is safe to log through before InitLogRotators runs; lines
// simply only reach stdout until then.
var backendLog = logs.NewBackend(
	logs.NewAllLevelsBackendWriter(logWriter{}),
	logs.NewErrorBackendWriter(errLogWriter{}),
)

var (
	// LogRotator and ErrLogRotator are the rotating file writers,
	// created by InitLogRotators and closed on shutdown.
	LogRotator    *rotator.Rotator
	ErrLogRotator *rotator.Rotator

	initiated = false
)

// SubsystemTags names every subsystem logger this repo mints, one per
// consensus process (C2-C10) plus the config/CLI layer.
var SubsystemTags = struct {
	GHST, // ghostdagmanager, C3
	RCHB, // reachabilitymanager, C2
	DIFF, // difficultymanager, C4
	BLPR, // blockprocessor, C10
	FRKC, // forkchoice, C8
	PRUN, // pruningmanager, C9's pruning point
	BVAL, // blockvalidator, C6
	SYNC, // syncvalidator, C7
	BBLD, // blockbuilder, C9
	CNFG, // config/CLI parsing, cmd/consensusd
	CNSD string // cmd/consensusd's own top-level logging
}{
	GHST: "GHST",
	RCHB: "RCHB",
	DIFF: "DIFF",
	BLPR: "BLPR",
	FRKC: "FRKC",
	PRUN: "PRUN",
	BVAL: "BVAL",
	SYNC: "SYNC",
	BBLD: "BBLD",
	CNFG: "CNFG",
	CNSD: "CNSD",
}

var subsystemLoggers = map[string]logs.Logger{
	SubsystemTags.GHST: backendLog.Logger(SubsystemTags.GHST),
	SubsystemTags.RCHB: backendLog.Logger(SubsystemTags.RCHB),
	SubsystemTags.DIFF: backendLog.Logger(SubsystemTags.DIFF),
	SubsystemTags.BLPR: backendLog.Logger(SubsystemTags.BLPR),
	SubsystemTags.FRKC: backendLog.Logger(SubsystemTags.FRKC),
	SubsystemTags.PRUN: backendLog.Logger(SubsystemTags.PRUN),
	SubsystemTags.BVAL: backendLog.Logger(SubsystemTags.BVAL),
	SubsystemTags.SYNC: backendLog.Logger(SubsystemTags.SYNC),
	SubsystemTags.BBLD: backendLog.Logger(SubsystemTags.BBLD),
	SubsystemTags.CNFG: backendLog.Logger(SubsystemTags.CNFG),
	SubsystemTags.CNSD: backendLog.Logger(SubsystemTags.CNSD),
}

// InitLogRotators must be called once, early in cmd/consensusd's
// startup, before any subsystem logger's output is expected to reach
// disk.
func InitLogRotators(logFile, errLogFile string) {
	LogRotator = initLogRotator(logFile)
	ErrLogRotator = initLogRotator(errLogFile)
	initiated = true
}

func initLogRotator(logFile string) *rotator.Rotator {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %s\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %s\n", err)
		os.Exit(1)
	}
	return r
}

// Get returns the logger registered for tag, if any.
func Get(tag string) (logs.Logger, bool) {
	logger, ok := subsystemLoggers[tag]
	return logger, ok
}

// SetLogLevel sets a single subsystem's level. Unknown subsystems are
// ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := logs.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets every subsystem to logLevel.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns every registered subsystem tag, sorted.
func SupportedSubsystems() []string {
	tags := make([]string, 0, len(subsystemLoggers))
	for tag := range subsystemLoggers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ParseAndSetDebugLevels parses either a bare level ("debug") applied
// to every subsystem, or a comma-separated list of subsystem=level
// pairs ("BVAL=debug,SYNC=trace"), matching the teacher's --debuglevel
// flag grammar.
func ParseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			return fmt.Errorf("the specified debug level [%s] is invalid", debugLevel)
		}
		SetLogLevels(debugLevel)
		return nil
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%s]", pair)
		}
		subsystemID, level := fields[0], fields[1]
		if _, ok := Get(subsystemID); !ok {
			return fmt.Errorf("the specified subsystem [%s] is invalid -- supported subsystems %s",
				subsystemID, strings.Join(SupportedSubsystems(), ", "))
		}
		if !validLogLevel(level) {
			return fmt.Errorf("the specified debug level [%s] is invalid", level)
		}
		SetLogLevel(subsystemID, level)
	}
	return nil
}

func validLogLevel(level string) bool {
	_, ok := logs.LevelFromString(level)
	return ok
}
