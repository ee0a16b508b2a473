package telemetry

// Severity is the normalized numeric level of a record. The numeric range
// follows the common log data model: four fine-grained steps per named level,
// Trace (1) through Fatal4 (24). Zero means unspecified.
type Severity int

// Severity levels.
const (
	SeverityUndefined Severity = iota
	SeverityTrace
	SeverityTrace2
	SeverityTrace3
	SeverityTrace4
	SeverityDebug
	SeverityDebug2
	SeverityDebug3
	SeverityDebug4
	SeverityInfo
	SeverityInfo2
	SeverityInfo3
	SeverityInfo4
	SeverityWarn
	SeverityWarn2
	SeverityWarn3
	SeverityWarn4
	SeverityError
	SeverityError2
	SeverityError3
	SeverityError4
	SeverityFatal
	SeverityFatal2
	SeverityFatal3
	SeverityFatal4
)

// Text returns the canonical name of the severity group.
func (s Severity) Text() string {
	switch {
	case s >= SeverityTrace && s <= SeverityTrace4:
		return "TRACE"
	case s >= SeverityDebug && s <= SeverityDebug4:
		return "DEBUG"
	case s >= SeverityInfo && s <= SeverityInfo4:
		return "INFO"
	case s >= SeverityWarn && s <= SeverityWarn4:
		return "WARN"
	case s >= SeverityError && s <= SeverityError4:
		return "ERROR"
	case s >= SeverityFatal && s <= SeverityFatal4:
		return "FATAL"
	default:
		return "UNDEFINED"
	}
}
