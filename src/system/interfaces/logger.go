package interfaces

// LoggerInterface is the sink archivist writes formatted lines to.
// *log.Logger satisfies it.
type LoggerInterface interface {
	Println(v ...interface{})
}
