// Package logging provides a process-wide registry of named loggers built on
// rs/zerolog. Each handle writes the same text line to a console sink and to
// a size-rotated file sink.
//
// Key features
//   - Setup is idempotent per name: sinks are attached once, repeated calls
//     return the configured handle unchanged
//   - Global is a lazily created shared handle guarded by double-checked
//     locking over an atomic pointer
//   - Level precedence: explicit option, then LOG_LEVEL, then INFO
//   - Lines follow a text/template; the default renders
//     "<timestamp> - <name> - <level> - [<file>:<line>] - <message>"
//   - Numbered rotation (<file>.1 ... <file>.N) or lumberjack's timestamped
//     rotation with age limits and compression
//   - Config files (YAML/JSON via koanf) and live level reload via fsnotify
//   - Error history enrichment on Err/AnErr for Station-Manager DetailedError chains
//
// Typical usage
//
//	reg := logging.NewRegistry(logging.WithDefaults(logging.WithName("worker")))
//	log, err := reg.Global()
//	if err != nil { panic(err) }
//	defer reg.Close()
//
//	log.InfoWith().Str("job", id).Msg("started")
//	req := log.With().Str("request_id", rid).Logger()
//	req.ErrorWith().Err(err).Msg("failed")
package logging
