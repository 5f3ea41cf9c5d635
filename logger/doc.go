// Package logger wraps zerolog for forohub.
//
// Every entry carries the service name; WithComponent and WithContext add
// the component and request id. Values under keys that look like secrets
// (password, contrasena, token, secret, authorization) are replaced with
// [REDACTED] before they are written, whatever the caller passes.
//
//	logging:
//	  level: info      # trace, debug, info, warn, error
//	  format: json     # or console
//	  output: stdout   # stderr or a file path
//
//	log := logger.New(&cfg, "forohub").WithComponent("auth")
//	log.Info("login succeeded", logger.Fields(logger.FieldLogin, email))
package logger
