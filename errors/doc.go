// Package errors provides the error envelope shared by every forohub handler.
//
// AppError carries a machine-readable code, a client-safe message and the
// HTTP status it maps to. Handlers return plain errors; the server package
// turns them into the JSON body with server.RespondWithError.
package errors
