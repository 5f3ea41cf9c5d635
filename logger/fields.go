package logger

import "strings"

// Field keys shared by every package that logs.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldLogin     = "login"
	FieldUserID    = "user_id"
	FieldOperation = "operation"
	FieldReason    = "reason"
	FieldAuthState = "auth_state"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

const redacted = "[REDACTED]"

// Keys whose values never reach the output, matched case-insensitively
// as substrings: "contrasena" also catches "contrasena_hash".
var sensitiveKeys = []string{"password", "contrasena", "secret", "token", "authorization"}

// Fields pairs up alternating keys and values. A trailing key without a
// value and non-string keys are dropped.
//
//	log.Info("issued", logger.Fields(logger.FieldLogin, login, "ttl", ttl))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return Fields(FieldOperation, op, FieldError, err.Error())
}

func redact(key string, v interface{}) interface{} {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return redacted
		}
	}
	return v
}
