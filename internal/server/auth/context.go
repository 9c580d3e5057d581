package auth

import "context"

type ctxKey string

const subjectKey ctxKey = "subject"

// ContextWithSubject returns a copy of ctx carrying the authenticated subject.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the subject stored by ContextWithSubject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok && s != ""
}
