package telemetry

import (
	"fmt"
)

// API is where components report what happens to them. Components never log
// directly, so tests can swap in a Recorder and assert on what was reported.
type API interface {
	// ReportBroken reports a component failing in a way that needs attention.
	//
	// `id` names the component and method that broke, `<component>.<method>` in
	// lowercase (ex. `capturer.capture`). Details belong in params or a wrapped
	// error, not in the id.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something unexpected that the component recovered from.
	ReportWarning(id string, params ...any)
	// ReportDebug reports progress that is only interesting when debugging.
	ReportDebug(msg string, params ...any)
	// ReportCount reports the size of something at this point in time, counts are
	// samples and are not meant to be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id it reports with a namespace, usually the package name.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scoped(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scoped(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scoped(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scoped(id), count)
}
