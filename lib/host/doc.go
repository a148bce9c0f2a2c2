// Package host provides the host handle that resolves named preference
// namespaces for an application.
//
// Context is the capability the prefs package needs: the application's package
// name (the default namespace name) and a way to resolve (name, mode) to a
// store.Namespace. App implements it for ordinary processes. Namespace files are
// stored as <name>.prefs in $XDG_DATA_HOME/<package>/shared_prefs unless a data
// directory is configured. Every namespace is opened once and cached, so all
// callers share one handle and one set of listeners per name.
package host
