// Package prefs is the typed preferences facade. It is configured once and then
// used from anywhere in the process:
//
//	app, _ := host.NewApp(common.HostConfig{PackageName: "com.example.app"})
//	if err := prefs.NewBuilder().SetContext(app).SetUseDefaultSuffix(true).Build(); err != nil {
//		return err
//	}
//	prefs.PutInt("launches", n+1)
//	theme, err := prefs.GetStringOr("theme", "light")
//
// Configuration:
//
//	A Config (or the Builder filling one) names the namespace, the access mode and
//	the host.Context resolving it. An empty namespace selects the host's package
//	name; UseDefaultSuffix appends "_simple_preferences" to the resolved name and
//	the suffixed name is the one that is opened. Invalid modes fail with
//	ErrInvalidArgument, a missing host with ErrMissingContext.
//
// Explicit and process-wide use:
//
//	Open returns a *Prefs that can be passed around explicitly. Init (and
//	Builder.Build) additionally publish it as the process-wide default, stored in an
//	atomic pointer: once Init returned, every goroutine sees the complete handle.
//	The package level functions use the default and fail with ErrNotInitialized
//	before the first successful Init. A later Init replaces the default.
//
// Reads and writes:
//
//	Getters exist in two forms, GetX(key) with the zero value as default and
//	GetXOr(key, def). A key holding another type yields ErrTypeMismatch. Doubles are
//	stored as longs holding the IEEE-754 bits, so GetDouble restores them bit for bit
//	and GetLong on a double key returns those bits. Putters apply asynchronously;
//	Flush waits until the file is written. Clear removes everything and applies;
//	use Edit().Clear() to clear and set values in one commit.
package prefs
