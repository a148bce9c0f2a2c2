// Package common holds the pieces shared by the library packages and the CLI:
// the logger factory and the configuration structs.
//
// Logging:
//
//	Library packages obtain named loggers from dragonboats logger registry
//	(logger.GetLogger("store"), "host", "prefs"). InitLoggers installs a factory
//	that writes through zerolog, tagging every line with the logger name as
//	component, and sets the level of all library loggers.
//
// Configuration:
//
//	HostConfig describes the application owning the preference files and is
//	consumed by the host package. CLIConfig adds the namespace selection and
//	logging options of the sprefs command. Both print a readable summary via String.
package common
