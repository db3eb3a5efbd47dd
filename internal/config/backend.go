package config

import "strings"

const sqlitePrefix = "sqlite:"

// OpenBackend picks a backend from a -store flag value: "sqlite:<path>"
// selects SQLite, anything else is a JSON file path.
func OpenBackend(location string) (Backend, error) {
	if path, ok := strings.CutPrefix(location, sqlitePrefix); ok {
		return OpenSQLite(path)
	}
	return NewFileBackend(location), nil
}
