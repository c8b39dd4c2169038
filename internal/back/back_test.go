package back // nolint:testpackage

import "testing"

func TestSQLiteWriteDSN(t *testing.T) {
	cases := []struct {
		dsn      string
		expected string
	}{
		{"./arena.db", "./arena.db?_txlock=immediate&_busy_timeout=5000"},
		{"./arena.db?cache=shared", "./arena.db?cache=shared&_txlock=immediate&_busy_timeout=5000"},
		{"./arena.db?_txlock=deferred", "./arena.db?_txlock=deferred"},
	}

	for k, v := range cases {
		if actual := sqliteWriteDSN(v.dsn); actual != v.expected {
			t.Errorf("case #%d: expected %q, got %q", k, v.expected, actual)
		}
	}
}
