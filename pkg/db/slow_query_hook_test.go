package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		sql, op, table string
	}{
		{"SELECT id FROM clients WHERE id = $1", "select", "clients"},
		{"\n  INSERT INTO payments (id) VALUES ($1)", "insert", "payments"},
		{"UPDATE holds SET is_active = false", "update", "holds"},
		{"DELETE FROM projects WHERE id = $1", "delete", "projects"},
		{"BEGIN", "begin", "unknown"},
		{"", "unknown", "unknown"},
	}
	for _, c := range cases {
		op, table := classify(c.sql)
		assert.Equal(t, c.op, op, c.sql)
		assert.Equal(t, c.table, table, c.sql)
	}
}
