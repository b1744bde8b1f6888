package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyQuery(t *testing.T) {
	cases := []struct {
		sql       string
		operation string
		table     string
	}{
		{"SELECT id FROM habits ORDER BY created_at", "select", "habits"},
		{"INSERT INTO daily_records (habit_id) VALUES ($1)", "insert", "daily_records"},
		{"UPDATE habits SET title = $2 WHERE id = $1", "update", "habits"},
		{"DELETE FROM habits WHERE id = $1", "delete", "habits"},
		{
			"INSERT INTO reviews (date) VALUES ($1) ON CONFLICT (date) DO UPDATE SET text = $2",
			"insert", "reviews",
		},
		{"", "unknown", "unknown"},
	}

	for _, tc := range cases {
		op, table := classifyQuery(tc.sql)
		assert.Equal(t, tc.operation, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}
