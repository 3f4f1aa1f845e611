package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetledger/pkg/rbac"
	"budgetledger/pkg/util"
)

func TestIssueToken(t *testing.T) {
	token, err := issueToken("s3cret", "budgetledger", "jane@example.com", rbac.RoleManager, time.Hour)
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, "budgetledger", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Subject)
	assert.Equal(t, rbac.RoleManager, claims.Role)
}

func TestIssueToken_Rejects(t *testing.T) {
	cases := []struct {
		name, secret, subject, role string
		ttl                         time.Duration
	}{
		{"no secret", "", "jane", rbac.RoleUser, time.Hour},
		{"no subject", "s3cret", "", rbac.RoleUser, time.Hour},
		{"unknown role", "s3cret", "jane", "Owner", time.Hour},
		{"expired", "s3cret", "jane", rbac.RoleUser, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := issueToken(c.secret, "", c.subject, c.role, c.ttl)
			assert.Error(t, err)
		})
	}
}
