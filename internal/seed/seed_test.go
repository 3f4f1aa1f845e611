package seed

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"budgetledger/internal/model"
	"budgetledger/internal/repository/memory"
	"budgetledger/internal/service/ledger"
)

func TestLoadDemo(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(memory.New(), zap.NewNop())

	f, err := os.Open("testdata/demo.yaml")
	require.NoError(t, err)
	defer f.Close()

	res, err := Load(ctx, l, f, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Clients: 1, POCs: 1, Projects: 1, Estimations: 1, Payments: 1, Milestones: 1, Requests: 2, Holds: 1}, *res)

	projects, err := l.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Acme Corp", projects[0].ClientName)
	assert.Equal(t, "Raj Patel", projects[0].POCName)
	assert.Equal(t, model.PriorityHigh, projects[0].Priority)

	detail, err := l.GetProjectDetail(ctx, projects[0].ID)
	require.NoError(t, err)
	assert.True(t, detail.Summary.EstimatedTotal.Equal(model.Amt(105000)))
	assert.Equal(t, 1, detail.Summary.ExceededPayments)
	assert.True(t, detail.Summary.ApprovedRequestsTotal.Equal(model.Amt(5000)))
	assert.Equal(t, 1, detail.Summary.PendingRequests)
	assert.True(t, detail.Summary.ActiveHoldsTotal.Equal(model.Amt(3000)))
	assert.Equal(t, "EUR", detail.Payments[0].Currency)
}

func TestLoadReportsFailingRecord(t *testing.T) {
	l := ledger.New(memory.New(), zap.NewNop())
	doc := `
clients:
  - company: Acme
    client_name: Jane
  - company: Broken
`
	res, err := Load(context.Background(), l, strings.NewReader(doc), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Contains(t, err.Error(), "clients[1]")
	assert.Equal(t, 1, res.Clients)
}

func TestLoadUnknownRequestStatus(t *testing.T) {
	l := ledger.New(memory.New(), zap.NewNop())
	doc := `
clients:
  - key: c
    company: Acme
    client_name: Jane
pocs:
  - key: p
    client: c
    name: Raj
    email: raj@acme.test
    phone: "1"
    designation: PM
projects:
  - key: x
    client: c
    poc: p
    project_name: X
    code: X-1
    start_date: 2024-01-01
additional_requests:
  - project: x
    requested_amount: 10
    reason: r
    status: Maybe
`
	_, err := Load(context.Background(), l, strings.NewReader(doc), zap.NewNop())
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestLoadEmpty(t *testing.T) {
	l := ledger.New(memory.New(), zap.NewNop())
	res, err := Load(context.Background(), l, strings.NewReader(""), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{}, *res)
}
