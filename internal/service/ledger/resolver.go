package ledger

import (
	"context"
	"fmt"

	"budgetledger/internal/model"
	"budgetledger/internal/repository"
)

// resolver 负责外键解析与反规范化名称的填充
type resolver struct {
	store repository.Store
}

func (r resolver) client(ctx context.Context, id string) (*model.Client, error) {
	c, err := r.store.Clients().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityClient, id, err)
	}
	return c, nil
}

func (r resolver) poc(ctx context.Context, id string) (*model.POC, error) {
	p, err := r.store.POCs().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityPOC, id, err)
	}
	return p, nil
}

func (r resolver) project(ctx context.Context, id string) (*model.Project, error) {
	p, err := r.store.Projects().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityProject, id, err)
	}
	return p, nil
}

func (r resolver) payment(ctx context.Context, id string) (*model.Payment, error) {
	p, err := r.store.Payments().Get(ctx, id)
	if err != nil {
		return nil, storeErr(entityPayment, id, err)
	}
	return p, nil
}

// projectRefs checks that the client and POC exist and that the POC belongs
// to that client.
func (r resolver) projectRefs(ctx context.Context, p *model.Project) error {
	if _, err := r.client(ctx, p.Client); err != nil {
		return err
	}
	poc, err := r.poc(ctx, p.POC)
	if err != nil {
		return err
	}
	if poc.Client != p.Client {
		return fmt.Errorf("%w: poc %s belongs to client %s, not %s",
			ErrInconsistentReference, poc.ID, poc.Client, p.Client)
	}
	return nil
}

// names 缓存一次读取中解析过的名称，避免列表读取时重复查询
type names struct {
	r       resolver
	clients map[string]string
	pocs    map[string]string
}

func (r resolver) names() *names {
	return &names{r: r, clients: map[string]string{}, pocs: map[string]string{}}
}

func (n *names) client(ctx context.Context, id string) (string, error) {
	if name, ok := n.clients[id]; ok {
		return name, nil
	}
	c, err := n.r.store.Clients().Get(ctx, id)
	switch {
	case err == nil:
		n.clients[id] = c.Company
	case isMissing(err):
		n.clients[id] = ""
	default:
		return "", storeErr(entityClient, id, err)
	}
	return n.clients[id], nil
}

func (n *names) poc(ctx context.Context, id string) (string, error) {
	if name, ok := n.pocs[id]; ok {
		return name, nil
	}
	p, err := n.r.store.POCs().Get(ctx, id)
	switch {
	case err == nil:
		n.pocs[id] = p.Name
	case isMissing(err):
		n.pocs[id] = ""
	default:
		return "", storeErr(entityPOC, id, err)
	}
	return n.pocs[id], nil
}

func (n *names) decoratePOC(ctx context.Context, p *model.POC) error {
	name, err := n.client(ctx, p.Client)
	if err != nil {
		return err
	}
	p.ClientName = name
	return nil
}

func (n *names) decorateProject(ctx context.Context, p *model.Project) error {
	clientName, err := n.client(ctx, p.Client)
	if err != nil {
		return err
	}
	pocName, err := n.poc(ctx, p.POC)
	if err != nil {
		return err
	}
	p.ClientName, p.POCName = clientName, pocName
	return nil
}

func (n *names) decoratePOCs(ctx context.Context, pocs []model.POC) error {
	for i := range pocs {
		if err := n.decoratePOC(ctx, &pocs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (n *names) decorateProjects(ctx context.Context, projects []model.Project) error {
	for i := range projects {
		if err := n.decorateProject(ctx, &projects[i]); err != nil {
			return err
		}
	}
	return nil
}
