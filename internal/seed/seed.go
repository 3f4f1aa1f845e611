// Package seed loads fixture data into a ledger from YAML. Each record may
// carry a "key"; later records refer to earlier ones by that key in their
// client, poc, project and payment fields.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"budgetledger/internal/model"
	"budgetledger/internal/service/ledger"
)

// File 是种子文件的结构，各段按依赖顺序加载
type File struct {
	Clients     []Record `yaml:"clients"`
	POCs        []Record `yaml:"pocs"`
	Projects    []Record `yaml:"projects"`
	Estimations []Record `yaml:"estimations"`
	Payments    []Record `yaml:"payments"`
	Milestones  []Record `yaml:"milestones"`
	Requests    []Record `yaml:"additional_requests"`
	Holds       []Record `yaml:"holds"`
}

type Record map[string]any

// Result counts the records created per section.
type Result struct {
	Clients, POCs, Projects, Estimations, Payments, Milestones, Requests, Holds int
}

type loader struct {
	ledger *ledger.Ledger
	keys   map[string]string
	logger *zap.Logger
}

// Load parses r and creates every record through l, in dependency order.
// It stops at the first failure and reports the section and index.
func Load(ctx context.Context, l *ledger.Ledger, r io.Reader, logger *zap.Logger) (*Result, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	ld := &loader{ledger: l, keys: map[string]string{}, logger: logger}
	res := &Result{}
	var err error

	if res.Clients, err = section(ctx, ld, "clients", f.Clients, l.CreateClient, func(c *model.Client) string { return c.ID }); err != nil {
		return res, err
	}
	if res.POCs, err = section(ctx, ld, "pocs", f.POCs, l.CreatePOC, func(p *model.POC) string { return p.ID }); err != nil {
		return res, err
	}
	if res.Projects, err = section(ctx, ld, "projects", f.Projects, l.CreateProject, func(p *model.Project) string { return p.ID }); err != nil {
		return res, err
	}
	if res.Estimations, err = section(ctx, ld, "estimations", f.Estimations, l.CreateEstimation, func(e *model.Estimation) string { return e.ID }); err != nil {
		return res, err
	}
	if res.Payments, err = section(ctx, ld, "payments", f.Payments, l.CreatePayment, func(p *model.Payment) string { return p.ID }); err != nil {
		return res, err
	}
	if res.Milestones, err = section(ctx, ld, "milestones", f.Milestones, l.CreateMilestone, func(m *model.Milestone) string { return m.ID }); err != nil {
		return res, err
	}
	if res.Requests, err = ld.requests(ctx, f.Requests); err != nil {
		return res, err
	}
	if res.Holds, err = ld.holds(ctx, f.Holds); err != nil {
		return res, err
	}

	logger.Info("Seed data loaded",
		zap.Int("clients", res.Clients),
		zap.Int("pocs", res.POCs),
		zap.Int("projects", res.Projects),
		zap.Int("estimations", res.Estimations),
		zap.Int("payments", res.Payments),
		zap.Int("milestones", res.Milestones),
		zap.Int("additional_requests", res.Requests),
		zap.Int("holds", res.Holds),
	)
	return res, nil
}

func section[In, Out any](ctx context.Context, ld *loader, name string, recs []Record, create func(context.Context, In) (*Out, error), id func(*Out) string) (int, error) {
	for i, rec := range recs {
		key, in, err := decode[In](ld, rec)
		if err != nil {
			return i, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		out, err := create(ctx, in)
		if err != nil {
			return i, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		ld.remember(key, id(out))
	}
	return len(recs), nil
}

// requests 支持 status: Approved / Rejected，创建后再走审批流程
func (ld *loader) requests(ctx context.Context, recs []Record) (int, error) {
	for i, rec := range recs {
		status, _ := rec["status"].(string)
		approvedBy, _ := rec["approved_by"].(string)
		reason, _ := rec["rejection_reason"].(string)
		rec = without(rec, "status", "approved_by", "rejection_reason")

		key, in, err := decode[model.AdditionalRequestInput](ld, rec)
		if err != nil {
			return i, fmt.Errorf("additional_requests[%d]: %w", i, err)
		}
		r, err := ld.ledger.CreateRequest(ctx, in)
		if err != nil {
			return i, fmt.Errorf("additional_requests[%d]: %w", i, err)
		}
		switch model.ApprovalStatus(status) {
		case model.ApprovalApproved:
			_, err = ld.ledger.Approve(ctx, r.ID, approvedBy)
		case model.ApprovalRejected:
			_, err = ld.ledger.Reject(ctx, r.ID, reason)
		case "", model.ApprovalPending:
		default:
			err = ledger.InvalidField("status", fmt.Sprintf("unknown status %q", status))
		}
		if err != nil {
			return i, fmt.Errorf("additional_requests[%d]: %w", i, err)
		}
		ld.remember(key, r.ID)
	}
	return len(recs), nil
}

func (ld *loader) holds(ctx context.Context, recs []Record) (int, error) {
	for i, rec := range recs {
		project, _ := rec["project"].(string)
		released, _ := rec["released"].(bool)
		rec = without(rec, "project", "released")

		key, in, err := decode[model.HoldInput](ld, rec)
		if err != nil {
			return i, fmt.Errorf("holds[%d]: %w", i, err)
		}
		h, err := ld.ledger.AddHold(ctx, ld.resolve(project), in)
		if err != nil {
			return i, fmt.Errorf("holds[%d]: %w", i, err)
		}
		if released {
			if _, err := ld.ledger.ReleaseHold(ctx, h.ID); err != nil {
				return i, fmt.Errorf("holds[%d]: %w", i, err)
			}
		}
		ld.remember(key, h.ID)
	}
	return len(recs), nil
}

// refFields 是按 key 解析的引用字段
var refFields = []string{"client", "poc", "project", "payment"}

// decode 把 YAML 记录转成 ledger 的 Input 结构：先替换引用，再经 JSON 解码
func decode[In any](ld *loader, rec Record) (string, In, error) {
	var in In
	key, _ := rec["key"].(string)

	fields := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == "key" {
			continue
		}
		if t, ok := v.(time.Time); ok {
			v = t.Format(model.DateFormat)
		}
		fields[k] = v
	}
	for _, f := range refFields {
		if ref, ok := fields[f].(string); ok {
			fields[f] = ld.resolve(ref)
		}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return key, in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return key, in, err
	}
	return key, in, nil
}

func (ld *loader) resolve(ref string) string {
	if id, ok := ld.keys[ref]; ok {
		return id
	}
	return ref
}

func (ld *loader) remember(key, id string) {
	if key == "" {
		return
	}
	if prev, ok := ld.keys[key]; ok {
		ld.logger.Warn("Seed key reused", zap.String("key", key), zap.String("previous_id", prev))
	}
	ld.keys[key] = id
}

func without(rec Record, keys ...string) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
