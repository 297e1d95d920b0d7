package checks

import (
	"context"
	"log/slog"
	"slices"
)

// OwnerGate restricts privileged commands to the configured bot owners.
type OwnerGate struct {
	owners   []string
	pipeline *Pipeline
}

// NewOwnerGate reuses the pipeline's messages and formatter.
func NewOwnerGate(owners []string, p *Pipeline) *OwnerGate {
	if p == nil {
		p = NewPipeline()
	}
	return &OwnerGate{owners: slices.Clone(owners), pipeline: p}
}

func (g *OwnerGate) Evaluate(userID string) *Failure {
	switch {
	case len(g.owners) == 0:
		return g.pipeline.failure(ReasonOwnersEmpty)
	case !slices.Contains(g.owners, userID):
		return g.pipeline.failure(ReasonNotOwner)
	}
	return nil
}

func (g *OwnerGate) Check(ctx context.Context, userID string, resp Responder) bool {
	f := g.Evaluate(userID)
	if f == nil {
		return true
	}
	slog.Info("owner check failed", "userID", userID, "reason", f.Reason)
	if err := resp.RespondEphemeral(ctx, f.Message); err != nil {
		slog.Warn("owner check reply failed", "userID", userID, "err", err)
	}
	return false
}
