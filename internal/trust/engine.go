// Package trust computes global transitive trust and trust-weighted
// reputation over the rating graph.
//
// Raw rating rows are normalized to local trust scalars, collapsed into
// one averaged edge per ordered (rater, target) pair, and fed through a
// damped power iteration that yields one global trust score per user.
// Reputation aggregation then weights each rater's collapsed opinion by
// that rater's trust.
//
// The engine reads persisted state through the Source interface and
// never writes; all derived values are request-scoped.
package trust

import (
	"context"
	"fmt"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// Source is the read-only projection of persisted state the engine needs.
type Source interface {
	Users(ctx context.Context) ([]models.User, error)
	Ratings(ctx context.Context) ([]models.Rating, error)
}

// Engine ties the pure trust computations to a persistence source.
type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// TrustScores loads users and ratings and runs the full pipeline:
// normalize → collapse → iterate. Persistence failures propagate.
func (e *Engine) TrustScores(ctx context.Context) (map[int64]float64, error) {
	users, err := e.src.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	rows, err := e.src.Ratings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ratings: %w", err)
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ComputeTrust(ctx, ids, Collapse(rows)), nil
}

// UserReputation computes one user's trust-weighted reputation. Pass a
// precomputed score map to reuse a trust vector across several targets
// within one request; pass nil to compute a fresh one.
func (e *Engine) UserReputation(ctx context.Context, userID int64, scores map[int64]float64) (models.Reputation, error) {
	if scores == nil {
		var err error
		scores, err = e.TrustScores(ctx)
		if err != nil {
			return models.Reputation{}, err
		}
	}
	if _, ok := scores[userID]; !ok {
		return models.Reputation{}, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	rows, err := e.src.Ratings(ctx)
	if err != nil {
		return models.Reputation{}, fmt.Errorf("loading ratings: %w", err)
	}
	return Reputation(userID, rows, scores), nil
}

// OverallScores computes the 0..10 scalar reputation for each requested
// user id, sharing a single trust vector and ratings read. Unknown ids
// score 0. This is the bulk path the matcher uses.
func (e *Engine) OverallScores(ctx context.Context, userIDs []int64) (map[int64]float64, error) {
	if len(userIDs) == 0 {
		return map[int64]float64{}, nil
	}
	scores, err := e.TrustScores(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := e.src.Ratings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ratings: %w", err)
	}

	out := make(map[int64]float64, len(userIDs))
	for _, id := range userIDs {
		if _, ok := scores[id]; !ok {
			out[id] = 0
			continue
		}
		out[id] = Overall(Reputation(id, rows, scores))
	}
	return out, nil
}

// Graph exports the deduped rating graph for the visualization
// front-end: every user as a node with trust and reputation, every
// collapsed edge with its averaged weight and per-axis breakdown.
func (e *Engine) Graph(ctx context.Context) (models.Graph, error) {
	users, err := e.src.Users(ctx)
	if err != nil {
		return models.Graph{}, fmt.Errorf("loading users: %w", err)
	}
	rows, err := e.src.Ratings(ctx)
	if err != nil {
		return models.Graph{}, fmt.Errorf("loading ratings: %w", err)
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	edges := Collapse(rows)
	scores := ComputeTrust(ctx, ids, edges)

	nodes := make([]models.GraphNode, len(users))
	for i, u := range users {
		rep := Reputation(u.ID, rows, scores)
		nodes[i] = models.GraphNode{
			ID:                u.ID,
			Name:              u.Name,
			Trust:             scores[u.ID],
			Reputation:        &rep,
			ReputationOverall: OverallRatio(rep),
		}
	}

	return models.Graph{Nodes: nodes, Edges: edges}, nil
}
