// Package portfolio projects every active property of a configuration and
// optionally records the results in the store.
package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/iwvelando/rental-projection/internal/config"
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/internal/store"
	"github.com/iwvelando/rental-projection/pkg/client"
	"github.com/iwvelando/rental-projection/pkg/output"
	"go.uber.org/zap"
)

// Projector computes the output of one input.
type Projector interface {
	Project(ctx context.Context, in projection.Input) (*projection.Output, error)
}

// LocalProjector computes with an in-process engine.
type LocalProjector struct {
	Engine       *projection.Engine
	WithSchedule bool
}

// Project implements Projector.
func (p LocalProjector) Project(_ context.Context, in projection.Input) (*projection.Output, error) {
	if p.WithSchedule {
		return p.Engine.ComputeWithSchedule(in)
	}
	return p.Engine.Compute(in)
}

// RemoteProjector computes through a rental-projection server.
type RemoteProjector struct {
	Client       *client.Client
	WithSchedule bool
}

// Project implements Projector.
func (p RemoteProjector) Project(ctx context.Context, in projection.Input) (*projection.Output, error) {
	out, err := p.Client.Compute(ctx, in)
	if err != nil || !p.WithSchedule {
		return out, err
	}
	schedule, err := p.Client.Schedule(ctx, in)
	if err != nil {
		return nil, err
	}
	out.Schedule = schedule.Schedule
	return out, nil
}

// Projection is the outcome for one configured property.
type Projection struct {
	Property config.PropertyConfig
	Input    projection.Input
	Output   *projection.Output
	Err      error
}

// GetProjections projects every active property. A property that fails is
// reported through its Err and does not stop the others.
func GetProjections(ctx context.Context, logger *zap.Logger, conf config.Configuration, projector Projector) []Projection {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Projection
	for _, property := range conf.Properties {
		if !property.IsActive() {
			logger.Debug(fmt.Sprintf("skipping property %s because it is inactive", property.Name),
				zap.String("op", "portfolio.GetProjections"),
			)
			continue
		}

		result := Projection{Property: property}
		in, err := property.ToInput()
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.Input = in

		out, err := projector.Project(ctx, in)
		if err != nil {
			result.Err = fmt.Errorf("property %q: %w", property.Name, err)
		} else {
			result.Output = out
		}
		logger.Debug(fmt.Sprintf("projected property %s", property.Name),
			zap.String("op", "portfolio.GetProjections"),
			zap.String("mode", string(in.Mode)),
			zap.Bool("failed", result.Err != nil),
		)
		results = append(results, result)
	}
	return results
}

// Results converts projections for the output formatters.
func Results(projections []Projection) []output.Result {
	results := make([]output.Result, 0, len(projections))
	for _, p := range projections {
		results = append(results, output.Result{
			Name:   p.Property.Name,
			City:   p.Property.City,
			Output: p.Output,
			Err:    p.Err,
		})
	}
	return results
}

// Saver is the persistence Save needs.
type Saver interface {
	ListProperties(ctx context.Context) ([]store.Property, error)
	CreateProperty(ctx context.Context, name, city string, mode projection.Mode) (*store.Property, error)
	UpsertProjection(ctx context.Context, propertyID int64, in projection.Input, out *projection.Output) error
}

// Save records every successful projection, creating the properties that do
// not exist yet. Properties are matched by name and city.
func Save(ctx context.Context, logger *zap.Logger, st Saver, projections []Projection) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := st.ListProperties(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list properties: %w", err)
	}
	ids := make(map[string]int64, len(existing))
	for _, p := range existing {
		ids[propertyKey(p.Name, p.City)] = p.ID
	}

	saved := 0
	for _, p := range projections {
		if p.Err != nil || p.Output == nil {
			continue
		}
		key := propertyKey(p.Property.Name, p.Property.City)
		id, ok := ids[key]
		if !ok {
			created, err := st.CreateProperty(ctx, p.Property.Name, p.Property.City, p.Input.Mode)
			if err != nil {
				return saved, fmt.Errorf("failed to create property %q: %w", p.Property.Name, err)
			}
			id = created.ID
			ids[key] = id
		}
		if err := st.UpsertProjection(ctx, id, p.Input, p.Output); err != nil {
			return saved, fmt.Errorf("failed to save property %q: %w", p.Property.Name, err)
		}
		saved++
	}

	logger.Info(fmt.Sprintf("saved %d projections", saved),
		zap.String("op", "portfolio.Save"),
	)
	return saved, nil
}

func propertyKey(name, city string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(city))
}
