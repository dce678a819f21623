package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockStep is a Step whose behaviour is supplied by the test.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, in *Inspection) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, in *Inspection) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, in)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
		if p.logger == nil {
			t.Error("expected a default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	if p.StepCount() != 3 {
		t.Fatalf("expected 3 steps, got %d", p.StepCount())
	}
	expected := []string{"first", "second", "third"}
	for i, name := range p.StepNames() {
		if name != expected[i] {
			t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
		}
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		for _, name := range []string{"a", "b", "c"} {
			p.AddStep(&mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *Inspection) error {
					order = append(order, name)
					return nil
				},
			})
		}

		in := NewInspection("https://example.com")
		if err := p.Execute(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(order, ",") != "a,b,c" {
			t.Errorf("execution order = %v", order)
		}
		if strings.Join(in.Report.PerformedSteps, ",") != "a,b,c" {
			t.Errorf("PerformedSteps = %v", in.Report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name:   "failing",
			doFunc: func(context.Context, *Inspection) error { return errors.New("boom") },
		}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		in := NewInspection("https://example.com")
		if err := p.Execute(context.Background(), in); err == nil {
			t.Fatal("expected error")
		}
		if after.callCount != 0 {
			t.Error("step after failure should not run")
		}
		if len(in.Report.Errors) != 1 || in.Report.Errors[0] != "failing: boom" {
			t.Errorf("Errors = %v", in.Report.Errors)
		}
	})

	t.Run("continues after errors when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name:   "failing",
			doFunc: func(context.Context, *Inspection) error { return errors.New("boom") },
		}
		after := &mockStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		in := NewInspection("https://example.com")
		if err := p.Execute(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.callCount != 1 {
			t.Error("step after failure should run")
		}
		if !in.Report.HasErrors() {
			t.Error("expected the failure to be recorded")
		}
	})

	t.Run("a missing document is fatal even when continuing", func(t *testing.T) {
		t.Parallel()

		load := &mockStep{
			name:   "load",
			doFunc: func(context.Context, *Inspection) error { return ErrNoDocument },
		}
		after := &mockStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(load, after)

		err := p.Execute(context.Background(), NewInspection("https://example.com"))
		if !errors.Is(err, ErrNoDocument) {
			t.Errorf("expected ErrNoDocument, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("no step should run without a document")
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{
			name: "first",
			doFunc: func(context.Context, *Inspection) error {
				cancel()
				return nil
			},
		}
		second := &mockStep{name: "second"}

		p := New()
		p.AddSteps(first, second)

		in := NewInspection("https://example.com")
		err := p.Execute(ctx, in)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("second step should not run after cancellation")
		}
		if !in.Report.TimedOut {
			t.Error("expected TimedOut to be set")
		}
	})
}

func TestPipelineBuildReport(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{
		name: "title",
		doFunc: func(_ context.Context, in *Inspection) error {
			in.Report.Metadata.Title = "set by step"
			return nil
		},
	})

	first, err := p.BuildReport(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.BuildReport(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Metadata.Title != "set by step" || first.Target != "https://example.com" {
		t.Errorf("unexpected report: %+v", first)
	}
	if first == second || first.ID == second.ID {
		t.Error("each inspection must produce an independent report")
	}
}
