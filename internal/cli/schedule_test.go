package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 10 * * FRI", false},
		{"*/15 * * * *", false},
		{"@weekly", false},
		{"0 0 10 * * FRI", true}, // seconds field is not accepted
		{"not a spec", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c, err := newScheduler(tt.spec, func() {})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, c.Entries(), 1)
		})
	}
}

func TestRunScheduledOnce(t *testing.T) {
	originalPipelineRunner := pipelineRunner
	defer func() { pipelineRunner = originalPipelineRunner }()

	calls := 0
	pipelineRunner = func(ctx context.Context, opts RunOptions) (*RunOutcome, error) {
		calls++
		return &RunOutcome{Summaries: []models.Summary{}}, nil
	}

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	runScheduledOnce(context.Background(), cmd, RunOptions{})
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runScheduledOnce(ctx, cmd, RunOptions{})
	assert.Equal(t, 1, calls, "cancelled runs are skipped")
}
