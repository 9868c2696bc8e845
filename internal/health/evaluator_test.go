package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

func TestShouldHalt(t *testing.T) {
	tests := []struct {
		name    string
		signals model.Snapshot
		want    bool
	}{
		{
			name:    "empty snapshot",
			signals: model.Snapshot{},
			want:    false,
		},
		{
			name:    "nil snapshot",
			signals: nil,
			want:    false,
		},
		{
			name:    "all ok",
			signals: model.Snapshot{model.OK(), model.OK(), model.OK()},
			want:    false,
		},
		{
			name:    "single halt",
			signals: model.Snapshot{model.HaltSignal("replication lag")},
			want:    true,
		},
		{
			name:    "one halt among ok",
			signals: model.Snapshot{model.OK(), model.HaltSignal("disk pressure"), model.OK()},
			want:    true,
		},
		{
			name:    "all halt",
			signals: model.Snapshot{model.HaltSignal("a"), model.HaltSignal("b")},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldHalt(tt.signals))
		})
	}
}
