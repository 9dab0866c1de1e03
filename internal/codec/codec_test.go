package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hpcsched/batling/internal/types"
)

func TestForFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   uint32
		want    string // content type, "" means error expected
		wantErr error
	}{
		{name: "json", flags: FormatJSON, want: "application/json"},
		{name: "binary", flags: FormatBinary, want: "application/octet-stream"},
		{name: "binary wins over json", flags: FormatBinary | FormatJSON, want: "application/octet-stream"},
		{name: "no flags defaults to json", flags: 0, want: "application/json"},
		{name: "unknown bit", flags: 1 << 5, wantErr: ErrUnsupportedConfiguration},
		{name: "known plus unknown", flags: FormatJSON | 1<<9, wantErr: ErrUnsupportedConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ForFlags(tt.flags)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ForFlags() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForFlags() error = %v", err)
			}
			if c.ContentType() != tt.want {
				t.Errorf("ContentType() = %q, want %q", c.ContentType(), tt.want)
			}
		})
	}
}

func TestCodecsRoundTripBatches(t *testing.T) {
	events := types.EventBatch{
		Now: 12.5,
		Events: []types.Event{
			{Kind: types.EventHello},
			{Kind: types.EventSimulationBegins, SimulationBegins: &types.SimulationBeginsEvent{HostCount: 8}},
			{Kind: types.EventJobSubmitted, JobSubmitted: &types.JobSubmittedEvent{JobID: "j1", Resources: 3, Walltime: 40, SubmitTime: 12.5}},
		},
	}
	decisions := types.DecisionBatch{
		Now: 12.5,
		Decisions: []types.Decision{
			types.NewHello("batling", "0.1.0"),
			types.NewExecuteJob("j1", types.ResourceSet{0, 1, 2}),
			types.NewRejectJob("j2"),
		},
	}

	for _, c := range []Codec{JSON{}, Binary{}} {
		t.Run(c.ContentType(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := c.EncodeEvents(&buf, events); err != nil {
				t.Fatalf("EncodeEvents() error = %v", err)
			}
			gotEvents, err := c.DecodeEvents(&buf)
			if err != nil {
				t.Fatalf("DecodeEvents() error = %v", err)
			}
			if gotEvents.Now != events.Now || len(gotEvents.Events) != len(events.Events) {
				t.Errorf("events round trip = %+v", gotEvents)
			}
			if gotEvents.Events[2].JobSubmitted.Walltime != 40 {
				t.Errorf("submitted payload lost: %+v", gotEvents.Events[2])
			}

			buf.Reset()
			if err := c.EncodeDecisions(&buf, decisions); err != nil {
				t.Fatalf("EncodeDecisions() error = %v", err)
			}
			gotDecisions, err := c.DecodeDecisions(&buf)
			if err != nil {
				t.Fatalf("DecodeDecisions() error = %v", err)
			}
			if len(gotDecisions.Decisions) != 3 {
				t.Fatalf("decisions round trip = %+v", gotDecisions)
			}
			if gotDecisions.Decisions[1].ExecuteJob.Resources != "0-2" {
				t.Errorf("execute payload = %+v", gotDecisions.Decisions[1])
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, c := range []Codec{JSON{}, Binary{}} {
		if _, err := c.DecodeEvents(bytes.NewReader([]byte{0x1, 0xff, 0x3})); err == nil {
			t.Errorf("%s: DecodeEvents() accepted garbage", c.ContentType())
		}
	}
}
